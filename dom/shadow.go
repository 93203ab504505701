package dom

import (
	"github.com/npillmayer/shadowdom/dom/style/selector"
	"github.com/npillmayer/shadowdom/tree"
)

// hostData is attached to every element carrying shadow roots.
type hostData struct {
	roots                   []Handle // youngest first
	needsDistributionRecalc bool
	needsSelectFeatureSet   bool
	features                SelectFeatures
	assigned                map[Handle]Handle // node → insertion point of the youngest tree
}

// rootData is attached to every shadow root. It caches per-tree scans,
// which are invalidated on structural changes within the tree.
type rootData struct {
	host            Handle
	scanned         bool
	insertionPoints []Handle // every insertion point of the tree, in tree order
	active          []Handle // active insertion points, in tree order
	childRoots      []Handle // youngest shadow roots of hosts within the tree
}

// InsertionKind tells content insertion points from shadow insertion points.
type InsertionKind uint8

// Kinds of insertion points.
const (
	ContentInsertionPoint InsertionKind = iota // <content select="…">
	ShadowInsertionPoint                       // <shadow>
)

// InsertionPoint holds the state of a <content> or <shadow> element.
type InsertionPoint struct {
	kind         InsertionKind
	selectText   string
	filter       *selector.List
	valid        bool
	seq          uint64 // declaration order
	distribution Distribution
}

// Kind returns the kind of the insertion point.
func (ip *InsertionPoint) Kind() InsertionKind {
	return ip.kind
}

// Select returns the raw text of the select filter.
func (ip *InsertionPoint) Select() string {
	return ip.selectText
}

// Filter returns the compiled select filter, or nil for unfiltered
// insertion points.
func (ip *InsertionPoint) Filter() *selector.List {
	return ip.filter
}

// IsValid is false if the select filter did not compile or contains
// constructs not allowed for filters. Invalid insertion points select
// nothing.
func (ip *InsertionPoint) IsValid() bool {
	return ip.valid
}

// Seq returns the declaration sequence number of the insertion point.
func (ip *InsertionPoint) Seq() uint64 {
	return ip.seq
}

// Distribution returns the current distribution of the insertion point.
func (ip *InsertionPoint) Distribution() *Distribution {
	return &ip.distribution
}

// SetDistribution replaces the distribution of the insertion point.
func (ip *InsertionPoint) SetDistribution(d Distribution) {
	ip.distribution = d
}

func (ip *InsertionPoint) setSelect(text string) {
	ip.selectText = text
	ip.filter = nil
	ip.valid = true
	if ip.kind != ContentInsertionPoint || text == "" {
		return
	}
	list, err := selector.Compile(text)
	if err != nil {
		tracer().Errorf("insertion point select %q does not compile: %v", text, err)
		ip.valid = false
		return
	}
	ip.filter = list
	if !list.IsValidContentFilter() {
		tracer().Errorf("insertion point select %q is not a valid filter", text)
		ip.valid = false
	}
}

// --- Distribution ----------------------------------------------------------

// Distribution is the ordered, duplicate free sequence of nodes distributed
// to an insertion point. It keeps an index for constant time position lookup.
type Distribution struct {
	nodes []Handle
	index map[Handle]int
}

// NewDistribution creates a distribution from a sequence of nodes.
// Duplicates are dropped.
func NewDistribution(nodes []Handle) Distribution {
	d := Distribution{
		nodes: make([]Handle, 0, len(nodes)),
		index: make(map[Handle]int, len(nodes)),
	}
	for _, n := range nodes {
		d.Append(n)
	}
	return d
}

// Append adds a node at the end, unless it is already contained.
func (d *Distribution) Append(n Handle) {
	if d.index == nil {
		d.index = make(map[Handle]int)
	}
	if _, ok := d.index[n]; ok {
		return
	}
	d.index[n] = len(d.nodes)
	d.nodes = append(d.nodes, n)
}

// Len returns the number of distributed nodes.
func (d *Distribution) Len() int {
	return len(d.nodes)
}

// IsEmpty is true if nothing is distributed.
func (d *Distribution) IsEmpty() bool {
	return len(d.nodes) == 0
}

// At returns the node at position i.
func (d *Distribution) At(i int) Handle {
	if i < 0 || i >= len(d.nodes) {
		return Null
	}
	return d.nodes[i]
}

// Find returns the position of a node, or -1.
func (d *Distribution) Find(n Handle) int {
	if i, ok := d.index[n]; ok {
		return i
	}
	return -1
}

// Contains is a predicate for membership.
func (d *Distribution) Contains(n Handle) bool {
	return d.Find(n) >= 0
}

// First returns the first distributed node or Null.
func (d *Distribution) First() Handle {
	return d.At(0)
}

// Last returns the last distributed node or Null.
func (d *Distribution) Last() Handle {
	return d.At(len(d.nodes) - 1)
}

// Next returns the node following n, or Null.
func (d *Distribution) Next(n Handle) Handle {
	if i := d.Find(n); i >= 0 {
		return d.At(i + 1)
	}
	return Null
}

// Previous returns the node preceding n, or Null.
func (d *Distribution) Previous(n Handle) Handle {
	if i := d.Find(n); i > 0 {
		return d.At(i - 1)
	}
	return Null
}

// Nodes returns a copy of the sequence of distributed nodes.
func (d *Distribution) Nodes() []Handle {
	nodes := make([]Handle, len(d.nodes))
	copy(nodes, d.nodes)
	return nodes
}

// Equals compares two distributions position by position.
func (d *Distribution) Equals(other *Distribution) bool {
	if d.Len() != other.Len() {
		return false
	}
	for i, n := range d.nodes {
		if other.nodes[i] != n {
			return false
		}
	}
	return true
}

// --- Select feature sets ---------------------------------------------------

// SelectFeatures collects ids, classes and attribute names used by the
// select filters of a shadow tree and all shadow trees nested within it.
type SelectFeatures struct {
	IDs        map[string]struct{}
	Classes    map[string]struct{}
	Attributes map[string]struct{}
}

// Clear empties the feature set.
func (sf *SelectFeatures) Clear() {
	sf.IDs, sf.Classes, sf.Attributes = nil, nil, nil
}

// Collect adds the features of a compiled filter.
func (sf *SelectFeatures) Collect(list *selector.List) {
	if list == nil {
		return
	}
	if sf.IDs == nil {
		sf.IDs = make(map[string]struct{})
		sf.Classes = make(map[string]struct{})
		sf.Attributes = make(map[string]struct{})
	}
	for _, alt := range list.Alternatives {
		for _, cmp := range alt.Compounds {
			for _, s := range cmp.Simples {
				switch x := s.(type) {
				case selector.ID:
					sf.IDs[x.Name] = struct{}{}
				case selector.Class:
					sf.Classes[x.Name] = struct{}{}
				case selector.Attribute:
					sf.Attributes[x.Name] = struct{}{}
				case selector.PseudoClass:
					sf.Collect(x.List)
				}
			}
		}
	}
}

// Merge adds all features of another feature set.
func (sf *SelectFeatures) Merge(other *SelectFeatures) {
	if other == nil || other.IDs == nil {
		return
	}
	if sf.IDs == nil {
		sf.IDs = make(map[string]struct{})
		sf.Classes = make(map[string]struct{})
		sf.Attributes = make(map[string]struct{})
	}
	for k := range other.IDs {
		sf.IDs[k] = struct{}{}
	}
	for k := range other.Classes {
		sf.Classes[k] = struct{}{}
	}
	for k := range other.Attributes {
		sf.Attributes[k] = struct{}{}
	}
}

// HasID is a predicate for id membership.
func (sf *SelectFeatures) HasID(id string) bool {
	_, ok := sf.IDs[id]
	return ok
}

// HasClass is a predicate for class membership.
func (sf *SelectFeatures) HasClass(class string) bool {
	_, ok := sf.Classes[class]
	return ok
}

// HasAttribute is a predicate for attribute name membership.
func (sf *SelectFeatures) HasAttribute(name string) bool {
	_, ok := sf.Attributes[name]
	return ok
}

// --- Shadow roots and tree scopes ------------------------------------------

// AttachShadow creates a new shadow root for a host element. The new root
// becomes the youngest root of the host. Older roots stay attached but do
// not take part in composition.
func (doc *Document) AttachShadow(host Handle) (Handle, error) {
	n := doc.Node(host)
	if n == nil {
		return Null, ErrInvalidHandle
	}
	if n.Kind != ElementNode {
		return Null, ErrNotAnElement
	}
	root := doc.tree.NewNode(&Node{
		Kind: ShadowRootNode,
		Data: "#shadow-root",
		root: &rootData{host: host},
	})
	if n.host == nil {
		n.host = &hostData{}
	}
	n.host.roots = append([]Handle{root}, n.host.roots...)
	n.host.needsSelectFeatureSet = true
	n.host.assigned = nil
	doc.scopeChanged(host)
	doc.SetNeedsDistributionRecalc(host)
	doc.WillAffectSelector(host)
	tracer().Debugf("attached shadow root %d to host %d <%s>", root, host, n.Data)
	return root, nil
}

// IsShadowHost is a predicate for elements with shadow roots.
func (doc *Document) IsShadowHost(h Handle) bool {
	n := doc.Node(h)
	return n != nil && n.host != nil && len(n.host.roots) > 0
}

// ShadowRoots returns the shadow roots of a host, youngest first.
func (doc *Document) ShadowRoots(host Handle) []Handle {
	if n := doc.Node(host); n != nil && n.host != nil {
		return n.host.roots
	}
	return nil
}

// YoungestShadowRoot returns the shadow root used for composition, or Null.
func (doc *Document) YoungestShadowRoot(host Handle) Handle {
	if roots := doc.ShadowRoots(host); len(roots) > 0 {
		return roots[0]
	}
	return Null
}

// OlderShadowRoot returns the next older shadow root of the same host, or Null.
func (doc *Document) OlderShadowRoot(root Handle) Handle {
	roots := doc.ShadowRoots(doc.ShadowHost(root))
	for i, r := range roots {
		if r == root && i+1 < len(roots) {
			return roots[i+1]
		}
	}
	return Null
}

// ShadowHost returns the host of a shadow root, or Null if h is not a
// shadow root.
func (doc *Document) ShadowHost(root Handle) Handle {
	if n := doc.Node(root); n != nil && n.root != nil {
		return n.root.host
	}
	return Null
}

// TreeScope returns the root of the tree a node belongs to: the document
// node, a shadow root, or the root of an isolated subtree.
func (doc *Document) TreeScope(h Handle) Handle {
	return doc.tree.Root(h)
}

// IsInShadowTree is a predicate for nodes whose tree scope is a shadow root.
func (doc *Document) IsInShadowTree(h Handle) bool {
	return doc.IsShadowRoot(doc.TreeScope(h))
}

// ContainingShadowRoot returns the shadow root of the tree a node is in,
// or Null.
func (doc *Document) ContainingShadowRoot(h Handle) Handle {
	if scope := doc.TreeScope(h); doc.IsShadowRoot(scope) {
		return scope
	}
	return Null
}

// ScopeHost returns the shadow host of the tree a node is in, or Null for
// nodes of the document tree.
func (doc *Document) ScopeHost(h Handle) Handle {
	return doc.ShadowHost(doc.TreeScope(h))
}

// ParentOrShadowHost returns the parent of a node; for shadow roots, it
// returns the host.
func (doc *Document) ParentOrShadowHost(h Handle) Handle {
	if p := doc.tree.Parent(h); p != Null {
		return p
	}
	return doc.ShadowHost(h)
}

// ParentOrShadowHostElement is like ParentOrShadowHost, but returns Null if
// the result is not an element.
func (doc *Document) ParentOrShadowHostElement(h Handle) Handle {
	if p := doc.ParentOrShadowHost(h); doc.IsElement(p) {
		return p
	}
	return Null
}

// IsShadowIncludingInclusiveAncestor is a predicate: is a an inclusive
// ancestor of d, following hosts across shadow boundaries?
func (doc *Document) IsShadowIncludingInclusiveAncestor(a, d Handle) bool {
	for n := d; n != Null; n = doc.ParentOrShadowHost(n) {
		if n == a {
			return true
		}
	}
	return false
}

// --- Insertion points ------------------------------------------------------

// InsertionPoint returns the insertion point state of an element, or nil.
func (doc *Document) InsertionPoint(h Handle) *InsertionPoint {
	if n := doc.Node(h); n != nil {
		return n.ip
	}
	return nil
}

// IsInsertionPoint is a predicate for <content> and <shadow> elements.
func (doc *Document) IsInsertionPoint(h Handle) bool {
	return doc.InsertionPoint(h) != nil
}

// IsActiveInsertionPoint is true for insertion points which take part in
// distribution: they live in a shadow tree and are not nested within
// another insertion point. Of several shadow insertion points within one
// tree, only the most recently declared one is active.
func (doc *Document) IsActiveInsertionPoint(h Handle) bool {
	ip := doc.InsertionPoint(h)
	if ip == nil {
		return false
	}
	root := doc.ContainingShadowRoot(h)
	if root == Null {
		return false
	}
	for _, a := range doc.ActiveInsertionPoints(root) {
		if a == h {
			return true
		}
	}
	return false
}

// InsertionPoints returns every insertion point of a shadow tree, in tree
// order, including inactive ones.
func (doc *Document) InsertionPoints(root Handle) []Handle {
	rd := doc.scan(root)
	if rd == nil {
		return nil
	}
	return rd.insertionPoints
}

// ActiveInsertionPoints returns the active insertion points of a shadow
// tree, in tree order.
func (doc *Document) ActiveInsertionPoints(root Handle) []Handle {
	rd := doc.scan(root)
	if rd == nil {
		return nil
	}
	return rd.active
}

// electActive filters the insertion points of a tree. Nested insertion
// points are inactive. Of the shadow insertion points, the one declared
// last is elected.
func (doc *Document) electActive(root Handle, ips []Handle) []Handle {
	var shadow Handle
	var shadowSeq uint64
	for _, h := range ips {
		ip := doc.InsertionPoint(h)
		if ip.kind == ShadowInsertionPoint && ip.seq > shadowSeq && !doc.isNestedInsertionPoint(h, root) {
			shadow, shadowSeq = h, ip.seq
		}
	}
	var active []Handle
	for _, h := range ips {
		if doc.InsertionPoint(h).kind == ShadowInsertionPoint {
			if h == shadow {
				active = append(active, h)
			}
			continue
		}
		if !doc.isNestedInsertionPoint(h, root) {
			active = append(active, h)
		}
	}
	return active
}

// DescendantInsertionPointCount returns the number of insertion points in
// a shadow tree.
func (doc *Document) DescendantInsertionPointCount(root Handle) int {
	return len(doc.InsertionPoints(root))
}

// ChildShadowRoots returns the youngest shadow roots of all hosts living in
// the tree of root.
func (doc *Document) ChildShadowRoots(root Handle) []Handle {
	rd := doc.scan(root)
	if rd == nil {
		return nil
	}
	return rd.childRoots
}

func (doc *Document) isNestedInsertionPoint(h Handle, root Handle) bool {
	for p := doc.tree.Parent(h); p != Null && p != root; p = doc.tree.Parent(p) {
		if doc.IsInsertionPoint(p) {
			return true
		}
	}
	return false
}

// scan returns the (cached) per-tree data of a shadow root.
func (doc *Document) scan(root Handle) *rootData {
	n := doc.Node(root)
	if n == nil || n.root == nil {
		return nil
	}
	rd := n.root
	if rd.scanned {
		return rd
	}
	rd.insertionPoints, rd.active, rd.childRoots = nil, nil, nil
	_ = tree.NewWalker(doc.tree, root).TopDown(func(h Handle, _ Handle, _ int) (bool, error) {
		if doc.IsInsertionPoint(h) {
			rd.insertionPoints = append(rd.insertionPoints, h)
		}
		if y := doc.YoungestShadowRoot(h); y != Null {
			rd.childRoots = append(rd.childRoots, y)
		}
		return true, nil
	})
	rd.active = doc.electActive(root, rd.insertionPoints)
	rd.scanned = true
	return rd
}

// scopeChanged drops cached scans for the tree containing h.
func (doc *Document) scopeChanged(h Handle) {
	if n := doc.Node(doc.TreeScope(h)); n != nil && n.root != nil {
		n.root.scanned = false
	}
}

// --- Distribution bookkeeping ----------------------------------------------

// NeedsDistributionRecalc is true if the distribution of a host is stale.
func (doc *Document) NeedsDistributionRecalc(host Handle) bool {
	n := doc.Node(host)
	return n != nil && n.host != nil && n.host.needsDistributionRecalc
}

// SetNeedsDistributionRecalc flags the distribution of a host as stale and
// marks all shadow-including ancestors with ChildNeedsDistributionRecalc.
func (doc *Document) SetNeedsDistributionRecalc(host Handle) {
	n := doc.Node(host)
	if n == nil || n.host == nil || n.host.needsDistributionRecalc {
		return
	}
	n.host.needsDistributionRecalc = true
	for p := doc.ParentOrShadowHost(host); p != Null; p = doc.ParentOrShadowHost(p) {
		if doc.HasFlag(p, ChildNeedsDistributionRecalc) {
			break
		}
		doc.SetFlag(p, ChildNeedsDistributionRecalc)
	}
}

// ClearNeedsDistributionRecalc resets the staleness flag of a host.
func (doc *Document) ClearNeedsDistributionRecalc(host Handle) {
	if n := doc.Node(host); n != nil && n.host != nil {
		n.host.needsDistributionRecalc = false
	}
}

// SelectFeatures returns the select feature set of a host.
func (doc *Document) SelectFeatures(host Handle) *SelectFeatures {
	if n := doc.Node(host); n != nil && n.host != nil {
		return &n.host.features
	}
	return nil
}

// NeedsSelectFeatureSet is true if the select feature set of a host is stale.
func (doc *Document) NeedsSelectFeatureSet(host Handle) bool {
	n := doc.Node(host)
	return n != nil && n.host != nil && n.host.needsSelectFeatureSet
}

// SetNeedsSelectFeatureSet flags the select feature set of a host as stale.
func (doc *Document) SetNeedsSelectFeatureSet(host Handle, stale bool) {
	if n := doc.Node(host); n != nil && n.host != nil {
		n.host.needsSelectFeatureSet = stale
	}
}

// WillAffectSelector flags the select feature sets of all hosts of shadow
// trees enclosing h as stale. It is called when filters below h change.
func (doc *Document) WillAffectSelector(h Handle) {
	seen := map[Handle]bool{}
	for host := doc.ScopeHost(h); host != Null && !seen[host]; host = doc.ScopeHost(host) {
		seen[host] = true
		doc.SetNeedsSelectFeatureSet(host, true)
	}
}

// AssignToInsertionPoint records that a node has been distributed to an
// insertion point of the youngest shadow tree of host.
func (doc *Document) AssignToInsertionPoint(host, h, ip Handle) {
	n := doc.Node(host)
	if n == nil || n.host == nil {
		return
	}
	if n.host.assigned == nil {
		n.host.assigned = make(map[Handle]Handle)
	}
	n.host.assigned[h] = ip
}

// ClearAssignments drops all distribution records of a host.
func (doc *Document) ClearAssignments(host Handle) {
	if n := doc.Node(host); n != nil && n.host != nil {
		n.host.assigned = nil
	}
}

// AssignedInsertionPoint returns the insertion point of the youngest shadow
// tree of host a node has been distributed to, or Null.
func (doc *Document) AssignedInsertionPoint(host, h Handle) Handle {
	if n := doc.Node(host); n != nil && n.host != nil {
		return n.host.assigned[h]
	}
	return Null
}

// distributingHost returns the host whose distribution decides where a node
// goes: the parent, if it is a host, or the host of the tree an insertion
// point with fallback content lives in.
func (doc *Document) distributingHost(h Handle) Handle {
	p := doc.tree.Parent(h)
	if doc.IsShadowHost(p) {
		return p
	}
	if doc.IsInsertionPoint(p) {
		return doc.ScopeHost(p)
	}
	return Null
}

// DestinationInsertionPoints returns the insertion points a node has been
// distributed to, starting with the insertion point of the host the node is
// a child of, followed by the insertion points it has been re-distributed
// to.
func (doc *Document) DestinationInsertionPoints(h Handle) []Handle {
	var dest []Handle
	seen := map[Handle]bool{}
	for cur := h; ; {
		host := doc.distributingHost(cur)
		if host == Null || seen[host] {
			return dest
		}
		seen[host] = true
		ip := doc.AssignedInsertionPoint(host, h)
		if ip == Null {
			return dest
		}
		dest = append(dest, ip)
		cur = ip
	}
}

// FinalDestinationInsertionPoint returns the last insertion point a node
// has been re-distributed to, or Null.
func (doc *Document) FinalDestinationInsertionPoint(h Handle) Handle {
	dest := doc.DestinationInsertionPoints(h)
	if len(dest) == 0 {
		return Null
	}
	return dest[len(dest)-1]
}
