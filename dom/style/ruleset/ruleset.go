/*
Package ruleset indexes style rules for fast candidate retrieval.

Every rule (i.e., every alternative of a rule's selector list) is put into
exactly one bucket, chosen by inspecting the rightmost compound selector:
rules targeting a shadow host (:host) go to the host bucket, otherwise rules
with an id go to the id bucket, rules with a class go to the class bucket,
rules with a tag name go to the tag bucket, and everything else goes to the
universal bucket. To find the rules matching an element, only the buckets
for the element's id, classes and tag name have to be consulted.

Rules are appended to growable build lists. Before the first lookup the
build lists are compacted into flat slices. Adding rules after compaction
re-opens the build.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package ruleset

import (
	"sort"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/shadowdom/dom"
	"github.com/npillmayer/shadowdom/dom/style/cssom"
	"github.com/npillmayer/shadowdom/dom/style/matcher"
	"github.com/npillmayer/shadowdom/dom/style/selector"
)

// tracer traces with key 'shadowdom.ruleset'.
func tracer() tracing.Trace {
	return tracing.Select("shadowdom.ruleset")
}

// Bucket identifies the bucket a rule is stored in. The order of constants
// is the order in which matching rules are reported.
type Bucket uint8

// Buckets, by priority.
const (
	HostBucket Bucket = iota
	IDBucket
	ClassBucket
	TagBucket
	UniversalBucket
)

var bucketNames = [...]string{"host", "id", "class", "tag", "universal"}

func (b Bucket) String() string {
	if int(b) < len(bucketNames) {
		return bucketNames[b]
	}
	return "?"
}

// Rule pairs one selector alternative with a declaration block.
// Rules are immutable once added to a rule set.
type Rule struct {
	Selector      *selector.Complex // the alternative this rule is for
	List          *selector.List    // the selector list the alternative is part of
	SelectorIndex int               // index of Selector within List
	Position      int               // insertion position, strictly increasing
	Scope         dom.Handle        // tree scope of the rule set; Null = document
	Bucket        Bucket
	Key           string     // bucket key: id, class or tag name
	Decl          cssom.Rule // declarations; may be nil
}

func (r *Rule) String() string {
	return r.Selector.String()
}

// MediaEvaluator decides if the rules of an @media block apply, given the
// block's prelude.
type MediaEvaluator func(prelude string) bool

// MediaType returns a MediaEvaluator accepting media queries which consist
// of media types only, matching if "all" or the given media type is listed.
// Media features are not evaluated and render a query non-matching.
func MediaType(medium string) MediaEvaluator {
	medium = strings.ToLower(medium)
	return func(prelude string) bool {
		prelude = strings.TrimSpace(strings.ToLower(prelude))
		if prelude == "" {
			return true
		}
		for _, q := range strings.Split(prelude, ",") {
			q = strings.TrimSpace(q)
			q = strings.TrimPrefix(q, "only ")
			if q == "all" || q == medium {
				return true
			}
		}
		return false
	}
}

type buckets struct {
	host      []*Rule
	id        map[string][]*Rule
	class     map[string][]*Rule
	tag       map[string][]*Rule
	universal []*Rule
}

func newBuckets() buckets {
	return buckets{
		id:    make(map[string][]*Rule),
		class: make(map[string][]*Rule),
		tag:   make(map[string][]*Rule),
	}
}

// RuleSet is an index of style rules for one tree scope.
type RuleSet struct {
	scope     dom.Handle // root of the tree scope the rules belong to; Null = document
	media     MediaEvaluator
	flat      buckets // compacted, read-only
	pending   buckets // growable build lists
	npending  int
	all       []*Rule // every rule, by position
	features  dom.SelectFeatures
	tags      map[string]struct{}
	position  int
	hasHost   bool
	hasStruct bool
}

// New creates an empty rule set. Scope is the root of the tree the rules
// are declared in, i.e. a shadow root for rules of a <style> element in a
// shadow tree, or Null for document rules.
func New(scope dom.Handle) *RuleSet {
	return &RuleSet{
		scope:   scope,
		media:   MediaType("screen"),
		flat:    newBuckets(),
		pending: newBuckets(),
		tags:    make(map[string]struct{}),
	}
}

// Scope returns the tree scope of the rule set.
func (rs *RuleSet) Scope() dom.Handle {
	return rs.scope
}

// SetMediaEvaluator replaces the evaluator for @media preludes.
// It is consulted by subsequent calls to AddStyleSheet.
func (rs *RuleSet) SetMediaEvaluator(m MediaEvaluator) {
	if m != nil {
		rs.media = m
	}
}

// Len returns the number of rules in the rule set.
func (rs *RuleSet) Len() int {
	return len(rs.all)
}

// Rules returns all rules in order of insertion.
func (rs *RuleSet) Rules() []*Rule {
	return rs.all
}

// Features returns the ids, classes and attribute names used by any rule.
func (rs *RuleSet) Features() *dom.SelectFeatures {
	return &rs.features
}

// UsesTag is a predicate: does any rule mention a tag name?
func (rs *RuleSet) UsesTag(tag string) bool {
	_, ok := rs.tags[tag]
	return ok
}

// AddStyleSheet compiles the style rules of a stylesheet and adds them to
// the rule set. Rules nested in @media are added if the media evaluator
// accepts the media query; rules nested in @supports are always added.
// Rules with selectors which do not compile are skipped.
// It returns the number of rules added.
func (rs *RuleSet) AddStyleSheet(sheet cssom.StyleSheet) int {
	if sheet == nil || sheet.Empty() {
		return 0
	}
	n := rs.Len()
	rs.addRules(sheet.Rules())
	tracer().Debugf("added %d rules from stylesheet", rs.Len()-n)
	return rs.Len() - n
}

func (rs *RuleSet) addRules(rules []cssom.Rule) {
	for _, r := range rules {
		switch r.Type() {
		case cssom.StyleRule:
			list, err := selector.Compile(r.Selector())
			if err != nil {
				tracer().Errorf("skipping rule %q: %v", r.Selector(), err)
				continue
			}
			rs.AddRule(list, r)
		case cssom.MediaRule:
			if rs.media(r.Selector()) {
				rs.addRules(r.Nested())
			}
		case cssom.SupportsRule:
			rs.addRules(r.Nested())
		default:
			tracer().Debugf("at-rule @%s does not contribute style rules", r.AtKeyword())
		}
	}
}

// AddRule adds a rule for every alternative of a selector list.
func (rs *RuleSet) AddRule(list *selector.List, decl cssom.Rule) {
	if list.IsEmpty() {
		return
	}
	rs.features.Collect(list)
	for i, alt := range list.Alternatives {
		r := &Rule{
			Selector:      alt,
			List:          list,
			SelectorIndex: i,
			Position:      rs.position,
			Scope:         rs.scope,
			Decl:          decl,
		}
		rs.position++
		r.Bucket, r.Key = chooseBucket(alt.Rightmost())
		rs.collectTags(alt)
		rs.pending.add(r)
		rs.npending++
		rs.all = append(rs.all, r)
	}
}

func (rs *RuleSet) collectTags(c *selector.Complex) {
	for _, cmp := range c.Compounds {
		if tag, ok := cmp.TagName(); ok {
			rs.tags[tag] = struct{}{}
		}
		for _, p := range cmp.Pseudos() {
			if p.Kind == selector.PseudoHost {
				rs.hasHost = true
			}
			if p.Kind.IsStructural() {
				rs.hasStruct = true
			}
		}
	}
}

// chooseBucket selects a bucket by inspecting the rightmost compound.
func chooseBucket(cmp selector.Compound) (Bucket, string) {
	if _, ok := cmp.Host(); ok {
		return HostBucket, ""
	}
	if ids := cmp.IDs(); len(ids) > 0 {
		return IDBucket, ids[0]
	}
	if classes := cmp.Classes(); len(classes) > 0 {
		return ClassBucket, classes[0]
	}
	if tag, ok := cmp.TagName(); ok {
		return TagBucket, tag
	}
	return UniversalBucket, ""
}

func (b *buckets) add(r *Rule) {
	switch r.Bucket {
	case HostBucket:
		b.host = append(b.host, r)
	case IDBucket:
		b.id[r.Key] = append(b.id[r.Key], r)
	case ClassBucket:
		b.class[r.Key] = append(b.class[r.Key], r)
	case TagBucket:
		b.tag[r.Key] = append(b.tag[r.Key], r)
	default:
		b.universal = append(b.universal, r)
	}
}

// Compact moves all pending rules into the flat buckets. Only buckets which
// received new rules are rebuilt. Relative order of rules is preserved.
// Compact is called implicitly by lookups.
func (rs *RuleSet) Compact() {
	if rs.npending == 0 {
		return
	}
	rs.flat.host = compactList(rs.flat.host, rs.pending.host)
	rs.flat.universal = compactList(rs.flat.universal, rs.pending.universal)
	compactMap(rs.flat.id, rs.pending.id)
	compactMap(rs.flat.class, rs.pending.class)
	compactMap(rs.flat.tag, rs.pending.tag)
	tracer().Debugf("compacted %d pending rules", rs.npending)
	rs.pending = newBuckets()
	rs.npending = 0
}

// compactList concatenates a compacted list and its pending rules into a
// new slice of exactly the required size. As positions are strictly
// increasing, pending rules always follow compacted ones.
func compactList(flat, pending []*Rule) []*Rule {
	if len(pending) == 0 {
		return flat
	}
	l := make([]*Rule, 0, len(flat)+len(pending))
	l = append(l, flat...)
	return append(l, pending...)
}

func compactMap(flat, pending map[string][]*Rule) {
	for key, rules := range pending {
		flat[key] = compactList(flat[key], rules)
	}
}

// MatchingRules returns the rules matching an element, ordered by bucket
// priority, then by insertion position. The checker is used to match
// candidates with the scope of the rule set.
func (rs *RuleSet) MatchingRules(ch *matcher.Checker, doc *dom.Document, el dom.Handle) []*Rule {
	if !doc.IsElement(el) {
		return nil
	}
	rs.Compact()
	var result []*Rule
	if host := doc.ShadowHost(rs.scope); host != dom.Null && host == el {
		result = rs.collect(ch, el, rs.flat.host, result)
	}
	if id := doc.ID(el); id != "" {
		result = rs.collect(ch, el, rs.flat.id[id], result)
	}
	start := len(result)
	seen := make(map[string]bool)
	for _, class := range doc.Classes(el) {
		if !seen[class] {
			seen[class] = true
			result = rs.collect(ch, el, rs.flat.class[class], result)
		}
	}
	if len(seen) > 1 { // merge candidates of several classes
		classRules := result[start:]
		sort.SliceStable(classRules, func(i, j int) bool {
			return classRules[i].Position < classRules[j].Position
		})
	}
	result = rs.collect(ch, el, rs.flat.tag[doc.TagName(el)], result)
	result = rs.collect(ch, el, rs.flat.universal, result)
	return result
}

func (rs *RuleSet) collect(ch *matcher.Checker, el dom.Handle, candidates []*Rule, result []*Rule) []*Rule {
	for _, r := range candidates {
		if ch.Match(r.Selector, el, rs.scope) {
			result = append(result, r)
		}
	}
	return result
}

// BruteForceMatchingRules matches every rule against an element, without
// consulting the buckets. The result is ordered like the result of
// MatchingRules.
func (rs *RuleSet) BruteForceMatchingRules(ch *matcher.Checker, doc *dom.Document, el dom.Handle) []*Rule {
	if !doc.IsElement(el) {
		return nil
	}
	var result []*Rule
	for _, r := range rs.all {
		if ch.Match(r.Selector, el, rs.scope) {
			result = append(result, r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Bucket != result[j].Bucket {
			return result[i].Bucket < result[j].Bucket
		}
		return result[i].Position < result[j].Position
	})
	return result
}

// HasHostRules is true if any selector uses :host.
func (rs *RuleSet) HasHostRules() bool {
	return rs.hasHost
}

// HasStructuralRules is true if any selector uses a structural pseudo-class.
func (rs *RuleSet) HasStructuralRules() bool {
	return rs.hasStruct
}
