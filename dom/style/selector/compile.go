package selector

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/css/scanner"
)

// ErrSyntax is returned for selector text which cannot be compiled.
var ErrSyntax = errors.New("selector syntax error")

// ErrUnsupported is returned for valid CSS selector constructs which this
// package does not model (sibling combinators, pseudo-elements).
var ErrUnsupported = errors.New("unsupported selector construct")

// Compile compiles a selector list. Tag names and attribute names are folded
// to lower case, ids and class names are case-sensitive.
func Compile(text string) (*List, error) {
	p := &parser{}
	if err := p.tokenize(text); err != nil {
		return nil, err
	}
	list, err := p.list(false)
	if err != nil {
		tracer().Debugf("cannot compile selector %q: %v", text, err)
		return nil, err
	}
	if !p.at(scanner.TokenEOF) {
		return nil, p.errorf(ErrSyntax, "unexpected %q", p.peek().Value)
	}
	list.Text = strings.TrimSpace(text)
	return list, nil
}

// MustCompile is like Compile, but panics on errors.
func MustCompile(text string) *List {
	list, err := Compile(text)
	if err != nil {
		panic(err)
	}
	return list
}

// --- Parser ----------------------------------------------------------------

type parser struct {
	tokens []*scanner.Token
	pos    int
}

func (p *parser) tokenize(text string) error {
	if !utf8.ValidString(text) {
		column := 1
		for i, r := range text {
			if r == utf8.RuneError {
				if _, size := utf8.DecodeRuneInString(text[i:]); size == 1 {
					break
				}
			}
			column++
		}
		return fmt.Errorf("%w: invalid UTF-8 (column %d)", ErrSyntax, column)
	}
	s := scanner.New(text)
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenError:
			return fmt.Errorf("%w: %s", ErrSyntax, tok.Value)
		case scanner.TokenComment, scanner.TokenBOM:
			continue
		}
		p.tokens = append(p.tokens, tok)
		if tok.Type == scanner.TokenEOF {
			return nil
		}
	}
}

func (p *parser) peek() *scanner.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) next() *scanner.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) at(typ interface{}) bool {
	return p.peek().Type == typ
}

func (p *parser) atChar(c string) bool {
	tok := p.peek()
	return tok.Type == scanner.TokenChar && tok.Value == c
}

func (p *parser) skipSpace() bool {
	skipped := false
	for p.at(scanner.TokenS) {
		p.next()
		skipped = true
	}
	return skipped
}

func (p *parser) errorf(kind error, format string, args ...interface{}) error {
	tok := p.peek()
	return fmt.Errorf("%w: %s (column %d)", kind, fmt.Sprintf(format, args...), tok.Column)
}

// list parses a comma separated list of complex selectors. If nested is
// set, the list is the argument of a functional pseudo-class and ends at ')'.
func (p *parser) list(nested bool) (*List, error) {
	list := &List{}
	for {
		p.skipSpace()
		if nested && p.atChar(")") && len(list.Alternatives) == 0 {
			return list, nil // empty argument, as in :host()
		}
		cplx, err := p.complex(nested)
		if err != nil {
			return nil, err
		}
		list.Alternatives = append(list.Alternatives, cplx)
		if !p.atChar(",") {
			break
		}
		p.next()
	}
	return list, nil
}

func (p *parser) endOfComplex(nested bool) bool {
	return p.at(scanner.TokenEOF) || p.atChar(",") || (nested && p.atChar(")"))
}

func (p *parser) complex(nested bool) (*Complex, error) {
	cplx := &Complex{}
	comb := NoCombinator
	for {
		cmp, err := p.compound()
		if err != nil {
			return nil, err
		}
		cmp.Combinator = comb
		cplx.Compounds = append(cplx.Compounds, cmp)
		ws := p.skipSpace()
		if p.endOfComplex(nested) {
			return cplx, nil
		}
		switch {
		case p.atChar(">"):
			p.next()
			p.skipSpace()
			comb = Child
		case p.atChar("+") || p.atChar("~"):
			return nil, p.errorf(ErrUnsupported, "sibling combinator %q", p.peek().Value)
		case ws:
			comb = Descendant
		default:
			return nil, p.errorf(ErrSyntax, "unexpected %q", p.peek().Value)
		}
	}
}

func (p *parser) compound() (Compound, error) {
	var cmp Compound
	first := true
	for {
		tok := p.peek()
		switch {
		case first && tok.Type == scanner.TokenIdent:
			p.next()
			cmp.Simples = append(cmp.Simples, Tag{Name: strings.ToLower(tok.Value)})
		case first && p.atChar("*"):
			p.next()
			cmp.Simples = append(cmp.Simples, Universal{})
		case tok.Type == scanner.TokenHash:
			p.next()
			cmp.Simples = append(cmp.Simples, ID{Name: tok.Value[1:]})
		case p.atChar("."):
			p.next()
			if !p.at(scanner.TokenIdent) {
				return cmp, p.errorf(ErrSyntax, "expected class name")
			}
			cmp.Simples = append(cmp.Simples, Class{Name: p.next().Value})
		case p.atChar("["):
			p.next()
			attr, err := p.attribute()
			if err != nil {
				return cmp, err
			}
			cmp.Simples = append(cmp.Simples, attr)
		case p.atChar(":"):
			p.next()
			pseudo, err := p.pseudo()
			if err != nil {
				return cmp, err
			}
			cmp.Simples = append(cmp.Simples, pseudo)
		default:
			if len(cmp.Simples) == 0 {
				return cmp, p.errorf(ErrSyntax, "expected selector, found %q", tok.Value)
			}
			return cmp, nil
		}
		first = false
	}
}

var attrOpTokens = map[interface{}]AttrOp{
	scanner.TokenIncludes:       AttrIncludes,
	scanner.TokenDashMatch:      AttrDashMatch,
	scanner.TokenPrefixMatch:    AttrPrefix,
	scanner.TokenSuffixMatch:    AttrSuffix,
	scanner.TokenSubstringMatch: AttrContains,
}

func (p *parser) attribute() (Attribute, error) {
	var attr Attribute
	p.skipSpace()
	if !p.at(scanner.TokenIdent) {
		return attr, p.errorf(ErrSyntax, "expected attribute name")
	}
	attr.Name = strings.ToLower(p.next().Value)
	p.skipSpace()
	if p.atChar("]") {
		p.next()
		attr.Op = AttrExists
		return attr, nil
	}
	tok := p.next()
	if op, ok := attrOpTokens[tok.Type]; ok {
		attr.Op = op
	} else if tok.Type == scanner.TokenChar && tok.Value == "=" {
		attr.Op = AttrEquals
	} else {
		return attr, p.errorf(ErrSyntax, "unexpected attribute operator %q", tok.Value)
	}
	p.skipSpace()
	tok = p.next()
	switch tok.Type {
	case scanner.TokenIdent:
		attr.Value = tok.Value
	case scanner.TokenString:
		attr.Value = tok.Value[1 : len(tok.Value)-1]
	default:
		return attr, p.errorf(ErrSyntax, "expected attribute value")
	}
	p.skipSpace()
	if tok := p.peek(); tok.Type == scanner.TokenIdent {
		switch strings.ToLower(tok.Value) {
		case "i":
			attr.CaseInsensitive = true
		case "s": // case-sensitive, the default
		default:
			return attr, p.errorf(ErrSyntax, "unknown attribute flag %q", tok.Value)
		}
		p.next()
		p.skipSpace()
	}
	if !p.atChar("]") {
		return attr, p.errorf(ErrSyntax, "expected ']'")
	}
	p.next()
	return attr, nil
}

func (p *parser) pseudo() (PseudoClass, error) {
	var pc PseudoClass
	tok := p.next()
	switch tok.Type {
	case scanner.TokenIdent:
		pc.Name = strings.ToLower(tok.Value)
		pc.Kind = pseudoNames[pc.Name]
		if pc.Kind == PseudoLang || pc.Kind == PseudoNot {
			return pc, p.errorf(ErrSyntax, ":%s requires an argument", pc.Name)
		}
		if pc.Kind == PseudoUnknown {
			tracer().Debugf("unknown pseudo-class :%s", pc.Name)
		}
		return pc, nil
	case scanner.TokenFunction:
		pc.Name = strings.ToLower(strings.TrimSuffix(tok.Value, "("))
		pc.Kind = pseudoNames[pc.Name]
	case scanner.TokenChar:
		if tok.Value == ":" {
			return pc, p.errorf(ErrUnsupported, "pseudo-element")
		}
		fallthrough
	default:
		return pc, p.errorf(ErrSyntax, "expected pseudo-class name")
	}
	switch pc.Kind {
	case PseudoHost, PseudoNot:
		list, err := p.list(true)
		if err != nil {
			return pc, err
		}
		if !p.atChar(")") {
			return pc, p.errorf(ErrSyntax, "expected ')'")
		}
		p.next()
		if list.IsEmpty() {
			if pc.Kind == PseudoNot {
				return pc, p.errorf(ErrSyntax, ":not() requires an argument")
			}
			return pc, nil
		}
		list.Text = list.String()
		pc.List = list
	default:
		pc.Arg = p.rawArgument()
		if !p.atChar(")") {
			return pc, p.errorf(ErrSyntax, "expected ')'")
		}
		p.next()
		if pc.Kind == PseudoLang && pc.Arg == "" {
			return pc, p.errorf(ErrSyntax, ":lang() requires an argument")
		}
	}
	return pc, nil
}

// rawArgument collects tokens up to the closing parenthesis of a functional
// pseudo-class, honoring nested parentheses.
func (p *parser) rawArgument() string {
	var sb strings.Builder
	depth := 0
	for !p.at(scanner.TokenEOF) {
		tok := p.peek()
		if tok.Type == scanner.TokenChar && tok.Value == ")" {
			if depth == 0 {
				break
			}
			depth--
		} else if tok.Type == scanner.TokenFunction || (tok.Type == scanner.TokenChar && tok.Value == "(") {
			depth++
		}
		if tok.Type == scanner.TokenString {
			sb.WriteString(tok.Value[1 : len(tok.Value)-1])
		} else {
			sb.WriteString(tok.Value)
		}
		p.next()
	}
	return strings.TrimSpace(sb.String())
}
