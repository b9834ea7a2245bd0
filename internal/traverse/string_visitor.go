package traverse

import (
	"iter"
	"strings"

	"github.com/mattinsler/protos/internal/ast"
)

// Fragment is what a text callback contributes: nil, Text, Texts or Seq.
type Fragment interface {
	isFragment()
}

// Text is a single fragment. Empty text contributes nothing.
type Text string

// Texts is a flat run of fragments.
type Texts []string

// Seq lazily yields Text or Texts elements, which are spliced flat. A Seq
// yielding another Seq is a contract violation.
type Seq iter.Seq[Fragment]

func (Text) isFragment()  {}
func (Texts) isFragment() {}
func (Seq) isFragment()   {}

// Lines is a convenience Seq over a fixed list of fragments.
func Lines(frags ...Fragment) Seq {
	return func(yield func(Fragment) bool) {
		for _, f := range frags {
			if !yield(f) {
				return
			}
		}
	}
}

// TextVisit holds the text callbacks for one node kind.
type TextVisit[N ast.Node] struct {
	Enter  func(p *Path, n N) (Fragment, error)
	Exit   func(p *Path, n N) (Fragment, error)
	Handle func(p *Path, n N) (Fragment, error)
}

// TextVisitor has one optional TextVisit per node kind.
type TextVisitor struct {
	Root           TextVisit[*ast.Root]
	Package        TextVisit[*ast.Package]
	Enum           TextVisit[*ast.Enum]
	EnumValue      TextVisit[*ast.EnumValue]
	Message        TextVisit[*ast.Message]
	BasicField     TextVisit[*ast.BasicField]
	OneOfField     TextVisit[*ast.OneOfField]
	BasicType      TextVisit[*ast.BasicType]
	EnumType       TextVisit[*ast.EnumType]
	MapType        TextVisit[*ast.MapType]
	MessageType    TextVisit[*ast.MessageType]
	Service        TextVisit[*ast.Service]
	Method         TextVisit[*ast.Method]
	MethodRequest  TextVisit[*ast.MethodRequest]
	MethodResponse TextVisit[*ast.MethodResponse]
}

// StringOption configures a StringVisitor.
type StringOption func(*StringVisitor)

// WithSeparator sets the string placed between fragments. The default is a
// single space.
func WithSeparator(sep string) StringOption {
	return func(s *StringVisitor) {
		s.sep = sep
	}
}

// StringVisitor adapts a TextVisitor into an Aggregator[string]. One
// instance serves one traversal at a time and is not safe for concurrent
// use.
type StringVisitor struct {
	sep      string
	visitor  *Visitor
	buf      []string
	inFlight bool
}

var _ Aggregator[string] = (*StringVisitor)(nil)

// NewStringVisitor wraps tv.
func NewStringVisitor(tv *TextVisitor, opts ...StringOption) *StringVisitor {
	s := &StringVisitor{sep: " "}
	for _, opt := range opts {
		opt(s)
	}
	s.visitor = &Visitor{
		Root:           adapt(s, tv.Root),
		Package:        adapt(s, tv.Package),
		Enum:           adapt(s, tv.Enum),
		EnumValue:      adapt(s, tv.EnumValue),
		Message:        adapt(s, tv.Message),
		BasicField:     adapt(s, tv.BasicField),
		OneOfField:     adapt(s, tv.OneOfField),
		BasicType:      adapt(s, tv.BasicType),
		EnumType:       adapt(s, tv.EnumType),
		MapType:        adapt(s, tv.MapType),
		MessageType:    adapt(s, tv.MessageType),
		Service:        adapt(s, tv.Service),
		Method:         adapt(s, tv.Method),
		MethodRequest:  adapt(s, tv.MethodRequest),
		MethodResponse: adapt(s, tv.MethodResponse),
	}
	return s
}

func adapt[N ast.Node](s *StringVisitor, tv TextVisit[N]) Visit[N] {
	wrap := func(cb func(*Path, N) (Fragment, error)) func(*Path, N) error {
		if cb == nil {
			return nil
		}
		return func(p *Path, n N) error {
			frag, err := cb(p, n)
			if err != nil {
				return err
			}
			return s.append(n.Kind(), frag)
		}
	}
	return Visit[N]{Enter: wrap(tv.Enter), Exit: wrap(tv.Exit), Handle: wrap(tv.Handle)}
}

// Init resets the accumulator. It fails with ErrAdapterInUse when a walk
// with this adapter has not been finalized yet.
func (s *StringVisitor) Init() error {
	if s.inFlight {
		return ErrAdapterInUse
	}
	s.inFlight = true
	s.buf = s.buf[:0]
	return nil
}

// Visitor returns the adapted visitor.
func (s *StringVisitor) Visitor() *Visitor {
	return s.visitor
}

// Finalize joins the accumulated fragments and releases the adapter.
func (s *StringVisitor) Finalize() string {
	out := strings.Join(s.buf, s.sep)
	s.buf = s.buf[:0]
	s.inFlight = false
	return out
}

func (s *StringVisitor) append(kind ast.Kind, frag Fragment) error {
	switch f := frag.(type) {
	case nil:
	case Text:
		s.push(string(f))
	case Texts:
		for _, t := range f {
			s.push(t)
		}
	case Seq:
		for item := range f {
			switch it := item.(type) {
			case nil:
			case Text:
				s.push(string(it))
			case Texts:
				for _, t := range it {
					s.push(t)
				}
			case Seq:
				return &ContractError{Kind: kind, Reason: "sequence nested inside a sequence"}
			default:
				return &ContractError{Kind: kind, Reason: "unknown fragment in sequence"}
			}
		}
	default:
		return &ContractError{Kind: kind, Reason: "unknown fragment"}
	}
	return nil
}

func (s *StringVisitor) push(t string) {
	if t != "" {
		s.buf = append(s.buf, t)
	}
}

// RenderString renders node with a fresh adapter over tv.
func RenderString(node ast.Node, tv *TextVisitor, opts ...StringOption) (string, error) {
	return Run(node, NewStringVisitor(tv, opts...))
}

// RenderPath renders the subtree at p with a fresh adapter over tv. Handle
// callbacks use it to render a child into a single fragment.
func RenderPath(p *Path, tv *TextVisitor, opts ...StringOption) (string, error) {
	return RunPath(p, NewStringVisitor(tv, opts...))
}
