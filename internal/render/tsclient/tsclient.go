// Package tsclient renders TypeScript declarations for a compiled spec:
// one namespace per package segment, an enum per enum, an interface per
// message and an interface per service with one method per RPC.
//
// A message with a oneof group is rendered as a discriminated union: one
// interface per group member, named <Message>_<member>, tagged by a
// property named after the group.
package tsclient

import (
	"fmt"
	"strings"

	"github.com/mattinsler/protos/internal/ast"
	"github.com/mattinsler/protos/internal/ir"
	"github.com/mattinsler/protos/internal/traverse"
)

// Header is the first line of every rendered file.
const Header = "// Code generated by protos. DO NOT EDIT."

// LongType is the TypeScript type used for 64-bit integers.
type LongType string

// Supported 64-bit representations. JSON encodes 64-bit integers as
// strings, hence the default.
const (
	LongString LongType = "string"
	LongNumber LongType = "number"
	LongBigInt LongType = "bigint"
)

// Option configures a Generator.
type Option func(*Generator)

// WithLongType sets the type used for 64-bit integers.
func WithLongType(t LongType) Option {
	return func(g *Generator) {
		g.longType = t
	}
}

// WithIndent sets the indentation unit. Defaults to two spaces.
func WithIndent(unit string) Option {
	return func(g *Generator) {
		g.indent = unit
	}
}

// Generator renders TypeScript. It holds only options and is safe for
// concurrent use; every render uses fresh string adapters.
type Generator struct {
	longType LongType
	indent   string
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{longType: LongString, indent: "  "}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Render renders the whole spec.
func Render(spec *ir.ProtoSpec, opts ...Option) (string, error) {
	return New(opts...).Render(spec)
}

// Render renders the whole spec.
func (g *Generator) Render(spec *ir.ProtoSpec) (string, error) {
	return g.RenderNode(ast.FromSpec(spec))
}

// RenderNode renders any subtree, e.g. a single package.
func (g *Generator) RenderNode(n ast.Node) (string, error) {
	body, err := traverse.RenderString(n, g.declarations(), traverse.WithSeparator("\n"))
	if err != nil {
		return "", fmt.Errorf("render typescript: %w", err)
	}
	return indent(Header+"\n"+body, g.indent), nil
}

func (g *Generator) declarations() *traverse.TextVisitor {
	return &traverse.TextVisitor{
		Package: traverse.TextVisit[*ast.Package]{
			Enter: func(p *traverse.Path, n *ast.Package) (traverse.Fragment, error) {
				if n.Name == "" {
					return nil, nil
				}
				return traverse.Text("export namespace " + escapeIdent(n.Name) + " {"), nil
			},
			Exit: func(p *traverse.Path, n *ast.Package) (traverse.Fragment, error) {
				if n.Name == "" {
					return nil, nil
				}
				return traverse.Text("}"), nil
			},
		},
		Enum: traverse.TextVisit[*ast.Enum]{
			Enter: func(p *traverse.Path, n *ast.Enum) (traverse.Fragment, error) {
				return traverse.Lines(
					traverse.Texts(docComment(n.Comments)),
					traverse.Text("export enum "+escapeIdent(n.Name)+" {"),
				), nil
			},
			Exit: func(p *traverse.Path, n *ast.Enum) (traverse.Fragment, error) {
				return traverse.Text("}"), nil
			},
		},
		EnumValue: traverse.TextVisit[*ast.EnumValue]{
			Handle: func(p *traverse.Path, n *ast.EnumValue) (traverse.Fragment, error) {
				return traverse.Lines(
					traverse.Texts(docComment(n.Comments)),
					traverse.Text(fmt.Sprintf("%s = %d,", n.Name, n.Value)),
				), nil
			},
		},
		Message: traverse.TextVisit[*ast.Message]{
			Handle: g.message,
		},
		Service: traverse.TextVisit[*ast.Service]{
			Enter: func(p *traverse.Path, n *ast.Service) (traverse.Fragment, error) {
				return traverse.Lines(
					traverse.Texts(docComment(n.Comments)),
					traverse.Text("export interface "+escapeIdent(n.Name)+" {"),
				), nil
			},
			Exit: func(p *traverse.Path, n *ast.Service) (traverse.Fragment, error) {
				return traverse.Text("}"), nil
			},
		},
		Method: traverse.TextVisit[*ast.Method]{
			Handle: g.method,
		},
	}
}

// message renders an interface, or a union of interfaces when the message
// has a non-empty oneof group.
func (g *Generator) message(p *traverse.Path, n *ast.Message) (traverse.Fragment, error) {
	name := escapeIdent(n.Name)
	lines := docComment(n.Comments)

	group := n.OneOf()
	if group == nil || len(group.Fields) == 0 {
		fields, err := g.fields(p, nil)
		if err != nil {
			return nil, err
		}
		lines = append(lines, "export interface "+name+" {")
		lines = append(lines, fields...)
		return traverse.Texts(append(lines, "}")), nil
	}

	rest, err := g.fields(p, group)
	if err != nil {
		return nil, err
	}
	var variants []string
	for _, mp := range p.Get("oneof").GetList("fields") {
		member := mp.Node.(*ast.BasicField)
		variant := n.Name + "_" + member.Name
		variants = append(variants, variant)

		line, err := g.field(mp, true)
		if err != nil {
			return nil, err
		}
		lines = append(lines,
			"export interface "+variant+" {",
			fmt.Sprintf("%s: '%s';", group.Name, member.Name),
		)
		lines = append(lines, line...)
		lines = append(lines, rest...)
		lines = append(lines, "}")
	}
	lines = append(lines, "export type "+name+" = "+strings.Join(variants, " | ")+";")
	return traverse.Texts(lines), nil
}

// fields renders every field of the message at p except the members of
// skip. Members of other oneof groups are rendered as optional fields.
func (g *Generator) fields(p *traverse.Path, skip *ast.OneOfField) ([]string, error) {
	var out []string
	for _, fp := range p.Children() {
		switch f := fp.Node.(type) {
		case *ast.BasicField:
			line, err := g.field(fp, false)
			if err != nil {
				return nil, err
			}
			out = append(out, line...)
		case *ast.OneOfField:
			if f == skip {
				continue
			}
			for _, mp := range fp.Children() {
				line, err := g.field(mp, false)
				if err != nil {
					return nil, err
				}
				out = append(out, line...)
			}
		}
	}
	return out, nil
}

func (g *Generator) field(fp *traverse.Path, required bool) ([]string, error) {
	f := fp.Node.(*ast.BasicField)
	typ, err := traverse.RenderPath(fp.Get("type"), g.types())
	if err != nil {
		return nil, err
	}
	opt := "?"
	if required || f.Required {
		opt = ""
	}
	if f.Repeated {
		typ += "[]"
	}
	return append(docComment(f.Comments), fmt.Sprintf("%s%s: %s;", f.Name, opt, typ)), nil
}

func (g *Generator) method(p *traverse.Path, n *ast.Method) (traverse.Fragment, error) {
	req, err := traverse.RenderPath(p.Get("request"), g.types())
	if err != nil {
		return nil, err
	}
	res, err := traverse.RenderPath(p.Get("response"), g.types())
	if err != nil {
		return nil, err
	}
	if n.Request.Stream {
		req = "AsyncIterable<" + req + ">"
	}
	if n.Response.Stream {
		res = "AsyncIterable<" + res + ">"
	} else {
		res = "Promise<" + res + ">"
	}
	return traverse.Lines(
		traverse.Texts(docComment(n.Comments)),
		traverse.Text(fmt.Sprintf("%s(req: %s): %s;", escapeMethod(n.Name), req, res)),
	), nil
}

// types renders a single type expression. Request and response wrappers
// pass through to their message type.
func (g *Generator) types() *traverse.TextVisitor {
	return &traverse.TextVisitor{
		BasicType: traverse.TextVisit[*ast.BasicType]{
			Handle: func(p *traverse.Path, n *ast.BasicType) (traverse.Fragment, error) {
				return traverse.Text(g.scalar(n.Name)), nil
			},
		},
		EnumType: traverse.TextVisit[*ast.EnumType]{
			Handle: func(p *traverse.Path, n *ast.EnumType) (traverse.Fragment, error) {
				return traverse.Text(qualify(n.Name)), nil
			},
		},
		MessageType: traverse.TextVisit[*ast.MessageType]{
			Handle: func(p *traverse.Path, n *ast.MessageType) (traverse.Fragment, error) {
				return traverse.Text(qualify(n.Name)), nil
			},
		},
		MapType: traverse.TextVisit[*ast.MapType]{
			Handle: func(p *traverse.Path, n *ast.MapType) (traverse.Fragment, error) {
				value, err := traverse.RenderPath(p.Get("value"), g.types())
				if err != nil {
					return nil, err
				}
				return traverse.Text("{ [key: string]: " + value + " }"), nil
			},
		},
	}
}

func (g *Generator) scalar(s ir.Scalar) string {
	switch s {
	case ir.ScalarInt64, ir.ScalarUint64, ir.ScalarSint64, ir.ScalarFixed64, ir.ScalarSfixed64:
		return string(g.longType)
	case ir.ScalarBool:
		return "boolean"
	case ir.ScalarString:
		return "string"
	case ir.ScalarBytes:
		return "Uint8Array"
	default:
		return "number"
	}
}
