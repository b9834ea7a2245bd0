package pkgdef

import (
	"fmt"

	"github.com/mattinsler/protos/internal/ast"
	"github.com/mattinsler/protos/internal/ir"
	"github.com/mattinsler/protos/internal/traverse"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// PackageDefinition maps service fullnames to their definitions.
type PackageDefinition map[string]*ServiceDefinition

// ServiceDefinition describes one service for a generic gRPC loader.
type ServiceDefinition struct {
	Name     string              `json:"name"`
	Fullname string              `json:"fullname"`
	Filename string              `json:"filename"`
	Methods  []*MethodDefinition `json:"methods"`
}

// MethodDefinition describes one RPC. Path is the gRPC method path,
// "/<service fullname>/<method>".
type MethodDefinition struct {
	Name           string `json:"name"`
	Path           string `json:"path"`
	RequestType    string `json:"requestType"`
	ResponseType   string `json:"responseType"`
	RequestStream  bool   `json:"requestStream"`
	ResponseStream bool   `json:"responseStream"`

	request  protoreflect.MessageDescriptor
	response protoreflect.MessageDescriptor
}

// Definitions collects a definition for every service in spec.
func Definitions(spec *ir.ProtoSpec) (PackageDefinition, error) {
	return traverse.Run[PackageDefinition](ast.FromSpec(spec), &definitions{})
}

// definitions is the aggregator behind Definitions. Services open a
// definition on enter; methods are handled without descending into their
// request and response types.
type definitions struct {
	out     PackageDefinition
	current *ServiceDefinition
}

func (d *definitions) Init() error {
	d.out = PackageDefinition{}
	d.current = nil
	return nil
}

func (d *definitions) Visitor() *traverse.Visitor {
	return &traverse.Visitor{
		Service: traverse.Visit[*ast.Service]{
			Enter: func(_ *traverse.Path, n *ast.Service) error {
				if _, dup := d.out[n.Fullname]; dup {
					return fmt.Errorf("duplicate service %s", n.Fullname)
				}
				d.current = &ServiceDefinition{
					Name:     n.Name,
					Fullname: n.Fullname,
					Filename: n.Filename,
					Methods:  []*MethodDefinition{},
				}
				d.out[n.Fullname] = d.current
				return nil
			},
			Exit: func(_ *traverse.Path, _ *ast.Service) error {
				d.current = nil
				return nil
			},
		},
		Method: traverse.Visit[*ast.Method]{
			Handle: func(_ *traverse.Path, n *ast.Method) error {
				if d.current == nil {
					return fmt.Errorf("method %s outside of a service", n.Name)
				}
				d.current.Methods = append(d.current.Methods, &MethodDefinition{
					Name:           n.Name,
					Path:           "/" + d.current.Fullname + "/" + n.Name,
					RequestType:    n.Request.Type.Name,
					ResponseType:   n.Response.Type.Name,
					RequestStream:  n.Request.Stream,
					ResponseStream: n.Response.Stream,
				})
				return nil
			},
		},
	}
}

func (d *definitions) Finalize() PackageDefinition {
	out := d.out
	d.out = nil
	d.current = nil
	return out
}

// Method returns the named method, or nil.
func (s *ServiceDefinition) Method(name string) *MethodDefinition {
	for _, m := range s.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}
