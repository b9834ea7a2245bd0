package pkgdef

import (
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/dynamicpb"
)

// ErrUnresolved is returned when a message is requested from a method
// definition that has not been resolved.
var ErrUnresolved = errors.New("method definition is not resolved")

// Resolve binds every method's request and response type to a message
// descriptor in files.
func (s *ServiceDefinition) Resolve(files *protoregistry.Files) error {
	for _, m := range s.Methods {
		req, err := findMessage(files, m.RequestType)
		if err != nil {
			return fmt.Errorf("%s request: %w", m.Path, err)
		}
		resp, err := findMessage(files, m.ResponseType)
		if err != nil {
			return fmt.Errorf("%s response: %w", m.Path, err)
		}
		m.request, m.response = req, resp
	}
	return nil
}

func findMessage(files *protoregistry.Files, name string) (protoreflect.MessageDescriptor, error) {
	d, err := files.FindDescriptorByName(protoreflect.FullName(name))
	if err != nil {
		return nil, err
	}
	md, ok := d.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, fmt.Errorf("%s is not a message", name)
	}
	return md, nil
}

// NewRequest returns an empty dynamic request message.
func (m *MethodDefinition) NewRequest() (*dynamicpb.Message, error) {
	if m.request == nil {
		return nil, fmt.Errorf("%s: %w", m.Path, ErrUnresolved)
	}
	return dynamicpb.NewMessage(m.request), nil
}

// NewResponse returns an empty dynamic response message.
func (m *MethodDefinition) NewResponse() (*dynamicpb.Message, error) {
	if m.response == nil {
		return nil, fmt.Errorf("%s: %w", m.Path, ErrUnresolved)
	}
	return dynamicpb.NewMessage(m.response), nil
}

// MethodHandler returns the stream handler serving one method.
type MethodHandler func(m *MethodDefinition) grpc.StreamHandler

// GRPCServiceDesc builds a service description that can be registered on a
// grpc.Server with a nil implementation. Every method is served as a stream
// so unary and streaming calls share one handler shape.
func (s *ServiceDefinition) GRPCServiceDesc(handler MethodHandler) grpc.ServiceDesc {
	streams := make([]grpc.StreamDesc, 0, len(s.Methods))
	for _, m := range s.Methods {
		streams = append(streams, grpc.StreamDesc{
			StreamName:    m.Name,
			Handler:       handler(m),
			ServerStreams: m.ResponseStream,
			ClientStreams: m.RequestStream,
		})
	}
	return grpc.ServiceDesc{
		ServiceName: s.Fullname,
		HandlerType: (*any)(nil),
		Streams:     streams,
		Metadata:    s.Filename,
	}
}
