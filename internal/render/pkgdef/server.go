package pkgdef

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/reflect/protoregistry"
)

// NewServer resolves every service of defs against files and registers it
// on a new grpc.Server with handler.
func NewServer(defs PackageDefinition, files *protoregistry.Files, handler MethodHandler, opts ...grpc.ServerOption) (*grpc.Server, error) {
	srv := grpc.NewServer(opts...)
	for _, name := range slices.Sorted(maps.Keys(defs)) {
		svc := defs[name]
		if err := svc.Resolve(files); err != nil {
			return nil, fmt.Errorf("resolve %s: %w", name, err)
		}
		desc := svc.GRPCServiceDesc(handler)
		srv.RegisterService(&desc, nil)
	}
	return srv, nil
}

// MockHandler answers every call with one empty response after draining
// the request side. Requests are logged at info level.
func MockHandler(logger *slog.Logger) MethodHandler {
	return func(m *MethodDefinition) grpc.StreamHandler {
		return func(_ any, stream grpc.ServerStream) error {
			for {
				req, err := m.NewRequest()
				if err != nil {
					return status.Error(codes.Internal, err.Error())
				}
				err = stream.RecvMsg(req)
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}
				logger.Info("request received",
					"method", m.Path,
					"request", protojson.Format(req))
				if !m.RequestStream {
					break
				}
			}

			resp, err := m.NewResponse()
			if err != nil {
				return status.Error(codes.Internal, err.Error())
			}
			return stream.SendMsg(resp)
		}
	}
}
