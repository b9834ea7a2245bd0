package pkgdef

import (
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
)

// Call invokes the method on conn with one JSON-encoded request and returns
// every JSON-encoded response. A unary response yields exactly one element.
// An empty request sends the zero message.
func (m *MethodDefinition) Call(ctx context.Context, conn grpc.ClientConnInterface, request []byte) ([][]byte, error) {
	req, err := m.NewRequest()
	if err != nil {
		return nil, err
	}
	if len(request) > 0 {
		if err := protojson.Unmarshal(request, req); err != nil {
			return nil, fmt.Errorf("%s: decode request: %w", m.Path, err)
		}
	}

	desc := &grpc.StreamDesc{
		StreamName:    m.Name,
		ServerStreams: m.ResponseStream,
		ClientStreams: m.RequestStream,
	}
	stream, err := conn.NewStream(ctx, desc, m.Path)
	if err != nil {
		return nil, err
	}
	// io.EOF from SendMsg means the server already finished; its status
	// surfaces from RecvMsg.
	if err := stream.SendMsg(req); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}

	var out [][]byte
	for {
		resp, err := m.NewResponse()
		if err != nil {
			return nil, err
		}
		err = stream.RecvMsg(resp)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		data, err := protojson.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("%s: encode response: %w", m.Path, err)
		}
		out = append(out, data)
		if !m.ResponseStream {
			break
		}
	}
	return out, nil
}
