package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// CallOptions holds flags for the call command.
type CallOptions struct {
	*RootOptions
	Addr    string
	Method  string
	Data    string
	Timeout time.Duration
}

// CallResult is the JSON payload of a successful call.
type CallResult struct {
	Method    string            `json:"method"`
	Responses []json.RawMessage `json:"responses"`
}

// NewCallCommand creates the call command.
func NewCallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "call [descriptor-set...]",
		Short: "Call a gRPC method using compiled descriptors",
		Long: `Call one method of a gRPC server without generated code. The request is
given as protojson with --data; each response is printed as JSON, one per
line for streaming methods. The connection is plaintext.

Example:
  protos call api.pb --addr 127.0.0.1:50051 \
    --method acme.catalog.v1.Catalog/GetProduct --data '{"id": "p-1"}'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "127.0.0.1:50051", "server address")
	cmd.Flags().StringVarP(&opts.Method, "method", "m", "", "method as <service>/<method> (required)")
	_ = cmd.MarkFlagRequired("method")
	cmd.Flags().StringVarP(&opts.Data, "data", "d", "", "request as protojson")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "call timeout")

	return cmd
}

func runCall(ctx context.Context, opts *CallOptions, args []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	sources := args
	if len(sources) == 0 {
		sources = opts.config().Descriptors
	}
	defs, files, err := loadServices(sources, opts.logger())
	if err != nil {
		return formatter.fail(err)
	}
	svc, method, err := findMethod(defs, opts.Method)
	if err != nil {
		return formatter.fail(err)
	}
	if err := svc.Resolve(files); err != nil {
		return formatter.fail(withCode(ErrCodeRender, err))
	}

	conn, err := grpc.NewClient(opts.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return formatter.fail(withCode(ErrCodeNetwork, err))
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	formatter.VerboseLog("Calling %s on %s", method.Path, opts.Addr)
	responses, err := method.Call(ctx, conn, []byte(opts.Data))
	if err != nil {
		return formatter.fail(withCode(ErrCodeNetwork, err))
	}

	if formatter.Format == "json" {
		result := CallResult{Method: method.Path, Responses: make([]json.RawMessage, len(responses))}
		for i, r := range responses {
			result.Responses[i] = r
		}
		return formatter.Success(result)
	}
	for _, r := range responses {
		fmt.Fprintln(formatter.Writer, string(r))
	}
	return nil
}
