package cli

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/mattinsler/protos/internal/render/pkgdef"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve [descriptor-set...]",
		Short: "Serve a mock gRPC server for the compiled services",
		Long: `Start a gRPC server exposing every service of the descriptor sets. Each
call is logged and answered with an empty response message; streaming
responses send one message. Stops on interrupt.

Example:
  protos serve api.pb --addr 127.0.0.1:50051`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "127.0.0.1:50051", "listen address")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := opts.logger()

	sources := args
	if len(sources) == 0 {
		sources = opts.config().Descriptors
	}
	defs, files, err := loadServices(sources, logger)
	if err != nil {
		return formatter.fail(err)
	}
	srv, err := pkgdef.NewServer(defs, files, pkgdef.MockHandler(logger))
	if err != nil {
		return formatter.fail(withCode(ErrCodeRender, err))
	}

	lis, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return formatter.fail(withCode(ErrCodeNetwork, err))
	}
	logger.Info("serving", "addr", lis.Addr().String(), "services", len(defs))
	formatter.VerboseLog("Listening on %s", lis.Addr())

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return formatter.fail(withCode(ErrCodeNetwork, err))
	}
	return nil
}
