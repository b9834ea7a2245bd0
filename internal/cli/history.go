package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattinsler/protos/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Show     string // snapshot ID or "latest"
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List compiled IR snapshots",
		Long: `List the IR snapshots recorded by compile --db, oldest first.

With --show, print the IR of one snapshot instead; pass a snapshot ID or
"latest".

Examples:
  protos history --db protos.db
  protos history --db protos.db --show latest > protos.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (defaults to protos.yaml database)")
	cmd.Flags().StringVar(&opts.Show, "show", "", `print the IR of a snapshot ID or "latest"`)

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = opts.config().Database
	}
	if dbPath == "" {
		return formatter.fail(withCode(ErrCodeUsage, errors.New("no database: pass --db or set database in protos.yaml")))
	}

	st, err := store.Open(dbPath, store.WithLogger(opts.logger()))
	if err != nil {
		return formatter.fail(withCode(ErrCodeStore, err))
	}
	defer st.Close()

	if opts.Show != "" {
		return showSnapshot(ctx, st, opts.Show, formatter)
	}

	summaries, err := st.ListSnapshots(ctx)
	if err != nil {
		return formatter.fail(withCode(ErrCodeStore, err))
	}

	if formatter.Format == "json" {
		return formatter.Success(summaries)
	}

	w := formatter.Writer
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No snapshots recorded")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(w, "%4d  %s  %s  %s  %d enum(s), %d message(s), %d service(s)\n",
			s.Seq, s.ID, s.CreatedAt.Format(time.RFC3339), shortHash(s.SpecHash),
			s.EnumCount, s.MessageCount, s.ServiceCount)
	}
	return nil
}

func showSnapshot(ctx context.Context, st *store.Store, which string, formatter *OutputFormatter) error {
	var snap store.Snapshot
	var err error
	if which == "latest" {
		snap, err = st.LatestSnapshot(ctx)
	} else {
		snap, err = st.ReadSnapshot(ctx, which)
	}
	if errors.Is(err, store.ErrNotFound) {
		return formatter.fail(withCode(ErrCodeStore, fmt.Errorf("snapshot %q not found", which)))
	}
	if err != nil {
		return formatter.fail(withCode(ErrCodeStore, err))
	}

	if formatter.Format == "json" {
		return formatter.Success(snap)
	}
	data, err := marshalIndent(snap.Spec)
	if err != nil {
		return err
	}
	_, err = formatter.Writer.Write(data)
	return err
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
