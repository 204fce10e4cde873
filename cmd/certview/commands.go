package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"certview/config"
	"certview/internal/backend"
	"certview/internal/logger"
	"certview/internal/search"
	"certview/internal/version"
	"certview/internal/view"
)

type listOptions struct {
	showAll bool
	query   string
	backend string
}

func newRootCmd() *cobra.Command {
	var backendAddr string
	root := &cobra.Command{
		Use:           "certview",
		Short:         "Inspect certificates issued by an SSH certificate authority",
		Long:          "Command-line view of the certificates an SSH CA backend has issued, rendered the same way as the web console.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&backendAddr, "backend", "", "CA backend address (overrides CERTVIEW_BACKEND_ADDR)")
	root.AddCommand(newListCmd(&backendAddr), newStatusCmd(&backendAddr), newVersionCmd())
	return root
}

func newListCmd(backendAddr *string) *cobra.Command {
	opts := listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List issued certificates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.backend = *backendAddr
			return runList(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.showAll, "all", "a", false, "Include expired and revoked certificates")
	cmd.Flags().StringVarP(&opts.query, "search", "s", "", "Only show rows whose key ID or principals contain this text")
	return cmd
}

func newStatusCmd(backendAddr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that the CA backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, cfg, err := openBackend(cmd.ErrOrStderr(), *backendAddr)
			if err != nil {
				return err
			}
			defer client.Shutdown()
			ctx, cancel := context.WithTimeout(contextOrBackground(cmd.Context()), cfg.Backend.Timeout)
			defer cancel()
			if err := client.CheckConnection(ctx); err != nil {
				return fmt.Errorf("backend %s: %w", cfg.Backend.Addr, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backend %s is reachable\n", cfg.Backend.Addr)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := version.Info()
			keys := make([]string, 0, len(info))
			for key := range info {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", key, info[key])
			}
		},
	}
}

// openBackend loads the configuration, applies the --backend override and
// builds a client. Logs go to logOut so they never mix with command output.
func openBackend(logOut io.Writer, backendAddr string) (backend.Client, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("load configuration: %w", err)
	}
	if addr := strings.TrimSpace(backendAddr); addr != "" {
		cfg.Backend.Addr = addr
		if err := cfg.Validate(); err != nil {
			return nil, config.Config{}, err
		}
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, Format: "console"})
	logger.SetOutput(logOut)
	if cfg.Backend.Addr == "" {
		return nil, config.Config{}, fmt.Errorf("no backend configured: set CERTVIEW_BACKEND_ADDR or pass --backend")
	}
	client, err := backend.NewClientFromConfig(cfg.Backend)
	if err != nil {
		return nil, config.Config{}, err
	}
	return client, cfg, nil
}

func runList(ctx context.Context, out, logOut io.Writer, opts listOptions) error {
	client, cfg, err := openBackend(logOut, opts.backend)
	if err != nil {
		return err
	}
	defer client.Shutdown()

	table := view.NewTable()
	index := search.NewIndex(table)
	renderer := view.NewRenderer(table, index)
	fetcher := view.NewFetcher(client, renderer, view.NewNotices())

	ctx, cancel := context.WithTimeout(contextOrBackground(ctx), cfg.Backend.Timeout*time.Duration(cfg.Backend.RetryMax+1))
	defer cancel()
	state := view.DisplayState{ShowAll: opts.showAll}
	if err := fetcher.Fetch(ctx, state); err != nil {
		return fmt.Errorf("list certificates: %w", err)
	}

	rows := table.Rows()
	matches := index.Search(opts.query)
	return writeRows(out, rows, matches)
}

func writeRows(out io.Writer, rows []view.Row, positions []int) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY ID\tCREATED\tEXPIRES\tPRINCIPALS\tMESSAGE\tREVOKED")
	for _, pos := range positions {
		if pos >= len(rows) {
			continue
		}
		cells := rows[pos].Cells
		revoked := "yes"
		if cells[view.ColumnRevoke].Control != nil {
			revoked = "no"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			cells[view.ColumnKeyID].Text,
			cells[view.ColumnCreatedAt].Text,
			cells[view.ColumnExpires].Text,
			cells[view.ColumnPrincipals].Text,
			cells[view.ColumnMessage].Text,
			revoked,
		)
	}
	return w.Flush()
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
