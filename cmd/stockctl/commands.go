package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"stockroom/internal/analytics"
	"stockroom/internal/archive"
	"stockroom/internal/config"
	"stockroom/internal/importer"
	"stockroom/internal/logger"
	"stockroom/internal/store"
	"stockroom/internal/workbook"
)

// env is built once per invocation by the root command.
type env struct {
	cfg   config.Config
	lg    *zap.SugaredLogger
	st    *store.Store
	close func() error
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	lg := logger.New()
	db, err := store.Open(cfg.Database, lg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	st := store.New(db, lg, store.Options{
		AdminRecipient:         cfg.AdminRecipient,
		ManagerRecipient:       cfg.ManagerRecipient,
		StrictOrderTransitions: cfg.StrictOrderTransitions,
	})
	return &env{cfg: cfg, lg: lg, st: st, close: sqlDB.Close}, nil
}

// newRootCmd builds the command tree. The returned func releases whatever
// the executed command opened.
func newRootCmd() (*cobra.Command, func()) {
	var (
		e       *env
		timeout time.Duration
		cancel  context.CancelFunc = func() {}
	)
	root := &cobra.Command{
		Use:           "stockctl",
		Short:         "Stockroom maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if e, err = openEnv(); err != nil {
				return err
			}
			var ctx context.Context
			ctx, cancel = context.WithTimeout(cmd.Context(), timeout)
			cmd.SetContext(ctx)
			return nil
		},
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	envOf := func() *env { return e }
	root.AddCommand(
		importCmd(envOf),
		exportCmd(envOf),
		restoreCmd(envOf),
		predictionsCmd(envOf),
		seedCmd(envOf),
	)
	cleanup := func() {
		cancel()
		if e != nil {
			_ = e.lg.Sync()
			_ = e.close()
		}
	}
	return root, cleanup
}

func importCmd(envOf func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Import new materials from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envOf()
			kw, err := importer.LoadKeywords(e.cfg.ImportKeywordsFile)
			if err != nil {
				return err
			}
			f, err := excelize.OpenFile(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()
			res, err := importer.New(kw, e.st, e.lg).Import(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d\n", res.Imported, res.Skipped)
			for _, name := range res.Sample {
				fmt.Fprintf(cmd.OutOrStdout(), "  skipped: %s\n", name)
			}
			return nil
		},
	}
}

func exportCmd(envOf func() *env) *cobra.Command {
	var toArchive bool
	cmd := &cobra.Command{
		Use:   "export <out.xlsx>",
		Short: "Write every table to a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envOf()
			f, err := workbook.Export(cmd.Context(), e.st)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := f.SaveAs(args[0]); err != nil {
				return fmt.Errorf("save %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			if !toArchive {
				return nil
			}
			if !e.cfg.Archive.Enabled() {
				return errors.New("archive requested but ARCHIVE_ENDPOINT/ARCHIVE_BUCKET are not set")
			}
			ar, err := archive.New(e.cfg.Archive, e.lg)
			if err != nil {
				return err
			}
			buf, err := f.WriteToBuffer()
			if err != nil {
				return err
			}
			name := archive.SnapshotName(time.Now())
			if err := ar.Put(cmd.Context(), name, bytes.NewReader(buf.Bytes()), int64(buf.Len())); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "archived %s\n", name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&toArchive, "archive", false, "Also upload the workbook to object storage")
	return cmd
}

func restoreCmd(envOf func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file.xlsx>",
		Short: "Insert rows from an exported workbook whose keys are missing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := excelize.OpenFile(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()
			counts, err := workbook.Restore(cmd.Context(), f, envOf().st)
			if err != nil {
				return err
			}
			tables := make([]string, 0, len(counts))
			for t := range counts {
				tables = append(tables, t)
			}
			sort.Strings(tables)
			for _, t := range tables {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %d\n", t, counts[t])
			}
			return nil
		},
	}
}

func predictionsCmd(envOf func() *env) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "predictions",
		Short: "Print stock depletion predictions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := envOf()
			preds, err := analytics.New(e.st, e.lg).Predictions(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, preds)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "yaml", "Output format: yaml or json")
	return cmd
}

func render(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// round-trip through JSON so field names follow the json tags
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := yaml.Unmarshal(b, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(generic)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func seedCmd(envOf func() *env) *cobra.Command {
	var demo bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default users, and demo data with --demo, on an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seeded, err := envOf().st.Seed(cmd.Context(), demo)
			if err != nil {
				return err
			}
			if seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "seeded")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "users already present, nothing to do")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "Also create sample materials, suppliers, budgets and locations")
	return cmd
}
