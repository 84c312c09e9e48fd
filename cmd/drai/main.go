package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"drai-go/internal/dashboard"
	"drai-go/internal/export"
	"drai-go/internal/model"
	"drai-go/internal/pipeline"
	"drai-go/internal/server"
	"drai-go/internal/source"
	"drai-go/internal/store"
)

var version = "0.1.0"

var (
	configPath string
	logLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "drai",
		Short: "DRAI weekly report metrics",
		Long: `drai reads the weekly activity reports of the DRAI department
(.docx, .html or .txt) and turns each one into a structured metrics record
for nine operational areas.

Records can be exported as CSV, HTML or XLSX, compared week against week,
or served to the dashboard over HTTP.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file (default drai.toml if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(diffCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func ingestCmd() *cobra.Command {
	var jsonOut, csvOut, htmlOut, xlsxOut string
	var archive bool

	cmd := &cobra.Command{
		Use:   "ingest <file|dir|url>...",
		Short: "Extract metrics from weekly reports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(configPath, logLevel)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			inputs, err := source.Collect(ctx, args, a.fetcher, a.converter.Extensions())
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				return eris.New("no report files found")
			}

			st := a.newStore()
			res, err := pipeline.Run(ctx, a.pipelineOptions(), inputs, st)
			if err != nil {
				return err
			}
			printResult(cmd, res)
			if res.Accepted == 0 {
				return eris.Errorf("none of %d reports could be processed", len(inputs))
			}

			records := st.All()
			now := time.Now()
			if jsonOut != "" {
				if err := writeRecords(jsonOut, records); err != nil {
					return err
				}
			}
			for format, out := range map[string]string{"csv": csvOut, "html": htmlOut, "xlsx": xlsxOut} {
				if out == "" {
					continue
				}
				if err := writeExport(out, format, records, now); err != nil {
					return err
				}
			}

			if archive {
				arch, err := a.openArchive(ctx)
				if err != nil {
					return err
				}
				defer arch.Close(context.Background())
				n, err := arch.Publish(ctx, records)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "archived %d records\n", n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&jsonOut, "json", "", "write the records as JSON to this file")
	cmd.Flags().StringVar(&csvOut, "csv", "", "write a CSV summary to this file")
	cmd.Flags().StringVar(&htmlOut, "html", "", "write an HTML report to this file")
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "write an XLSX workbook to this file")
	cmd.Flags().BoolVar(&archive, "archive", false, "publish the records to the MongoDB archive")
	return cmd
}

func exportCmd() *cobra.Command {
	var from, format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved records as csv, html or xlsx",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(configPath, logLevel)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			records, err := readRecords(from, store.PolicyByName(a.cfg.Batch.Dedup))
			if err != nil {
				return err
			}
			now := time.Now()
			if out == "" {
				out = export.Filename(format, now)
			}
			if err := writeExport(out, format, records, now); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "records JSON written by ingest --json")
	cmd.Flags().StringVar(&format, "format", "csv", "one of "+strings.Join(export.Formats, ", "))
	cmd.Flags().StringVar(&out, "out", "", "output file (default Reporte_DRAI_<date>.<format>)")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func diffCmd() *cobra.Command {
	var from string
	var weekA, weekB int

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show what changed between two weeks",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(from, store.FirstWins)
			if err != nil {
				return err
			}
			ra, ok := findWeek(records, weekA)
			if !ok {
				return eris.Errorf("week %d not in %s", weekA, from)
			}
			rb, ok := findWeek(records, weekB)
			if !ok {
				return eris.Errorf("week %d not in %s", weekB, from)
			}
			out, err := dashboard.Diff(ra, rb)
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no differences")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "records JSON written by ingest --json")
	cmd.Flags().IntVar(&weekA, "a", 0, "first week")
	cmd.Flags().IntVar(&weekB, "b", 0, "second week")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("a")
	_ = cmd.MarkFlagRequired("b")
	return cmd
}

func serveCmd() *cobra.Command {
	var listen, inbox string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(configPath, logLevel)
			if err != nil {
				return err
			}
			defer a.log.Sync()
			if listen == "" {
				listen = a.cfg.Server.Listen
			}
			if inbox == "" {
				inbox = a.cfg.Server.Inbox
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			arch, err := a.openArchive(ctx)
			if err != nil {
				return err
			}
			defer arch.Close(context.Background())

			srv := server.New(a.newStore(), server.Config{
				Pipeline:   a.pipelineOptions(),
				Archive:    arch,
				Extensions: a.converter.Extensions(),
				MaxBytes:   a.cfg.Batch.MaxBytes,
				Log:        a.log,
			})
			if inbox != "" {
				if err := srv.WatchInbox(ctx, inbox); err != nil {
					return err
				}
			}
			a.log.Info("starting server", zap.String("listen", listen), zap.String("inbox", inbox))
			return srv.Run(ctx, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&inbox, "inbox", "", "directory whose new reports are ingested automatically")
	return cmd
}

func printResult(cmd *cobra.Command, res pipeline.Result) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "batch %s: %d accepted, %d failed\n", res.BatchID, res.Accepted, len(res.Failures))
	for _, r := range res.Records {
		fmt.Fprintf(w, "  semana %d  %s\n", r.Week, r.ReportDate)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "  failed %s: %s\n", f.Name, f.Err)
	}
}

func writeExport(path, format string, records []model.MetricsRecord, now time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := export.Write(f, format, records, now); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "close %s", path)
	}
	return nil
}

func findWeek(records []model.MetricsRecord, week int) (model.MetricsRecord, bool) {
	for _, r := range records {
		if r.Week == week {
			return r, true
		}
	}
	return model.MetricsRecord{}, false
}
