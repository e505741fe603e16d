package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin/binding"
	"github.com/spf13/cobra"

	"github.com/puskesmas-merdeka/simpus-api/internal/app"
	"github.com/puskesmas-merdeka/simpus-api/internal/middleware"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/report"
	"github.com/puskesmas-merdeka/simpus-api/pkg/metrics"
)

func exportCmd(load loader) *cobra.Command {
	var (
		filter model.ReportFilter
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the visit report for a date range to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			if err := middleware.RegisterValidators(middleware.DefaultValidationConfig()); err != nil {
				return err
			}
			if err := binding.Validator.ValidateStruct(&filter); err != nil {
				return fmt.Errorf("invalid date range: %w", err)
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			m := metrics.NewMetrics(app.Namespace, nil)
			backend, err := app.OpenBackend(ctx, cfg, m, log)
			if err != nil {
				return err
			}
			defer backend.Close()

			svc := app.NewServices(cfg, backend, m)
			export, err := svc.Reports.Export(ctx, &filter, f)
			if err != nil {
				return err
			}

			if out == "" {
				out = export.Filename
			}
			if err := os.WriteFile(out, export.Body, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			log.Info().
				Str("file", out).
				Int("bytes", len(export.Body)).
				Msg("report exported")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&filter.StartDate, "start", "", "First visit date, YYYY-MM-DD")
	flags.StringVar(&filter.EndDate, "end", "", "Last visit date, YYYY-MM-DD")
	flags.StringVar(&filter.Poli, "poli", "", "Limit to one poli")
	flags.StringVar(&format, "format", string(report.FormatPDF), "pdf, xlsx or csv")
	flags.StringVarP(&out, "out", "o", "", "Output file (defaults to the report file name)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}
