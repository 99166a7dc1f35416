package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fitlog/internal/app"
	"fitlog/internal/view"
)

func newExportCmd(c *cli) *cobra.Command {
	var (
		summaryOnly bool
		session     string
		logID       string
		format      string
		output      string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup of all data, the workout summary, one session or one exercise",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withBackend(func(b *backend) error {
				svc := b.services()
				ctrl := view.NewSummaryController(svc.Summary, svc.Transfer, c.cfg.UserID)

				scope := view.ExportScope{Title: "Exportar todo", All: !summaryOnly}
				if summaryOnly {
					scope.Title = "Exportar resumen"
				}
				if session != "" {
					sess, err := svc.Summary.Session(ctx, c.cfg.UserID, session, c.today())
					if err != nil {
						return err
					}
					if sess == nil {
						return fmt.Errorf("no session on %s: %w", session, app.ErrNotFound)
					}
					scope = view.ExportScope{Title: "Exportar sesión", Session: sess}
				}
				if logID != "" {
					l, err := svc.Summary.Log(ctx, c.cfg.UserID, logID)
					if err != nil {
						return err
					}
					if l == nil {
						return fmt.Errorf("no exercise log %s: %w", logID, app.ErrNotFound)
					}
					scope = view.ExportScope{Title: "Exportar ejercicio", Log: l}
				}
				ctrl.RequestExport(scope)

				dl, err := ctrl.ChooseFormat(ctx, view.Format(format), c.today())
				if err != nil {
					return err
				}
				if output == "-" {
					_, err = cmd.OutOrStdout().Write(dl.Body)
					return err
				}
				if output == "" {
					output = dl.Filename
				}
				if err := os.WriteFile(output, dl.Body, 0o600); err != nil {
					return err
				}
				c.log.Info("export written", zap.String("file", output), zap.Int("bytes", len(dl.Body)))
				fmt.Fprintln(cmd.OutOrStdout(), output)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&summaryOnly, "summary", false, "export only the workout logs")
	cmd.Flags().StringVar(&session, "session", "", "export the session on this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&logID, "log", "", "export one workout log by id")
	cmd.MarkFlagsMutuallyExclusive("session", "log")
	cmd.Flags().StringVar(&format, "format", string(view.FormatJSON), "json or text")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: generated name)")
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace data with the collections found in a backup (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			return c.withBackend(func(b *backend) error {
				svc := b.services()
				ctrl := view.NewSummaryController(svc.Summary, svc.Transfer, c.cfg.UserID)
				res, err := ctrl.Import(cmd.Context(), data)
				fmt.Fprintln(cmd.OutOrStdout(), ctrl.Alert())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "peso: %d, consejos: %d, diario: %d, resumen: %d\n",
					res.WeightEntries, res.Notes, res.DailyLogs, res.SummaryLogs)
				return nil
			})
		},
	}
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("backup file %s does not exist", name)
	}
	return data, err
}
