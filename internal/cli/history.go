package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"addition-drill/internal/config"
	"addition-drill/internal/domain"
	"addition-drill/internal/export"
	"github.com/spf13/cobra"
)

// NewHistoryCmd prints stored sessions, newest first.
func NewHistoryCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recent drill sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(cmd, *configPath)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), records)
		},
	}
}

// NewExportCmd writes the history as CSV.
func NewExportCmd(configPath *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export session history as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(cmd, *configPath)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				return export.WriteCSV(cmd.OutOrStdout(), records)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.WriteCSV(f, records); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func loadRecords(cmd *cobra.Command, configPath string) ([]domain.SessionRecord, error) {
	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return nil, err
	}
	ctx, cancel := requestContext(cmd.Context())
	defer cancel()

	history, closeHistory, err := openHistory(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer closeHistory()
	return history.Load(ctx), nil
}

func printHistory(w io.Writer, records []domain.SessionRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "no sessions yet")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tSOLVED\tTOTAL\tDURATION\tREASON")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n",
			rec.Date.Local().Format("2006-01-02 15:04"),
			rec.Solved, rec.Total,
			time.Duration(rec.DurationSec)*time.Second,
			rec.Reason)
	}
	return tw.Flush()
}
