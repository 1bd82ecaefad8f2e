package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/presensi/internal/model"
	"github.com/roach88/presensi/internal/transport"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Date string

	// now overrides the current time (tests).
	now func() time.Time
}

// ReportData is the JSON payload of the report command.
type ReportData struct {
	Date    model.Date     `json:"date"`
	Count   int            `json:"count"`
	Records []model.Record `json:"records"`
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the attendance report for a day",
		Long: `Print every record for a day, earliest first.

This is the operator view: it reads the database directly and is not
subject to the admin check that applies to chat users.

Examples:
  presensi report
  presensi report --date 2024-05-01 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Date, "date", "d", "", "day to report, YYYY-MM-DD (default today)")

	return cmd
}

func runReport(opts *ReportOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions, "", cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context(), opts.RootOptions, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	var date model.Date
	if opts.Date != "" {
		date, err = model.ParseDate(opts.Date)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --date", err)
		}
	} else {
		now := time.Now
		if opts.now != nil {
			now = opts.now
		}
		date = model.DateOf(now().In(a.store.Location()))
	}

	records, err := a.store.RecordsForDate(cmd.Context(), date)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read report", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	text := transport.RenderText(model.Outcome{Kind: model.OutcomeReport, Date: date, Records: records})
	return out.Success(ReportData{Date: date, Count: len(records), Records: records}, text)
}
