package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/presensi/internal/config"
)

// ValidateData is the JSON payload of a successful validate.
type ValidateData struct {
	Valid  bool           `json:"valid"`
	Config *config.Config `json:"config"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate configuration",
		Long: `Load configuration the same way run and serve do (defaults, file, .env,
PRESENSI_* environment) and check it against the schema.

Examples:
  presensi validate
  presensi validate ./presensi.yaml --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	cfg, err := loadConfig(opts, path, cmd.ErrOrStderr())
	if err != nil {
		_ = out.Error(CodeConfig, err.Error(), nil)
		return WrapExitError(ExitFailure, "configuration invalid", err)
	}

	redacted := *cfg
	if redacted.Pending.Redis.Password != "" {
		redacted.Pending.Redis.Password = "********"
	}

	return out.Success(ValidateData{Valid: true, Config: &redacted}, summarizeConfig(cfg))
}

func summarizeConfig(cfg *config.Config) string {
	var b strings.Builder
	b.WriteString("✓ Configuration valid\n")
	fmt.Fprintf(&b, "  database:  %s\n", cfg.Database.Path)
	fmt.Fprintf(&b, "  timezone:  %s\n", cfg.Attendance.Timezone)
	admin := cfg.Admin.UserID
	if admin == "" {
		admin = "(none, reports disabled)"
	}
	fmt.Fprintf(&b, "  admin:     %s\n", admin)
	fmt.Fprintf(&b, "  commands:  /%s /%s /%s\n",
		cfg.Attendance.Commands.Attend, cfg.Attendance.Commands.Report, cfg.Attendance.Commands.Start)
	fmt.Fprintf(&b, "  pending:   %s", cfg.Pending.Backend)
	if cfg.Attendance.PendingTTL > 0 {
		fmt.Fprintf(&b, " (ttl %s)", cfg.Attendance.PendingTTL)
	}
	return b.String()
}
