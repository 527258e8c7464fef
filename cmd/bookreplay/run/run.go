package run

import (
	"encoding/json"
	"fmt"

	"github.com/flarebyte/bookreplay/internal/config"
	"github.com/flarebyte/bookreplay/internal/logging"
	"github.com/flarebyte/bookreplay/internal/replay"
	"github.com/spf13/cobra"
)

type flags struct {
	cfgPath     string
	reportPath  string
	sandboxRoot string
	keep        bool
}

// NewCmd returns the `bookreplay run` command.
func NewCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "run",
		Short:         "Replay one chapter and check its final state",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.cfgPath == "" {
				return fmt.Errorf("missing required flag: --config")
			}
			cfg, err := config.Load(f.cfgPath)
			if err != nil {
				return err
			}
			applyOverrides(&cfg, f)
			rep, runErr := replay.RunChapter(cmd.Context(), cfg, replay.RunOptions{
				Logger:      logging.FromContext(cmd.Context()),
				SandboxRoot: f.sandboxRoot,
			})
			// Output must be a single JSON line, on success and on failure.
			line, err := json.Marshal(newSummary(rep))
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(line)); err != nil {
				return err
			}
			return evaluateRunExit(runErr)
		},
	}
	cmd.Flags().StringVarP(&f.cfgPath, "config", "c", "", "Path to chapter config file (.cue)")
	cmd.Flags().StringVar(&f.reportPath, "report", "", "Write the replay report here (overrides output.report)")
	cmd.Flags().StringVar(&f.sandboxRoot, "sandbox-root", "", "Parent directory for the sandbox clone")
	cmd.Flags().BoolVar(&f.keep, "keep", false, "Keep the sandbox clone after the run")
	return cmd
}

func applyOverrides(cfg *config.Chapter, f flags) {
	if f.reportPath != "" {
		cfg.Output.Report = f.reportPath
		cfg.Output.HasReport = true
	}
	if f.keep {
		cfg.Repo.Keep = true
		cfg.Repo.HasKeep = true
	}
}
