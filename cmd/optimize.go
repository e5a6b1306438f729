package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"squash/internal/config"
	"squash/internal/logging"
	"squash/internal/processor"
	"squash/internal/transform"
	"squash/internal/tui"
	"squash/pkg/assetkind"
)

var optimizeFlags runFlags

var optimizeCmd = &cobra.Command{
	Use:   "optimize [flags] <path>...",
	Short: "Optimize dmi, png and ogg files in place",
	Long: "Optimize every matching file under the given files and folders. Folders are searched recursively.\n" +
		"A file that fails to optimize is reported and left exactly as it was.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := optimizeFlags.load(cmd)
		if err != nil {
			return err
		}
		stderr := logging.NewHeldWriter(os.Stderr)
		log, err := newLogger(cfg, stderr)
		if err != nil {
			return err
		}
		log = log.With("run_id", uuid.NewString())

		profile := transform.ProfileThorough
		if cfg.Fast {
			profile = transform.ProfileFast
		}

		plan := processor.Discover(args, cfg.Enabled())
		log.Info("discovered files",
			"dmi", len(plan[assetkind.CategoryRaster]),
			"ogg", len(plan[assetkind.CategoryAudio]),
			"threads", cfg.Threads,
			"profile", profile.String(),
		)
		if plan.Total() == 0 {
			log.Warn("no matching files found", "paths", args)
		}

		stats := processor.NewStats()
		opts := processor.Options{
			Threads:      cfg.Threads,
			Transformers: transform.ForCategories(cfg.Enabled(), profile),
			Logger:       log,
		}

		var summary processor.Summary
		if cfg.Progress && plan.Total() > 0 && logging.IsTerminal(os.Stdout) {
			done := make(chan struct{})
			program := tea.NewProgram(tui.NewModel(stats, plan, done), tea.WithInput(nil))

			// Per-file failures are shown once the view has been torn down.
			stderr.Hold()
			uiDone := make(chan struct{})
			go func() {
				_, _ = program.Run()
				close(uiDone)
			}()

			summary, err = processor.Run(cmd.Context(), plan, opts, stats)
			close(done)
			<-uiDone
			_ = stderr.Release()
		} else {
			summary, err = processor.Run(cmd.Context(), plan, opts, stats)
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), tui.RenderSummary(summary))
		for _, cs := range summary.Categories {
			log.Info("finished",
				"category", cs.Category.String(),
				"optimized", cs.Success,
				"failed", cs.Failed,
				"saved_bytes", cs.Delta,
			)
		}
		log.Info("run complete", "elapsed", summary.Elapsed)
		return nil
	},
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	log, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: w,
		Color:  logging.ColorEnabled(os.Stderr),
	})
	if err != nil {
		return nil, processor.ConfigError("create logger", err)
	}
	return log, nil
}

func init() {
	optimizeFlags.register(optimizeCmd)
	rootCmd.AddCommand(optimizeCmd)
}
