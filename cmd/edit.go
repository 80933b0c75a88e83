package cmd

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/icco/seqgrid/internal/audio"
	"github.com/icco/seqgrid/internal/song"
	"github.com/icco/seqgrid/internal/tui"
)

var editCmd = &cobra.Command{
	Use:   "edit [song.yaml]",
	Short: "Start the grid editor",
	Long: `Start the grid editor with an interactive TUI interface.

Without an argument a file browser lists the songs in the current directory.
With a song path the editor opens it directly, creating it on save if it does
not exist yet. Logs go to --log-file because the terminal belongs to the UI.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	logger := log.New(io.Discard)
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	if logFile != "" {
		f, err := tea.LogToFileWith(logFile, "seqgrid", logger)
		if err != nil {
			return fmt.Errorf("error opening log file: %w", err)
		}
		defer func() { _ = f.Close() }()
	}

	env, err := loadEnvironment(logger)
	if err != nil {
		return err
	}

	opts := tui.Options{
		Config: env.cfg,
		Table:  env.table,
		Synth:  env.synth,
		Logger: logger,
		OpenSink: func() (song.Sink, error) {
			player, err := audio.NewPlayer(env.cfg.SampleRate)
			if err != nil {
				return nil, err
			}
			return player, nil
		},
	}
	if len(args) == 1 {
		opts.SongPath = args[0]
	}

	p := tea.NewProgram(tui.InitialModel(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
