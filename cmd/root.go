package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/icco/seqgrid/internal/config"
	"github.com/icco/seqgrid/internal/pitch"
	"github.com/icco/seqgrid/internal/song"
	"github.com/icco/seqgrid/internal/synth"
)

var (
	cfgFile string
	logFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "seqgrid",
	Short: "A terminal step sequencer",
	Long: `seqgrid is a Terminal User Interface (TUI) step sequencer built with Bubbletea.

Songs are grids of pitches: each column is a fixed-length step and every pitch
toggled on in a column sounds together. Songs are stored as YAML and can be
played, rendered to WAV, or exchanged as MIDI files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// environment holds the startup singletons shared by every command.
type environment struct {
	cfg    *config.Config
	table  *pitch.Table
	synth  *synth.Synthesizer
	logger *log.Logger
}

func loadEnvironment(logger *log.Logger) (*environment, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	table, err := cfg.PitchTable()
	if err != nil {
		return nil, err
	}
	s, err := cfg.Synthesizer(table)
	if err != nil {
		return nil, fmt.Errorf("error building synthesizer: %w", err)
	}
	logger.Debug("loaded config", "path", cfgFile, "sample_rate", cfg.SampleRate, "frames_per_column", s.FrameCount())
	return &environment{cfg: cfg, table: table, synth: s, logger: logger}, nil
}

// newSession returns a session, loading path into it when path is set.
func (e *environment) newSession(path string) (*song.Session, error) {
	sess := song.NewSession(e.table, e.synth, e.logger)
	if path == "" {
		return sess, nil
	}
	if err := sess.Load(path); err != nil {
		return nil, err
	}
	return sess, nil
}

// newLogger returns a logger for the non-interactive commands. It writes to
// stderr unless --log-file is set.
func newLogger() (*log.Logger, func(), error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "seqgrid",
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	if logFile == "" {
		return logger, func() {}, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // user-provided log path
	if err != nil {
		return nil, nil, fmt.Errorf("error opening log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, func() { _ = f.Close() }, nil
}

// outputPath returns out, or input with its extension replaced by ext.
func outputPath(out, input, ext string) string {
	if out != "" {
		return out
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}

func createFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path) //nolint:gosec // user-provided output path
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
