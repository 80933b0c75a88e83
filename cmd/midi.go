package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	exportOutput string
	importOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export song.yaml",
	Short: "Export a song as a standard MIDI file",
	Long: `Write a song as a format 1 standard MIDI file at 120 BPM.

Each column becomes a step of note duration length and every pitch in a column
becomes a note on channel 1.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import song.mid",
	Short: "Import a standard MIDI file as a song",
	Long: `Read the note-on events of a standard MIDI file into a song grid.

Notes are quantized to the column they start in. Notes outside the supported
pitch range make the import fail.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: song name with .mid)")
	importCmd.Flags().StringVarP(&importOutput, "output", "o", "", "output file (default: MIDI name with .yaml)")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	env, err := loadEnvironment(logger)
	if err != nil {
		return err
	}
	sess, err := env.newSession(args[0])
	if err != nil {
		return err
	}

	out := outputPath(exportOutput, args[0], ".mid")
	err = createFile(out, func(f *os.File) error {
		return sess.ExportMIDI(f, env.cfg.NoteDuration)
	})
	if err != nil {
		return err
	}
	logger.Info("exported midi", "path", out, "columns", sess.Grid().Len())
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	env, err := loadEnvironment(logger)
	if err != nil {
		return err
	}
	sess, err := env.newSession("")
	if err != nil {
		return err
	}

	f, err := os.Open(args[0]) //nolint:gosec // user-provided input path
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := sess.ImportMIDI(f, env.cfg.NoteDuration); err != nil {
		return err
	}

	out := outputPath(importOutput, args[0], ".yaml")
	if err := sess.Save(out); err != nil {
		return err
	}
	logger.Info("imported midi", "from", args[0], "path", out)
	return nil
}
