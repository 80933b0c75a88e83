package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/icco/seqgrid/internal/audio"
)

var (
	renderOutput string
	renderRaw    bool
)

var renderCmd = &cobra.Command{
	Use:   "render song.yaml",
	Short: "Render a song to a WAV file",
	Long: `Compile a song and write it as 8-bit mono PCM.

The output is a WAV file next to the song unless -o is given. With --raw the
bare sample bytes are written instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file (default: song name with .wav or .raw)")
	renderCmd.Flags().BoolVar(&renderRaw, "raw", false, "write raw unsigned 8-bit samples without a header")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
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
	samples, err := sess.Compile()
	if err != nil {
		return err
	}

	ext := ".wav"
	if renderRaw {
		ext = ".raw"
	}
	out := outputPath(renderOutput, args[0], ext)
	err = createFile(out, func(f *os.File) error {
		if renderRaw {
			return audio.WriteRaw(f, samples)
		}
		return audio.WriteWAV(f, env.cfg.SampleRate, samples)
	})
	if err != nil {
		return err
	}

	logger.Info("rendered song", "path", out, "bytes", len(samples),
		"seconds", float64(len(samples))/float64(env.cfg.SampleRate))
	return nil
}
