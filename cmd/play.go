package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/icco/seqgrid/internal/audio"
)

var playNote string

var playCmd = &cobra.Command{
	Use:   "play [song.yaml]",
	Short: "Play a song through the system audio output",
	Long: `Compile a song and play it through the system audio output without the editor.

Playback stops early on Ctrl+C. With --note a single pitch is auditioned for
one column instead.

Example:
  seqgrid play tune.yaml
  seqgrid play --note C#4
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&playNote, "note", "n", "", "play a single pitch such as C4 or F#3")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	if playNote == "" && len(args) == 0 {
		return errors.New("a song file or --note is required")
	}

	logger, closeLog, err := newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	env, err := loadEnvironment(logger)
	if err != nil {
		return err
	}
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	sess, err := env.newSession(path)
	if err != nil {
		return err
	}

	player, err := audio.NewPlayer(env.cfg.SampleRate)
	if err != nil {
		return err
	}
	defer func() { _ = player.Close() }()

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)
	go func() {
		select {
		case <-c:
			cancel()
		case <-ctx.Done():
		}
	}()

	if playNote != "" {
		p, err := env.table.Parse(playNote)
		if err != nil {
			return err
		}
		logger.Info("playing note", "pitch", p)
		err = sess.PlayNote(ctx, player, p)
		return ignoreCanceled(err, logger.Info)
	}

	last, ok := sess.MaxColumn()
	if !ok {
		logger.Info("song is empty", "path", path)
		return nil
	}
	logger.Info("playing song", "path", path, "columns", last+1,
		"seconds", fmt.Sprintf("%.2f", float64(last+1)*env.cfg.NoteDuration))
	return ignoreCanceled(sess.Play(ctx, player), logger.Info)
}

// ignoreCanceled treats an interrupted playback as success.
func ignoreCanceled(err error, report func(msg any, keyvals ...any)) error {
	if errors.Is(err, context.Canceled) {
		report("playback interrupted")
		return nil
	}
	return err
}
