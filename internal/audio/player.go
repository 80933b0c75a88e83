// Package audio plays and exports rendered 8-bit PCM songs.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
)

const (
	channelCount = 1 // mono
	pollInterval = 10 * time.Millisecond
)

// Player plays unsigned 8-bit mono buffers on the default output device.
// Only one Player may exist per process.
type Player struct {
	otoCtx     *oto.Context
	sampleRate int
}

// NewPlayer opens the audio device at sampleRate
func NewPlayer(sampleRate int) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatUnsignedInt8,
	}

	otoCtx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	<-readyChan

	return &Player{otoCtx: otoCtx, sampleRate: sampleRate}, nil
}

func (p *Player) SampleRate() int { return p.sampleRate }

// Play writes samples to the device and blocks until they have been played.
// Cancelling ctx stops playback early and returns ctx.Err().
func (p *Player) Play(ctx context.Context, samples []byte) error {
	if len(samples) == 0 {
		return nil
	}

	player := p.otoCtx.NewPlayer(bytes.NewReader(samples))
	player.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}

	// Note: As of oto v3.4, player.Close() is deprecated and no longer needed.
	// The player will be cleaned up when garbage collected.
	if err := player.Err(); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}

// Close suspends the device.
func (p *Player) Close() error {
	if err := p.otoCtx.Suspend(); err != nil {
		return fmt.Errorf("failed to suspend audio device: %w", err)
	}
	return nil
}
