package audio

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth  = 8
	formatPCM = 1
)

// WriteWAV encodes unsigned 8-bit mono samples as a PCM WAV file.
func WriteWAV(w io.WriteSeeker, sampleRate int, samples []byte) error {
	intBuffer := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channelCount,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: bitDepth,
	}
	for i, s := range samples {
		intBuffer.Data[i] = int(s)
	}

	e := wav.NewEncoder(w, sampleRate, bitDepth, channelCount, formatPCM)
	if err := e.Write(intBuffer); err != nil {
		return fmt.Errorf("failed to encode wav: %w", err)
	}
	if err := e.Close(); err != nil {
		return fmt.Errorf("failed to finish wav: %w", err)
	}
	return nil
}

// WriteRaw writes samples with no header.
func WriteRaw(w io.Writer, samples []byte) error {
	if _, err := w.Write(samples); err != nil {
		return fmt.Errorf("failed to write raw samples: %w", err)
	}
	return nil
}
