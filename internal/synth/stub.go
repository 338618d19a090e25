package synth

import (
	"context"
	"fmt"
)

// Stub is a deterministic in-process synthesizer for tests and local runs
// without a converter service. Output size is proportional to the text.
type Stub struct {
	// Err, when set, is returned from every call.
	Err error
}

func (s *Stub) Synthesize(_ context.Context, text, voice string) (Result, error) {
	if s.Err != nil {
		return Result{}, s.Err
	}
	if text == "" {
		return Result{}, fmt.Errorf("synth: text is required")
	}
	if voice == "" {
		return Result{}, fmt.Errorf("synth: voice is required")
	}

	audio := make([]byte, len(text)*32)
	for i := range audio {
		audio[i] = byte(i % 251)
	}
	return Result{Audio: audio, ContentType: "audio/mpeg"}, nil
}
