// Package speech defines the voice capability used during debates.
// Recognition and synthesis are provided by the hosting platform; the
// server only needs a seam to inject them through, plus an explicit
// unavailable implementation for deployments without a voice backend.
package speech

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by every method of Unavailable.
var ErrUnavailable = errors.New("speech capability unavailable")

// Capability transcribes spoken arguments and voices opponent replies.
type Capability interface {
	// Recognize transcribes one utterance from the given audio payload.
	Recognize(ctx context.Context, audio []byte) (string, error)
	// Speak synthesizes the text at the given speaking rate (1.0 = normal)
	// and returns the audio payload.
	Speak(ctx context.Context, text string, rate float64) ([]byte, error)
}

// Unavailable is the explicit no-voice implementation. Callers check
// errors.Is(err, ErrUnavailable) and fall back to text input.
type Unavailable struct{}

func (Unavailable) Recognize(context.Context, []byte) (string, error) {
	return "", ErrUnavailable
}

func (Unavailable) Speak(context.Context, string, float64) ([]byte, error) {
	return nil, ErrUnavailable
}
