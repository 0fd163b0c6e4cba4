// Package voice defines the speech-to-text and text-to-speech seam.
package voice

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrEmptyAudio is returned when Transcribe receives no audio.
var ErrEmptyAudio = errors.New("voice: empty audio payload")

// Transcription is the output of speech-to-text.
type Transcription struct {
	Text             string  `json:"transcribedText"`
	Confidence       float64 `json:"confidenceScore"`
	LanguageDetected string  `json:"languageDetected"`
}

// Speech is synthesized audio.
type Speech struct {
	Audio            []byte        `json:"audio"`
	Format           string        `json:"format"`
	DurationEstimate time.Duration `json:"durationEstimate"`
}

// Service converts between audio and text.
type Service interface {
	Transcribe(ctx context.Context, audio []byte, languageHint string) (*Transcription, error)
	Synthesize(ctx context.Context, text, language, gender string) (*Speech, error)
}

const (
	defaultStubTranscript = "I would like to schedule an appointment"
	perWordDuration       = 400 * time.Millisecond
)

// StubService waits a fixed delay and returns placeholder output.
type StubService struct {
	Delay time.Duration
	// Transcript is returned by Transcribe; empty uses a default sentence.
	Transcript string
}

// NewStubService returns a stub that waits delay on every call.
func NewStubService(delay time.Duration) *StubService {
	return &StubService{Delay: delay}
}

func (s *StubService) wait(ctx context.Context) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Transcribe returns the configured transcript.
func (s *StubService) Transcribe(ctx context.Context, audio []byte, languageHint string) (*Transcription, error) {
	if len(audio) == 0 {
		return nil, ErrEmptyAudio
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	text := s.Transcript
	if text == "" {
		text = defaultStubTranscript
	}
	lang := languageHint
	if lang == "" {
		lang = "en"
	}
	return &Transcription{Text: text, Confidence: 0.95, LanguageDetected: lang}, nil
}

// Synthesize returns placeholder audio sized to the text.
func (s *StubService) Synthesize(ctx context.Context, text, language, gender string) (*Speech, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	words := len(strings.Fields(text))
	return &Speech{
		Audio:            []byte("stub-audio:" + language + ":" + gender + ":" + text),
		Format:           "mp3",
		DurationEstimate: time.Duration(words) * perWordDuration,
	}, nil
}
