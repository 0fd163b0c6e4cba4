package voice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubService_Transcribe(t *testing.T) {
	s := NewStubService(0)

	out, err := s.Transcribe(context.Background(), []byte{1, 2, 3}, "")
	require.NoError(t, err)
	assert.Equal(t, defaultStubTranscript, out.Text)
	assert.Equal(t, "en", out.LanguageDetected)

	s.Transcript = "my chest hurts"
	out, err = s.Transcribe(context.Background(), []byte{1}, "es")
	require.NoError(t, err)
	assert.Equal(t, "my chest hurts", out.Text)
	assert.Equal(t, "es", out.LanguageDetected)

	_, err = s.Transcribe(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrEmptyAudio)
}

func TestStubService_Synthesize(t *testing.T) {
	out, err := NewStubService(0).Synthesize(context.Background(), "call your doctor today", "en", "female")
	require.NoError(t, err)
	assert.Equal(t, "mp3", out.Format)
	assert.Equal(t, 4*perWordDuration, out.DurationEstimate)
	assert.NotEmpty(t, out.Audio)
}

func TestStubService_HonorsContext(t *testing.T) {
	s := NewStubService(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Transcribe(ctx, []byte{1}, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
