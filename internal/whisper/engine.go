package whisper

import "context"

type TranscriptionRequest struct {
	AudioPath string
	ModelPath string
	Language  string
}

// LineHandler receives each line whisper prints, in order. Returning an
// error stops the transcription.
type LineHandler func(line string) error

type Engine interface {
	Transcribe(ctx context.Context, req TranscriptionRequest, handle LineHandler) error
}
