package speech

import "context"

// Segment is one timestamped slice of a transcript.
type Segment struct {
	Start float64 // seconds from start
	End   float64
	Text  string
}

// Transcriber converts an audio track into timestamped transcript segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) ([]Segment, error)
}
