package vision

import "context"

// PlaceholderDescription is substituted whenever no describer is configured
// or a description cannot be produced; vision output is an enrichment, never
// a hard requirement.
const PlaceholderDescription = "Diagram description not available."

// Describer produces a natural-language description of an image.
type Describer interface {
	Describe(ctx context.Context, image []byte, prompt string) (string, error)
}
