package utils

import "strings"

// Normalize strips NUL bytes and collapses all runs of whitespace into single
// spaces. Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	cleaned := strings.ReplaceAll(text, "\x00", "")
	return strings.Join(strings.Fields(cleaned), " ")
}

// SplitText splits normalized text into chunks of at most 'chunkSize' runes
// with 'overlap' runes carried across boundaries. Fragments shorter than
// 'minLength' after normalization are discarded. Trailing content is never
// dropped silently.
// This is a simple character-based splitter. Ideally, use a tokenizer-aware splitter.
func SplitText(text string, chunkSize, overlap, minLength int) []string {
	text = Normalize(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	totalLen := len(runes)

	if totalLen <= chunkSize {
		if len(text) < minLength {
			return nil
		}
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	var chunks []string
	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunk := string(runes[i:end])
		if len(Normalize(chunk)) >= minLength {
			chunks = append(chunks, chunk)
		}

		if end == totalLen {
			break
		}
	}

	return chunks
}
