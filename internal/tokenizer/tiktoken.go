// Package tokenizer bounds inference input length by token count rather than
// bytes, so truncation matches what the provider will actually see.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tiktoken truncates text to a token budget using a BPE encoding.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// New creates a tokenizer for the named encoding (e.g. "cl100k_base").
func New(encoding string) (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", encoding, err)
	}
	return &Tiktoken{enc: enc}, nil
}

// Truncate returns text cut to at most maxTokens tokens. Text within the
// budget is returned unchanged.
func (t *Tiktoken) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	ids := t.enc.Encode(text, nil, nil)
	if len(ids) <= maxTokens {
		return text
	}
	return t.enc.Decode(ids[:maxTokens])
}
