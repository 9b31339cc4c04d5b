package utils

import (
	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog/log"
)

const encoding = "cl100k_base"

type Tokenizer struct {
	tokenizer *tiktoken.Tiktoken
}

func NewTokenzier() (Tokenizer, error) {
	tkm, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		log.Error().Err(err).Msg("failed to init tokenizer")
		return Tokenizer{}, err
	}

	return Tokenizer{tokenizer: tkm}, nil
}

func (t Tokenizer) CountTokens(s string) int {
	return len(t.tokenizer.Encode(s, nil, nil))
}

// Truncate keeps at most maxTokens tokens of s.
func (t Tokenizer) Truncate(s string, maxTokens int) string {
	if maxTokens <= 0 {
		return s
	}

	tokens := t.tokenizer.Encode(s, nil, nil)
	if len(tokens) <= maxTokens {
		return s
	}
	return t.tokenizer.Decode(tokens[:maxTokens])
}
