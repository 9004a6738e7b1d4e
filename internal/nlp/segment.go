// Package nlp provides the sentence segmentation and lemmatization the
// phrase flagger runs on.
package nlp

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Segmenter splits raw document text into sentences, in document order
type Segmenter interface {
	Sentences(text string) ([]string, error)
}

// PunktSegmenter segments English text with the punkt sentence tokenizer
type PunktSegmenter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewPunktSegmenter loads the bundled English punkt model
func NewPunktSegmenter() (*PunktSegmenter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load punkt model: %w", err)
	}
	return &PunktSegmenter{tokenizer: tokenizer}, nil
}

// Sentences returns whitespace-normalized sentences; empty text yields none
func (s *PunktSegmenter) Sentences(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	var out []string
	for _, sent := range s.tokenizer.Tokenize(text) {
		if normalized := normalizeSpace(sent.Text); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out, nil
}

// RuleSegmenter splits on terminal punctuation followed by whitespace.
// Used when the punkt model cannot be loaded.
type RuleSegmenter struct{}

// Sentences splits text into sentences (simple heuristic)
func (RuleSegmenter) Sentences(text string) ([]string, error) {
	return splitSentences(text), nil
}

func splitSentences(text string) []string {
	// PDF extraction breaks lines mid-sentence
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			// Look ahead to avoid splitting inside numbers like 1.5
			if i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\t') {
				if sentence := normalizeSpace(current.String()); sentence != "" {
					sentences = append(sentences, sentence)
				}
				current.Reset()
			}
		}
	}

	if sentence := normalizeSpace(current.String()); sentence != "" {
		sentences = append(sentences, sentence)
	}

	return sentences
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
