package nlp

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// Lemmatizer turns text into its sequence of lowercase lemmas
type Lemmatizer interface {
	Lemmas(text string) ([]string, error)
}

// DictLemmatizer maps each token through the golem English dictionary.
// Words missing from the dictionary keep their lowercase form.
type DictLemmatizer struct {
	lem *golem.Lemmatizer
}

// NewDictLemmatizer loads the English lemma dictionary
func NewDictLemmatizer() (*DictLemmatizer, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load lemma dictionary: %w", err)
	}
	return &DictLemmatizer{lem: lem}, nil
}

// Lemmas tokenizes text and lemmatizes every token
func (d *DictLemmatizer) Lemmas(text string) ([]string, error) {
	tokens := Tokenize(text)
	for i, tok := range tokens {
		tokens[i] = d.Lemma(tok)
	}
	return tokens, nil
}

// Lemma returns the dictionary base form of a single word
func (d *DictLemmatizer) Lemma(word string) string {
	word = strings.ToLower(word)
	if !d.lem.InDict(word) {
		return word
	}
	return strings.ToLower(d.lem.Lemma(word))
}

// Tokenize splits text into lowercase word tokens. Letters and digits form
// tokens; hyphens are kept inside a word ("non-refundable") and trimmed at
// its edges. Everything else separates tokens.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if word := cleanToken(current.String()); word != "" {
			tokens = append(tokens, word)
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' {
			current.WriteRune(unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()

	return tokens
}

// cleanToken strips leading/trailing hyphens and collapses repeated ones
func cleanToken(token string) string {
	token = strings.Trim(token, "-")
	for strings.Contains(token, "--") {
		token = strings.ReplaceAll(token, "--", "-")
	}
	return token
}

var (
	defaultOnce       sync.Once
	defaultSegmenter  Segmenter
	defaultLemmatizer Lemmatizer
	defaultErr        error
)

// Default returns the process-wide segmenter and lemmatizer, loading their
// models on first use. A punkt load failure falls back to RuleSegmenter; a
// dictionary load failure is returned.
func Default() (Segmenter, Lemmatizer, error) {
	defaultOnce.Do(func() {
		if seg, err := NewPunktSegmenter(); err == nil {
			defaultSegmenter = seg
		} else {
			defaultSegmenter = RuleSegmenter{}
		}

		lem, err := NewDictLemmatizer()
		if err != nil {
			defaultErr = err
			return
		}
		defaultLemmatizer = lem
	})
	return defaultSegmenter, defaultLemmatizer, defaultErr
}
