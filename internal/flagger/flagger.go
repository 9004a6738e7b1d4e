// Package flagger finds category trigger phrases in contract sentences.
package flagger

import (
	"errors"
	"fmt"
	"iter"

	"github.com/ppiankov/rainier/internal/model"
	"github.com/ppiankov/rainier/internal/nlp"
)

// ErrFlagging is returned when sentences or phrases cannot be lemmatized
var ErrFlagging = errors.New("phrase flagging failed")

type compiledPhrase struct {
	text   string
	lemmas []string
}

type compiledCategory struct {
	category model.Category
	phrases  []compiledPhrase
}

// Flagger matches lemma-normalized phrases against sentences. A Flagger is
// immutable after New and safe for concurrent use if its Lemmatizer is.
type Flagger struct {
	lem        nlp.Lemmatizer
	categories []compiledCategory
}

// New compiles every phrase of the table into its lemma sequence.
// Phrases that lemmatize to nothing are ignored.
func New(lem nlp.Lemmatizer, categories []model.Category) (*Flagger, error) {
	f := &Flagger{
		lem:        lem,
		categories: make([]compiledCategory, 0, len(categories)),
	}

	for _, cat := range categories {
		cc := compiledCategory{category: cat}
		for _, phrase := range cat.Phrases {
			lemmas, err := lem.Lemmas(phrase)
			if err != nil {
				return nil, fmt.Errorf("%w: compile phrase %q: %v", ErrFlagging, phrase, err)
			}
			if len(lemmas) == 0 {
				continue
			}
			cc.phrases = append(cc.phrases, compiledPhrase{text: phrase, lemmas: lemmas})
		}
		f.categories = append(f.categories, cc)
	}

	return f, nil
}

// Categories returns the table the flagger was compiled from
func (f *Flagger) Categories() []model.Category {
	out := make([]model.Category, len(f.categories))
	for i, cc := range f.categories {
		out[i] = cc.category
	}
	return out
}

// Scan lemmatizes every sentence once and returns a lazy sequence of matches.
// Matches come category by category in table order, then by sentence, then
// by token position, then by phrase order. Every occurrence counts.
func (f *Flagger) Scan(sentences []string) (iter.Seq[model.Match], error) {
	lemmatized := make([][]string, len(sentences))
	for i, s := range sentences {
		lemmas, err := f.lem.Lemmas(s)
		if err != nil {
			return nil, fmt.Errorf("%w: sentence %d: %v", ErrFlagging, i, err)
		}
		lemmatized[i] = lemmas
	}

	return func(yield func(model.Match) bool) {
		for _, cc := range f.categories {
			for i, tokens := range lemmatized {
				for pos := range tokens {
					for _, p := range cc.phrases {
						if !hasPrefixAt(tokens, pos, p.lemmas) {
							continue
						}
						m := model.Match{
							Category: cc.category.ID,
							Sentence: sentences[i],
							Phrase:   p.text,
							Index:    i,
							Token:    pos,
						}
						if !yield(m) {
							return
						}
					}
				}
			}
		}
	}, nil
}

// Flag returns every match as a slice
func (f *Flagger) Flag(sentences []string) ([]model.Match, error) {
	seq, err := f.Scan(sentences)
	if err != nil {
		return nil, err
	}

	matches := []model.Match{}
	for m := range seq {
		matches = append(matches, m)
	}
	return matches, nil
}

// Group returns one result per category in table order, including
// categories without matches, so empty categories stay observable.
func (f *Flagger) Group(sentences []string) ([]model.CategoryResult, error) {
	seq, err := f.Scan(sentences)
	if err != nil {
		return nil, err
	}

	results := make([]model.CategoryResult, len(f.categories))
	index := make(map[string]int, len(f.categories))
	for i, cc := range f.categories {
		results[i] = model.CategoryResult{Category: cc.category, Matches: []model.Match{}}
		index[cc.category.ID] = i
	}

	for m := range seq {
		r := &results[index[m.Category]]
		r.Matches = append(r.Matches, m)
		r.Count++
	}
	return results, nil
}

// Flag is a convenience for one-off scans of a table
func Flag(lem nlp.Lemmatizer, sentences []string, categories []model.Category) ([]model.Match, error) {
	f, err := New(lem, categories)
	if err != nil {
		return nil, err
	}
	return f.Flag(sentences)
}

func hasPrefixAt(tokens []string, pos int, phrase []string) bool {
	if pos+len(phrase) > len(tokens) {
		return false
	}
	for j, lemma := range phrase {
		if tokens[pos+j] != lemma {
			return false
		}
	}
	return true
}
