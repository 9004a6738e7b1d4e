// Package questions loads the legal questions asked of every contract.
package questions

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/ppiankov/rainier/internal/cache"
	"github.com/ppiankov/rainier/internal/model"
)

var (
	// ErrIndexOutOfRange is returned when a selected index is not in the question file
	ErrIndexOutOfRange = errors.New("question index out of range")

	// ErrNoQuestions is returned when the question file holds no questions
	ErrNoQuestions = errors.New("question file has no questions")
)

// builtin mirrors the CUAD questions at the default indices
var builtin = map[int]string{
	2:  question("Agreement Date", "The date of the contract"),
	3:  question("Effective Date", "The date when the contract is effective"),
	5:  question("Renewal Term", "What is the renewal term after the initial term expires? This includes automatic extensions and unilateral extensions with prior notice."),
	15: question("Termination For Convenience", "Can a party terminate this contract without cause (solely by giving a notice and allowing a waiting period to expire)?"),
}

func question(label, details string) string {
	return fmt.Sprintf("Highlight the parts (if any) of this contract related to %q that should be reviewed by a lawyer. Details: %s", label, details)
}

// Default returns the built-in questions at the default indices
func Default() []model.Question {
	qs, _ := selectBuiltin(model.DefaultQuestionIndices)
	return qs
}

// squad is the subset of the CUAD/SQuAD layout the loader reads
type squad struct {
	Data []struct {
		Paragraphs []struct {
			QAs []struct {
				Question string `json:"question"`
			} `json:"qas"`
		} `json:"paragraphs"`
	} `json:"data"`
}

// Parse reads the question list of the first paragraph of the first
// document and returns the questions at indices, in the order given
func Parse(data []byte, indices []int) ([]model.Question, error) {
	var doc squad
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse question file: %w", err)
	}
	if len(doc.Data) == 0 || len(doc.Data[0].Paragraphs) == 0 || len(doc.Data[0].Paragraphs[0].QAs) == 0 {
		return nil, ErrNoQuestions
	}

	qas := doc.Data[0].Paragraphs[0].QAs
	all := make([]string, len(qas))
	for i, qa := range qas {
		all[i] = qa.Question
	}
	return selectIndices(all, indices)
}

func selectIndices(all []string, indices []int) ([]model.Question, error) {
	out := make([]model.Question, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(all) {
			return nil, fmt.Errorf("%w: %d (file has %d)", ErrIndexOutOfRange, idx, len(all))
		}
		out = append(out, model.Question{Index: idx, Text: strings.TrimSpace(all[idx])})
	}
	return out, nil
}

func selectBuiltin(indices []int) ([]model.Question, error) {
	out := make([]model.Question, 0, len(indices))
	for _, idx := range indices {
		text, ok := builtin[idx]
		if !ok {
			return nil, fmt.Errorf("%w: %d is not built in; configure a question file", ErrIndexOutOfRange, idx)
		}
		out = append(out, model.Question{Index: idx, Text: text})
	}
	return out, nil
}

// Loader loads question files once per path and parses each selection
// once per path and index list, for the life of the process
type Loader struct {
	files  *cache.Memo[[]byte]
	parsed *cache.Memo[[]model.Question]
}

// NewLoader creates a new question loader
func NewLoader() *Loader {
	return &Loader{
		files:  cache.NewMemo[[]byte](),
		parsed: cache.NewMemo[[]model.Question](),
	}
}

// Load returns the questions at indices from the CUAD file at path, or the
// built-in questions when path is empty. Nil indices select the defaults.
func (l *Loader) Load(path string, indices []int) ([]model.Question, error) {
	if indices == nil {
		indices = model.DefaultQuestionIndices
	}
	if path == "" {
		return selectBuiltin(indices)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	qs, err := l.parsed.Get(abs+"#"+indexKey(indices), func() ([]model.Question, error) {
		data, err := l.files.Get(abs, func() ([]byte, error) {
			return os.ReadFile(abs)
		})
		if err != nil {
			return nil, fmt.Errorf("read question file: %w", err)
		}
		return Parse(data, indices)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(qs), nil
}

func indexKey(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ",")
}

// Key identifies a question selection, for cache keys and logs
func Key(qs []model.Question) string {
	indices := make([]int, len(qs))
	for i, q := range qs {
		indices[i] = q.Index
	}
	return indexKey(indices)
}
