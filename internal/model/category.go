package model

// Category is one review category of the phrase table
type Category struct {
	ID          string   `json:"id" yaml:"id"`                                       // Short key (e.g., "VC")
	Name        string   `json:"name" yaml:"name"`                                   // Display label (e.g., "Variable Consideration")
	Description string   `json:"description,omitempty" yaml:"description,omitempty"` // Flag heading shown above each hit
	Phrases     []string `json:"phrases" yaml:"phrases"`                             // Trigger vocabulary, in declared order
}

// Heading returns the text rendered above each flagged sentence
func (c Category) Heading() string {
	if c.Description != "" {
		return c.Description
	}
	return c.Name + " flag:"
}

// Match is a single phrase occurrence inside a sentence
type Match struct {
	Category string `json:"category"`        // Category ID
	Sentence string `json:"sentence"`        // Sentence text as segmented
	Phrase   string `json:"phrase"`          // Phrase from the table that triggered the hit
	Index    int    `json:"sentence_index"`  // Sentence index in the document (0-based)
	Token    int    `json:"token,omitempty"` // Token offset of the hit inside the sentence
}

// CategoryResult groups the matches of one category
type CategoryResult struct {
	Category Category `json:"category"`
	Matches  []Match  `json:"matches"`
	Count    int      `json:"count"`
}

// StageOutcome classifies how an analysis stage ended
type StageOutcome string

const (
	OutcomeOK       StageOutcome = "ok"       // Ran and produced results
	OutcomeEmpty    StageOutcome = "empty"    // Ran, nothing found
	OutcomeDisabled StageOutcome = "disabled" // Not configured
	OutcomeFailed   StageOutcome = "failed"   // Errored; Error carries the reason
)

// StageStatus records the outcome of one stage
type StageStatus struct {
	Outcome StageOutcome `json:"outcome"`
	Error   string       `json:"error,omitempty"`
	Notice  string       `json:"notice,omitempty"` // User-facing message for empty/failed stages
}

// Failed reports whether the stage errored
func (s StageStatus) Failed() bool {
	return s.Outcome == OutcomeFailed
}
