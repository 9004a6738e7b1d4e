package model

// Question is one legal question asked of the contract
type Question struct {
	Index int    `json:"index"` // Position in the question file
	Text  string `json:"text"`
}

// Answer pairs a question with the model's answer
type Answer struct {
	Question Question `json:"question"`
	Text     string   `json:"answer"`
	Cached   bool     `json:"cached,omitempty"`
}

// Found reports whether the model produced a non-empty answer
func (a Answer) Found() bool {
	return a.Text != ""
}
