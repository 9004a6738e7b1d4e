package model

import "time"

// Report represents the complete review of one uploaded contract
type Report struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`

	Document DocumentMeta `json:"document"`
	Contract string       `json:"contract"` // Extracted contract text

	SentenceCount int              `json:"sentence_count"`
	Flags         []CategoryResult `json:"flags"`        // One entry per category, in table order
	FlagStage     StageStatus      `json:"flag_stage"`   // Outcome of phrase flagging
	Answers       []Answer         `json:"answers"`      // Non-empty answers only, question order
	AnswerStage   StageStatus      `json:"answer_stage"` // Outcome of question answering

	QA *QAMeta `json:"qa,omitempty"` // Provider details when answering ran
}

// DocumentMeta describes the uploaded file
type DocumentMeta struct {
	MimeType string `json:"mime_type"`
	Pages    int    `json:"pages,omitempty"`
	SHA256   string `json:"sha256"`
	Bytes    int    `json:"bytes"`
}

// QAMeta records which model answered the questions
type QAMeta struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	Asked    int    `json:"asked"`
}

// TotalMatches returns the number of matches across all categories
func (r *Report) TotalMatches() int {
	total := 0
	for _, f := range r.Flags {
		total += f.Count
	}
	return total
}

// FlaggedCategories returns only the categories that produced matches
func (r *Report) FlaggedCategories() []CategoryResult {
	var out []CategoryResult
	for _, f := range r.Flags {
		if f.Count > 0 {
			out = append(out, f)
		}
	}
	return out
}
