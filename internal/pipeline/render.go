package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/rainier/internal/model"
)

// Headings shared by the text, Markdown and HTML views
const (
	ContractHeading = "Contract Imported"
	FlagsHeading    = "Machine Learning powered ASC 606 flagging (returns BLANK if no ASC606 relevant term is found):"
	AnswersHeading  = "AI powered overall contract review section (returns BLANK if no relevant question is found):"
	AnswersWarning  = "Warning: AI may not be accurate so please exercise your due diligence and care."
	AnswerPrefix    = "AI found: "
	FinishedMessage = "Congrats we finished the analysis together!"
)

// Separator follows every flagged sentence
var Separator = strings.Repeat("-", 84)

// Renderer writes reports as text, Markdown or JSON
type Renderer struct {
	includeContract bool
}

// NewRenderer creates a renderer; includeContract controls whether the
// extracted contract text is repeated in text and Markdown output
func NewRenderer(includeContract bool) *Renderer {
	return &Renderer{includeContract: includeContract}
}

// RenderText writes the report in display order: contract text, flagged
// sentences category by category, then the answers found
func (r *Renderer) RenderText(w io.Writer, report *model.Report) error {
	var b strings.Builder

	if r.includeContract {
		fmt.Fprintf(&b, "%s:\n%s\n\n", ContractHeading, strings.TrimSpace(report.Contract))
	}

	b.WriteString(FlagsHeading + "\n\n")
	for _, result := range report.Flags {
		for _, m := range result.Matches {
			b.WriteString(result.Category.Heading() + "\n")
			b.WriteString(m.Sentence + "\n")
			b.WriteString(Separator + "\n")
		}
	}
	if report.FlagStage.Notice != "" {
		b.WriteString(report.FlagStage.Notice + "\n")
	}

	b.WriteString("\n" + AnswersHeading + "\n")
	b.WriteString(AnswersWarning + "\n\n")
	for _, a := range report.Answers {
		b.WriteString(a.Question.Text + "\n")
		b.WriteString(AnswerPrefix + a.Text + "\n")
	}
	if report.AnswerStage.Notice != "" {
		b.WriteString(report.AnswerStage.Notice + "\n")
	}

	b.WriteString("\n" + FinishedMessage + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderMarkdown writes the report as a Markdown document
func (r *Renderer) RenderMarkdown(w io.Writer, report *model.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Contract review: %s\n\n", report.Filename)
	fmt.Fprintf(&b, "- Report: `%s`\n", report.ID)
	fmt.Fprintf(&b, "- Analyzed: %s\n", report.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	if report.Document.Pages > 0 {
		fmt.Fprintf(&b, "- Pages: %d\n", report.Document.Pages)
	}
	fmt.Fprintf(&b, "- Sentences: %d\n", report.SentenceCount)
	fmt.Fprintf(&b, "- Flagged sentences: %d\n", report.TotalMatches())
	if report.QA != nil {
		fmt.Fprintf(&b, "- Question answering: %s", report.QA.Provider)
		if report.QA.Model != "" {
			fmt.Fprintf(&b, " (%s)", report.QA.Model)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if r.includeContract {
		b.WriteString("## " + ContractHeading + "\n\n")
		b.WriteString("```text\n" + strings.TrimSpace(report.Contract) + "\n```\n\n")
	}

	b.WriteString("## " + FlagsHeading + "\n\n")
	for _, result := range report.Flags {
		if result.Count == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s (%d)\n\n", result.Category.Name, result.Count)
		for _, m := range result.Matches {
			fmt.Fprintf(&b, "**%s** _%s_\n\n", result.Category.Heading(), m.Phrase)
			fmt.Fprintf(&b, "> %s\n\n", m.Sentence)
		}
	}
	if report.FlagStage.Notice != "" {
		fmt.Fprintf(&b, "_%s_\n\n", report.FlagStage.Notice)
	}

	b.WriteString("## " + AnswersHeading + "\n\n")
	fmt.Fprintf(&b, "> %s\n\n", AnswersWarning)
	for _, a := range report.Answers {
		fmt.Fprintf(&b, "**%s**\n\n%s%s\n\n", a.Question.Text, AnswerPrefix, a.Text)
	}
	if report.AnswerStage.Notice != "" {
		fmt.Fprintf(&b, "_%s_\n\n", report.AnswerStage.Notice)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(w io.Writer, report *model.Report) error {
	out := *report
	if !r.includeContract {
		out.Contract = ""
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&out)
}

// WriteFile renders the report into path using render
func (r *Renderer) WriteFile(path string, report *model.Report, render func(io.Writer, *model.Report) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(f, report); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// RenderSummary writes a short per-category overview
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	fmt.Fprintf(w, "%s: %d sentences, %d flagged\n", report.Filename, report.SentenceCount, report.TotalMatches())
	for _, result := range report.FlaggedCategories() {
		fmt.Fprintf(w, "  %-28s %d\n", result.Category.Name, result.Count)
	}
	if report.FlagStage.Failed() {
		fmt.Fprintf(w, "  flagging failed: %s\n", report.FlagStage.Error)
	}
	if report.AnswerStage.Failed() {
		fmt.Fprintf(w, "  answering failed: %s\n", report.AnswerStage.Error)
	}
	if len(report.Answers) > 0 {
		fmt.Fprintf(w, "  answers found: %d\n", len(report.Answers))
	}
}
