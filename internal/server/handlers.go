package server

import (
	"fmt"
	"io"
	"slices"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/ppiankov/rainier/internal/extract"
	"github.com/ppiankov/rainier/internal/model"
	"github.com/ppiankov/rainier/internal/pipeline"
)

// Index renders the upload form
func (s *Server) Index(c fiber.Ctx) error {
	qs, err := s.pipeline.Questions()
	if err != nil {
		s.logger.Warn("question set unavailable", zap.Error(err))
	}

	return c.Render("index", fiber.Map{
		"Title":       "Upload",
		"SiteTitle":   s.Cfg.Server.Title,
		"Categories":  s.pipeline.Categories(),
		"Questions":   qs,
		"QAEnabled":   s.pipeline.Answerer().IsEnabled(),
		"MaxUploadMB": s.Cfg.Server.MaxUploadBytes >> 20,
	})
}

// AnalyzePage analyzes an uploaded contract and renders the report page
func (s *Server) AnalyzePage(c fiber.Ctx) error {
	report, err := s.analyzeUpload(c)
	if err != nil {
		return err
	}

	return c.Render("report", fiber.Map{
		"Title":           report.Filename,
		"SiteTitle":       s.Cfg.Server.Title,
		"Report":          report,
		"ContractHeading": pipeline.ContractHeading,
		"FlagsHeading":    pipeline.FlagsHeading,
		"AnswersHeading":  pipeline.AnswersHeading,
		"AnswersWarning":  pipeline.AnswersWarning,
		"AnswerPrefix":    pipeline.AnswerPrefix,
		"FinishedMessage": pipeline.FinishedMessage,
	})
}

// AnalyzeAPI analyzes an uploaded contract and returns the report as JSON
func (s *Server) AnalyzeAPI(c fiber.Ctx) error {
	report, err := s.analyzeUpload(c)
	if err != nil {
		return err
	}
	if !s.Cfg.Output.IncludeContract {
		out := *report
		out.Contract = ""
		report = &out
	}
	return jsonSuccess(c, report)
}

// Categories lists the phrase table
func (s *Server) Categories(c fiber.Ctx) error {
	return jsonSuccess(c, s.pipeline.Categories())
}

// Questions lists the questions asked of each contract
func (s *Server) Questions(c fiber.Ctx) error {
	qs, err := s.pipeline.Questions()
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "question set unavailable")
	}
	return jsonSuccess(c, fiber.Map{
		"enabled":   s.pipeline.Answerer().IsEnabled(),
		"questions": qs,
	})
}

// analyzeUpload validates the multipart upload and runs the pipeline on it
func (s *Server) analyzeUpload(c fiber.Ctx) (*model.Report, error) {
	filename, content, err := s.readUpload(c)
	if err != nil {
		return nil, err
	}

	report, err := s.pipeline.Analyze(c.Context(), filename, content)
	if err != nil {
		if pipeline.IsUserError(err) {
			return nil, fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("The contract could not be read: %v", err))
		}
		s.logger.Error("analysis failed", zap.String("filename", filename), zap.Error(err))
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Analysis failed")
	}
	return report, nil
}

// readUpload returns the uploaded file from the "file" form field. Files
// over the size limit get 413; types outside the allow list get 415.
func (s *Server) readUpload(c fiber.Ctx) (string, []byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, `Missing file upload in form field "file"`)
	}

	limit := s.Cfg.Server.MaxUploadBytes
	if limit > 0 && fh.Size > int64(limit) {
		return "", nil, fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("File is larger than %d bytes", limit))
	}

	f, err := fh.Open()
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "Could not read upload")
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "Could not read upload")
	}
	if len(content) == 0 {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "Uploaded file is empty")
	}

	mimeType := extract.DetectType(fh.Filename, content)
	if allowed := s.Cfg.Server.AllowedTypes; len(allowed) > 0 && !slices.Contains(allowed, mimeType) {
		return "", nil, fiber.NewError(fiber.StatusUnsupportedMediaType, "Upload OCR readable pdf files only")
	}

	return fh.Filename, content, nil
}
