// Package pipeline runs the contract review: extract text, split it into
// sentences, flag ASC 606 phrases and ask the review questions.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/rainier/internal/cache"
	"github.com/ppiankov/rainier/internal/catalog"
	"github.com/ppiankov/rainier/internal/extract"
	"github.com/ppiankov/rainier/internal/flagger"
	"github.com/ppiankov/rainier/internal/llm"
	"github.com/ppiankov/rainier/internal/metrics"
	"github.com/ppiankov/rainier/internal/model"
	"github.com/ppiankov/rainier/internal/nlp"
	"github.com/ppiankov/rainier/internal/questions"
)

// Stage names used for progress, logging and metrics
const (
	StageExtract = "extract"
	StageSegment = "segment"
	StageFlag    = "flag"
	StageAnswer  = "answer"
	StageDone    = "done"
)

// User-facing notices for stages that found nothing or failed
const (
	NoticeFlagFailed     = "Machine Learning model has not flagged any ASC606 relevant terms. Check contract imported."
	NoticeFlagEmpty      = "No ASC 606 relevant terms were found."
	NoticeAnswerFailed   = "Nothing is found by the AI. Check 'Contract Imported' to see whether contract has been correctly imported or not."
	NoticeAnswerEmpty    = "The AI did not find an answer to any review question."
	NoticeAnswerDisabled = "AI question answering is not configured."
)

// ProgressFunc receives completion percentages, in increasing order
type ProgressFunc func(percent int, stage string)

// Pipeline orchestrates the complete analysis of one contract
type Pipeline struct {
	extractors *extract.Registry
	segmenter  nlp.Segmenter
	flagger    *flagger.Flagger
	loader     *questions.Loader
	answerer   *llm.Answerer
	fetcher    *Fetcher
	metrics    *metrics.Metrics
	logger     *zap.Logger
	config     *model.Config
}

type options struct {
	logger     *zap.Logger
	metrics    *metrics.Metrics
	segmenter  nlp.Segmenter
	lemmatizer nlp.Lemmatizer
	categories []model.Category
	answerer   *llm.Answerer
	factory    *llm.Factory
	loader     *questions.Loader
}

// Option customizes a Pipeline
type Option func(*options)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records stage timings and outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithSegmenter replaces the punkt segmenter
func WithSegmenter(s nlp.Segmenter) Option {
	return func(o *options) { o.segmenter = s }
}

// WithLemmatizer replaces the dictionary lemmatizer
func WithLemmatizer(l nlp.Lemmatizer) Option {
	return func(o *options) { o.lemmatizer = l }
}

// WithCategories replaces the configured phrase table
func WithCategories(c []model.Category) Option {
	return func(o *options) { o.categories = c }
}

// WithAnswerer replaces the answerer built from the LLM config
func WithAnswerer(a *llm.Answerer) Option {
	return func(o *options) { o.answerer = a }
}

// WithFactory shares a provider factory between pipelines
func WithFactory(f *llm.Factory) Option {
	return func(o *options) { o.factory = f }
}

// WithQuestionLoader shares a question loader between pipelines
func WithQuestionLoader(l *questions.Loader) Option {
	return func(o *options) { o.loader = l }
}

// New creates a pipeline from configuration. The phrase table and the
// language models are loaded here; the question file is loaded lazily and
// memoized by the loader.
func New(cfg *model.Config, opts ...Option) (*Pipeline, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	if o.segmenter == nil || o.lemmatizer == nil {
		seg, lem, err := nlp.Default()
		if err != nil {
			return nil, fmt.Errorf("load language models: %w", err)
		}
		if o.segmenter == nil {
			o.segmenter = seg
		}
		if o.lemmatizer == nil {
			o.lemmatizer = lem
		}
	}

	if o.categories == nil {
		categories, err := catalog.Load(cfg.Catalog.File)
		if err != nil {
			return nil, fmt.Errorf("load phrase table: %w", err)
		}
		o.categories = categories
	}

	f, err := flagger.New(o.lemmatizer, o.categories)
	if err != nil {
		return nil, fmt.Errorf("compile phrase table: %w", err)
	}

	if o.loader == nil {
		o.loader = questions.NewLoader()
	}

	if o.answerer == nil {
		o.answerer = newAnswerer(cfg, o)
	}

	return &Pipeline{
		extractors: extract.NewRegistry(),
		segmenter:  o.segmenter,
		flagger:    f,
		loader:     o.loader,
		answerer:   o.answerer,
		fetcher:    NewFetcher(2*time.Minute, int64(cfg.Server.MaxUploadBytes)),
		metrics:    o.metrics,
		logger:     o.logger,
		config:     cfg,
	}, nil
}

// newAnswerer builds the answerer from the LLM config. A provider that
// cannot be created disables answering with a warning instead of failing.
func newAnswerer(cfg *model.Config, o *options) *llm.Answerer {
	llmConfig := llm.ConfigFromModel(cfg.LLM)

	factory := o.factory
	if factory == nil {
		factory = llm.NewFactory()
	}

	provider, err := factory.Provider(llmConfig)
	if err != nil {
		o.logger.Warn("question answering disabled", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
		provider = nil
	}

	answerOpts := []llm.Option{llm.WithLogger(o.logger)}
	if cfg.Cache.Enabled && provider != nil {
		layered := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		if err := o.metrics.RegisterCache(layered); err != nil {
			o.logger.Debug("answer cache metrics not registered", zap.Error(err))
		}
		answerOpts = append(answerOpts, llm.WithCache(layered, 0))
	}

	return llm.NewAnswerer(provider, llmConfig, answerOpts...)
}

// Categories returns the phrase table in use
func (p *Pipeline) Categories() []model.Category {
	return p.flagger.Categories()
}

// Questions returns the questions asked of each contract
func (p *Pipeline) Questions() ([]model.Question, error) {
	return p.loader.Load(p.config.Questions.File, p.config.Questions.Indices)
}

// Answerer returns the question answerer
func (p *Pipeline) Answerer() *llm.Answerer {
	return p.answerer
}

// Analyze reviews one uploaded document
func (p *Pipeline) Analyze(ctx context.Context, filename string, content []byte) (*model.Report, error) {
	return p.AnalyzeWithProgress(ctx, filename, content, nil)
}

// AnalyzeWithProgress reviews one document, reporting progress at fixed
// milestones. Extraction errors abort the analysis; flagging and answering
// errors are recorded on the report as stage outcomes.
func (p *Pipeline) AnalyzeWithProgress(ctx context.Context, filename string, content []byte, progress ProgressFunc) (*model.Report, error) {
	if progress == nil {
		progress = func(int, string) {}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 1. Extract text
	start := time.Now()
	doc, err := p.extractors.Extract(filename, extract.DetectType(filename, content), content)
	if err != nil {
		p.metrics.ObserveStage(StageExtract, time.Since(start), model.OutcomeFailed)
		p.metrics.ObserveFailure()
		return nil, fmt.Errorf("extract: %w", err)
	}
	p.metrics.ObserveStage(StageExtract, time.Since(start), model.OutcomeOK)
	p.metrics.ObserveDocument(doc.Bytes)
	progress(5, StageExtract)

	report := &model.Report{
		ID:        uuid.NewString(),
		Filename:  doc.Filename,
		CreatedAt: time.Now().UTC(),
		Document:  doc.Meta(),
		Contract:  doc.Text,
		Flags:     []model.CategoryResult{},
		Answers:   []model.Answer{},
	}
	logger := p.logger.With(zap.String("report_id", report.ID), zap.String("filename", report.Filename))
	logger.Info("contract extracted",
		zap.String("mime_type", doc.MimeType),
		zap.Int("pages", doc.Pages),
		zap.Int("chars", len(doc.Text)))

	// 2-3. Segment and flag
	p.flag(report, progress, logger)

	// 4. Ask the review questions
	p.answer(ctx, report, progress, logger)

	progress(100, StageDone)
	p.metrics.ObserveReport(report)

	logger.Info("analysis finished",
		zap.Int("sentences", report.SentenceCount),
		zap.Int("matches", report.TotalMatches()),
		zap.String("flag_stage", string(report.FlagStage.Outcome)),
		zap.Int("answers", len(report.Answers)),
		zap.String("answer_stage", string(report.AnswerStage.Outcome)))

	return report, nil
}

// flag segments the contract and runs the phrase table over its sentences
func (p *Pipeline) flag(report *model.Report, progress ProgressFunc, logger *zap.Logger) {
	start := time.Now()
	fail := func(err error) {
		logger.Warn("phrase flagging failed", zap.Error(err))
		report.FlagStage = model.StageStatus{Outcome: model.OutcomeFailed, Error: err.Error(), Notice: NoticeFlagFailed}
		p.metrics.ObserveStage(StageFlag, time.Since(start), model.OutcomeFailed)
	}

	sentences, err := p.segmenter.Sentences(report.Contract)
	if err != nil {
		fail(fmt.Errorf("%w: segment: %v", flagger.ErrFlagging, err))
		return
	}
	report.SentenceCount = len(sentences)
	progress(10, StageSegment)

	results, err := p.flagger.Group(sentences)
	if err != nil {
		fail(err)
		return
	}
	report.Flags = results

	for i := range results {
		progress(categoryMilestone(i, len(results)), StageFlag)
	}

	outcome := model.OutcomeOK
	if report.TotalMatches() == 0 {
		outcome = model.OutcomeEmpty
		report.FlagStage.Notice = NoticeFlagEmpty
	}
	report.FlagStage.Outcome = outcome
	p.metrics.ObserveStage(StageFlag, time.Since(start), outcome)
}

// categoryMilestone spreads the per-category progress over 15..75
func categoryMilestone(i, n int) int {
	if n <= 1 {
		return 75
	}
	return 15 + 60*i/(n-1)
}

// answer asks every question of the contract. Any failure drops all
// answers and records the stage as failed.
func (p *Pipeline) answer(ctx context.Context, report *model.Report, progress ProgressFunc, logger *zap.Logger) {
	start := time.Now()
	finish := func(status model.StageStatus) {
		report.AnswerStage = status
		p.metrics.ObserveStage(StageAnswer, time.Since(start), status.Outcome)
		progress(99, StageAnswer)
	}

	progress(80, StageAnswer)
	if !p.answerer.IsEnabled() {
		finish(model.StageStatus{Outcome: model.OutcomeDisabled, Notice: NoticeAnswerDisabled})
		return
	}

	qs, err := p.Questions()
	if err != nil {
		logger.Warn("question set unavailable", zap.Error(err))
		finish(model.StageStatus{Outcome: model.OutcomeFailed, Error: err.Error(), Notice: NoticeAnswerFailed})
		return
	}
	progress(85, StageAnswer)

	report.QA = &model.QAMeta{
		Provider: p.answerer.ProviderName(),
		Model:    p.answerer.Model(),
		Asked:    len(qs),
	}

	set, err := p.answerer.Answer(ctx, qs, report.Contract)
	if err != nil {
		logger.Warn("question answering failed", zap.Error(err))
		finish(model.StageStatus{Outcome: model.OutcomeFailed, Error: err.Error(), Notice: NoticeAnswerFailed})
		return
	}
	progress(95, StageAnswer)

	if set.Model != "" {
		report.QA.Model = set.Model
	}
	report.Answers = set.Answers

	if len(set.Answers) == 0 {
		finish(model.StageStatus{Outcome: model.OutcomeEmpty, Notice: NoticeAnswerEmpty})
		return
	}
	finish(model.StageStatus{Outcome: model.OutcomeOK})
}

// AnalyzeFile reads a local path or http(s) URL and analyzes it
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string) (*model.Report, error) {
	return p.AnalyzeFileWithProgress(ctx, path, nil)
}

// AnalyzeFileWithProgress is AnalyzeFile with progress reporting
func (p *Pipeline) AnalyzeFileWithProgress(ctx context.Context, path string, progress ProgressFunc) (*model.Report, error) {
	if isURL(path) {
		result, err := p.fetcher.FetchWithRetry(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", path, err)
		}
		return p.AnalyzeWithProgress(ctx, result.Filename, result.Content, progress)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return p.AnalyzeWithProgress(ctx, path, content, progress)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsUserError reports whether err stems from the upload itself rather than
// from the service
func IsUserError(err error) bool {
	return errors.Is(err, extract.ErrUnsupportedType) || errors.Is(err, extract.ErrExtraction)
}
