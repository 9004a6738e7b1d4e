package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/rainier/internal/cache"
	"github.com/ppiankov/rainier/internal/model"
	"github.com/ppiankov/rainier/internal/worker"
	"go.uber.org/zap"
)

// AnswerSet is the outcome of asking every question of one contract
type AnswerSet struct {
	// Answers holds non-empty answers only, in question order
	Answers []model.Answer

	Asked      int // questions considered
	Calls      int // provider calls made
	CacheHits  int
	TokensUsed int

	Provider string
	Model    string
}

// Answerer asks the configured questions of a contract
type Answerer struct {
	provider Provider
	config   Config
	limiter  *worker.Limiter
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// Option configures an Answerer
type Option func(*Answerer)

// WithCache stores answers in c for ttl (0 uses the cache default)
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(a *Answerer) {
		a.cache = c
		a.cacheTTL = ttl
	}
}

// WithLimiter shares a rate limiter across answerers
func WithLimiter(l *worker.Limiter) Option {
	return func(a *Answerer) {
		a.limiter = l
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(a *Answerer) {
		a.logger = l
	}
}

// NewAnswerer creates an answerer; a nil provider disables answering
func NewAnswerer(provider Provider, config Config, opts ...Option) *Answerer {
	a := &Answerer{
		provider: provider,
		config:   config,
		cache:    cache.Nop{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.limiter == nil {
		a.limiter = worker.NewLimiter(config.RequestsPerSecond, config.BurstSize)
	}
	return a
}

// IsEnabled reports whether a provider is configured
func (a *Answerer) IsEnabled() bool {
	return a.provider != nil
}

// ProviderName returns the provider name, or "" when disabled
func (a *Answerer) ProviderName() string {
	if a.provider == nil {
		return ""
	}
	return a.provider.Name()
}

// Model returns the configured model name
func (a *Answerer) Model() string {
	return a.config.Model
}

// Ping checks the provider
func (a *Answerer) Ping(ctx context.Context) error {
	if a.provider == nil {
		return ErrDisabled
	}
	return a.provider.Ping(ctx)
}

// Answer asks each question of the contract in order. Empty contracts make
// no provider calls. Any provider error fails the whole set, so callers
// never show a partial answer list.
func (a *Answerer) Answer(ctx context.Context, questions []model.Question, contract string) (*AnswerSet, error) {
	if a.provider == nil {
		return nil, ErrDisabled
	}

	set := &AnswerSet{
		Answers:  []model.Answer{},
		Asked:    len(questions),
		Provider: a.provider.Name(),
		Model:    a.config.Model,
	}

	if strings.TrimSpace(contract) == "" {
		return set, nil
	}

	sum := sha256.Sum256([]byte(contract))
	contractHash := hex.EncodeToString(sum[:])

	for _, q := range questions {
		key := cache.Key(a.provider.Name(), a.config.Model, q.Text, contractHash)

		if cached, ok := a.cache.Get(key); ok {
			set.CacheHits++
			if text := string(cached); text != "" {
				set.Answers = append(set.Answers, model.Answer{Question: q, Text: text, Cached: true})
			}
			continue
		}

		if err := a.limiter.Wait(ctx, a.provider.Endpoint()); err != nil {
			return nil, fmt.Errorf("%w: rate limit wait: %v", ErrAnswering, err)
		}

		resp, err := a.provider.Answer(ctx, AnswerRequest{
			Question:  q.Text,
			Contract:  contract,
			Model:     a.config.Model,
			MaxTokens: a.config.MaxTokens,
		})
		set.Calls++
		if err != nil {
			a.logger.Warn("question answering failed",
				zap.String("provider", a.provider.Name()),
				zap.Int("question", q.Index),
				zap.Error(err))
			return nil, fmt.Errorf("%w: question %d: %v", ErrAnswering, q.Index, err)
		}

		set.TokensUsed += resp.TokensUsed
		if resp.Model != "" {
			set.Model = resp.Model
		}

		// Empty answers are cached too so unanswerable questions are not re-asked
		if err := a.cache.Set(key, []byte(resp.Answer), a.cacheTTL); err != nil {
			a.logger.Debug("answer cache write failed", zap.Error(err))
		}

		if resp.Answer != "" {
			set.Answers = append(set.Answers, model.Answer{Question: q, Text: resp.Answer})
		}
	}

	a.logger.Debug("questions answered",
		zap.String("provider", set.Provider),
		zap.Int("asked", set.Asked),
		zap.Int("found", len(set.Answers)),
		zap.Int("cache_hits", set.CacheHits))

	return set, nil
}
