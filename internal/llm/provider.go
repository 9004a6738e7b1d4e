// Package llm asks the contract questions of a question-answering model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrDisabled is returned when no provider is configured
	ErrDisabled = errors.New("question answering disabled")

	// ErrNotConfigured is returned when a provider lacks required settings
	ErrNotConfigured = errors.New("provider not configured")

	// ErrAnswering wraps any provider failure while answering questions
	ErrAnswering = errors.New("question answering failed")
)

// NoAnswer is what the model replies when the contract does not answer a question
const NoAnswer = "NONE"

// maxContractChars bounds the contract text sent with each question
const maxContractChars = 100_000

// Provider defines the interface for question-answering providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Endpoint returns the base URL requests go to, used as the rate limit key
	Endpoint() string

	// Answer extracts the answer to one question from the contract text.
	// An empty Answer means the contract does not address the question.
	Answer(ctx context.Context, req AnswerRequest) (*AnswerResponse, error)

	// Ping checks that the provider is configured and reachable
	Ping(ctx context.Context) error
}

// AnswerRequest contains one question and the contract it is asked of
type AnswerRequest struct {
	Question string
	Contract string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// AnswerResponse contains the model's answer
type AnswerResponse struct {
	// Answer is the normalized answer; empty when nothing was found
	Answer string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Rate limit per endpoint
	RequestsPerSecond float64
	BurstSize         int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:          "", // Disabled by default
		Timeout:           60,
		MaxTokens:         300,
		RequestsPerSecond: 2,
		BurstSize:         4,
	}
}

const systemPrompt = "You are a contract review assistant. You answer questions about a contract " +
	"by quoting the shortest passage of the contract that answers them. You never invent text " +
	"that is not in the contract."

// BuildPrompt constructs the extraction prompt for one question
func BuildPrompt(question, contract string) string {
	return fmt.Sprintf(`Answer the question using only the contract below.

RULES:
1. Reply with the exact passage from the contract that answers the question, copied verbatim.
2. Do not explain, summarize or add commentary.
3. If the contract does not answer the question, reply with exactly: %s

QUESTION:
%s

CONTRACT:
%s`, NoAnswer, question, truncateContract(contract))
}

// truncateContract keeps the head of very long contracts, on a rune boundary
func truncateContract(contract string) string {
	if len(contract) <= maxContractChars {
		return contract
	}
	cut := maxContractChars
	for cut > 0 && !utf8.RuneStart(contract[cut]) {
		cut--
	}
	return contract[:cut] + "\n[... contract truncated ...]"
}

// NormalizeAnswer trims model output and maps "nothing found" replies to ""
func NormalizeAnswer(raw string) string {
	answer := strings.TrimSpace(raw)
	answer = strings.Trim(answer, "\"'`")
	answer = strings.TrimSpace(answer)

	switch strings.ToUpper(strings.TrimRight(answer, ".")) {
	case NoAnswer, "N/A", "NULL", "NOT FOUND", "NO ANSWER":
		return ""
	}
	return answer
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
