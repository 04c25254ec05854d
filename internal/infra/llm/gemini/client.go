package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"google.golang.org/genai"

	domain "github.com/yanqian/doc-summarizer/internal/domain/summarizer"
	apperrors "github.com/yanqian/doc-summarizer/pkg/errors"
	"github.com/yanqian/doc-summarizer/pkg/logger"
	"github.com/yanqian/doc-summarizer/pkg/metrics"
)

const (
	defaultModel     = "gemini-2.0-flash"
	defaultRetryBase = 500 * time.Millisecond
	maxRetryDelay    = 10 * time.Second
)

// Config configures calls to the Gemini API.
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxRetries  int
	Timeout     time.Duration
	RetryBase   time.Duration
}

// contentGenerator is the part of genai.Models the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements the summarizer Generator on top of the genai SDK. The
// SDK client is created on first use so a missing key surfaces per run.
type Client struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	models contentGenerator
}

// NewClient constructs a Gemini client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = defaultRetryBase
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Client{cfg: cfg, logger: logger.With("component", "gemini")}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Generate sends one system + user prompt pair and returns the response text.
func (c *Client) Generate(ctx context.Context, prompt domain.Prompt) (domain.Generation, error) {
	if !c.Configured() {
		return domain.Generation{}, apperrors.Wrap(domain.CodeMissingCredential, "GOOGLE_API_KEY is not configured", nil)
	}
	models, err := c.modelsService(ctx)
	if err != nil {
		return domain.Generation{}, err
	}

	log := logger.FromContext(ctx, c.logger)
	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
		Temperature:       genai.Ptr(c.cfg.Temperature),
	}
	backoff := retry.WithMaxRetries(uint64(c.cfg.MaxRetries), retry.WithCappedDuration(maxRetryDelay, retry.NewExponential(c.cfg.RetryBase)))

	var (
		resp    *genai.GenerateContentResponse
		attempt int
	)
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		callCtx, cancel := c.withTimeout(ctx)
		defer cancel()

		r, callErr := models.GenerateContent(callCtx, c.cfg.Model, genai.Text(prompt.User), genConfig)
		if callErr != nil {
			if isRetryable(ctx, callErr) {
				log.Warn("gemini call failed, retrying", "attempt", attempt, "error", callErr)
				return retry.RetryableError(callErr)
			}
			return callErr
		}
		resp = r
		return nil
	})
	if err != nil {
		return domain.Generation{}, fmt.Errorf("gemini generate content: %w", err)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return domain.Generation{}, errors.New("empty response from gemini")
	}
	return domain.Generation{Text: text, Usage: usageOf(resp)}, nil
}

func (c *Client) modelsService(ctx context.Context) (contentGenerator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.models != nil {
		return c.models, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     c.cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	c.models = client.Models
	c.logger.Info("gemini client initialized", "model", c.cfg.Model)
	return c.models, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.Timeout)
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

func usageOf(resp *genai.GenerateContentResponse) metrics.TokenUsage {
	if resp == nil || resp.UsageMetadata == nil {
		return metrics.TokenUsage{}
	}
	u := resp.UsageMetadata
	return metrics.TokenUsage{
		PromptTokens:     int(u.PromptTokenCount),
		CompletionTokens: int(u.CandidatesTokenCount),
		TotalTokens:      int(u.TotalTokenCount),
	}
}

// isRetryable reports whether a failed call is worth repeating. ctx is the
// caller's context, not the per-attempt one.
func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if code, ok := apiErrorCode(err); ok {
		switch code {
		case http.StatusRequestTimeout, http.StatusTooManyRequests,
			http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}

var _ domain.Generator = (*Client)(nil)
