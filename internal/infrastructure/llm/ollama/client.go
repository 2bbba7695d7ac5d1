package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/clearclaim/claims-engine/internal/infrastructure/resilience"
)

// Client implements the completion contract against an Ollama server. Every
// call carries a per-attempt timeout and flows through the resilience
// executor; a client-side rate limiter keeps the model from being flooded
// when many documents arrive in one submission.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
	timeout    time.Duration
}

type Options struct {
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	Burst             int
	Executor          *resilience.Executor
}

func New(baseURL, model string, options Options) *Client {
	timeout := options.RequestTimeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	rps := options.RequestsPerSecond
	if rps <= 0 {
		rps = 4
	}
	burst := options.Burst
	if burst <= 0 {
		burst = 8
	}
	executor := options.Executor
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		executor:   executor,
		timeout:    timeout,
	}
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
	})
}

// CompleteJSON asks the model for strict-JSON output.
func (c *Client) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	})
}

func (c *Client) generate(ctx context.Context, reqBody map[string]any) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var response struct {
		Response string `json:"response"`
	}
	err := c.executor.Do(ctx, "ollama.generate", func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return c.postJSON(attemptCtx, "/api/generate", reqBody, &response, "generate")
	}, classifyCallError)
	if err != nil {
		return "", wrapTemporaryIfNeeded("generate completion", err)
	}
	return strings.TrimSpace(response.Response), nil
}
