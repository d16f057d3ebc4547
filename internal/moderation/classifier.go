package moderation

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	SystemPrompt = `Du bist ein Chat-Moderator. Prüfe Nachrichten NUR auf rassistische Inhalte, Hassrede oder Diskriminierung. Sexuelle Anspielungen oder Kraftausdrücke sind ERLAUBT. Antworte mit "OK" wenn die Nachricht in Ordnung ist, oder mit einer freundlichen deutschen Warnung wie "Hey, bitte bleib freundlich und vermeide rassistische Begriffe!" wenn problematisch.`

	MaxReplyTokens = 100

	userPromptFormat = `Prüfe diese Chat-Nachricht: "%s"`
	defaultTimeout   = 15 * time.Second
)

type Classifier interface {
	Classify(ctx context.Context, text string) (Verdict, error)
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	// SiteURL is sent as HTTP-Referer, which OpenRouter uses for attribution.
	SiteURL string
	Timeout time.Duration
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

// OpenAIClassifier asks an OpenAI-compatible chat-completions endpoint for a
// verdict. It makes exactly one attempt per call.
type OpenAIClassifier struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIClassifier(cfg Config) *OpenAIClassifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	next := cfg.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	clientCfg.HTTPClient = &http.Client{
		Timeout:   timeout,
		Transport: &headerTransport{next: next, referer: cfg.SiteURL},
	}

	return &OpenAIClassifier{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: timeout,
	}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(userPromptFormat, text)},
		},
		MaxTokens: MaxReplyTokens,
	})
	if err != nil {
		return Verdict{}, unavailable("completion", err)
	}

	// A reply without content counts as a clean verdict.
	reply := cleanToken
	if len(resp.Choices) > 0 && strings.TrimSpace(resp.Choices[0].Message.Content) != "" {
		reply = resp.Choices[0].Message.Content
	}
	return ParseVerdict(reply), nil
}

type headerTransport struct {
	next    http.RoundTripper
	referer string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.referer == "" {
		return t.next.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("HTTP-Referer", t.referer)
	return t.next.RoundTrip(clone)
}
