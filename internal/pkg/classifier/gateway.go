package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// GatewayConfig configures an OpenAI-compatible chat completions gateway.
type GatewayConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	Timeout   time.Duration // zero leaves the request unbounded
	UserAgent string
}

// Gateway calls {BaseURL}/chat/completions with the analysis tool forced.
type Gateway struct {
	baseURL string
	apiKey  string
	model   string
	ua      string
	http    *http.Client
}

// NewGateway creates a gateway classifier.
func NewGateway(cfg GatewayConfig) *Gateway {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Gateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		ua:      cfg.UserAgent,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}
}

type chatRequest struct {
	Model      string        `json:"model"`
	Messages   []chatMessage `json:"messages"`
	Tools      []chatTool    `json:"tools"`
	ToolChoice chatToolRef   `json:"tool_choice"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type chatToolRef struct {
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

func (g *Gateway) buildRequest(req Request) chatRequest {
	parts := []contentPart{{Type: "text", Text: UserText(req.Photos)}}
	for _, p := range req.Photos {
		parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: p.URL}})
	}

	return chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt(req.Previous)},
			{Role: "user", Content: parts},
		},
		Tools: []chatTool{{
			Type: "function",
			Function: chatFunction{
				Name:        ToolName,
				Description: toolDescription,
				Parameters:  jsonSchema(),
			},
		}},
		ToolChoice: chatToolRef{Type: "function", Function: chatFunction{Name: ToolName}},
	}
}

// Analyze sends the photos to the gateway and decodes the forced tool call.
func (g *Gateway) Analyze(ctx context.Context, req Request) (*Result, error) {
	if len(req.Photos) == 0 {
		return nil, NewError(KindUnknown, MsgNoPhotos, nil)
	}
	if strings.TrimSpace(g.apiKey) == "" || strings.TrimSpace(g.baseURL) == "" {
		return nil, NewError(KindUnknown, MsgNotConfigured, nil)
	}

	payload, err := json.Marshal(g.buildRequest(req))
	if err != nil {
		return nil, NewError(KindUnknown, MsgAnalysisFailed, fmt.Errorf("encode request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, NewError(KindUnknown, MsgAnalysisFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	if g.ua != "" {
		httpReq.Header.Set("User-Agent", g.ua)
	}

	resp, err := g.http.Do(httpReq)
	if err != nil {
		return nil, classifyRequestError(ctx, err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if readErr != nil {
			return nil, statusError(resp.StatusCode, fmt.Sprintf("<failed to read body: %v>", readErr))
		}
		return nil, statusError(resp.StatusCode, string(body))
	}
	if readErr != nil {
		return nil, NewError(KindUnknown, MsgAnalysisFailed, fmt.Errorf("read response: %w", readErr))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, NewError(KindUnknown, MsgNoStructuredResult, fmt.Errorf("decode response: %w", err))
	}
	if len(parsed.Choices) == 0 || len(parsed.Choices[0].Message.ToolCalls) == 0 ||
		parsed.Choices[0].Message.ToolCalls[0].Function.Arguments == "" {
		log.Warn().Str("body", truncate(string(body), 512)).Msg("No tool call in AI response")
		return nil, NewError(KindUnknown, MsgNoStructuredResult, nil)
	}

	return DecodeResult([]byte(parsed.Choices[0].Message.ToolCalls[0].Function.Arguments))
}

func statusError(status int, body string) error {
	detail := fmt.Errorf("gateway http error: status=%d body=%s", status, body)
	switch status {
	case http.StatusTooManyRequests:
		return NewError(KindRateLimit, MsgRateLimit, detail)
	case http.StatusPaymentRequired:
		return NewError(KindCredits, MsgCreditsExhausted, detail)
	case http.StatusUnauthorized, http.StatusForbidden:
		return NewError(KindAuth, MsgUnauthorized, detail)
	default:
		log.Error().Int("status", status).Str("body", truncate(body, 512)).Msg("AI gateway error")
		return NewError(KindUnknown, MsgAnalysisFailed, detail)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func classifyRequestError(ctx context.Context, err error) error {
	if isTimeoutError(ctx, err) {
		return NewError(KindUnknown, MsgAnalysisFailed, fmt.Errorf("gateway timeout: %w", err))
	}
	if isNetworkError(err) {
		return NewError(KindUnknown, MsgAnalysisFailed, fmt.Errorf("gateway network error: %w", err))
	}
	return NewError(KindUnknown, MsgAnalysisFailed, fmt.Errorf("gateway request error: %w", err))
}

func isTimeoutError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH)
}
