package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// maxPhotoBytes bounds a fetched photo; uploads are capped at 10MB.
const maxPhotoBytes = 10 << 20

// GeminiConfig configures the Gemini backend.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Gemini calls the Gemini API directly with a forced function declaration.
// Photos are fetched from their signed URLs and sent inline.
type Gemini struct {
	apiKey string
	model  string
	fetch  *http.Client
}

// NewGemini creates a Gemini classifier.
func NewGemini(cfg GeminiConfig) *Gemini {
	return &Gemini{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		fetch:  &http.Client{Timeout: cfg.Timeout},
	}
}

func analysisTool() *genai.Tool {
	props := make(map[string]*genai.Schema, len(resultFields))
	for _, f := range resultFields {
		s := &genai.Schema{Description: f.description}
		switch f.kind {
		case "integer":
			s.Type = genai.TypeInteger
		case "boolean":
			s.Type = genai.TypeBoolean
		default:
			s.Type = genai.TypeString
		}
		if !f.required {
			s.Nullable = true
		}
		props[f.name] = s
	}
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name:        ToolName,
			Description: toolDescription,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   requiredFields(),
			},
		}},
	}
}

// Analyze fetches each photo and asks Gemini for the structured assessment.
func (g *Gemini) Analyze(ctx context.Context, req Request) (*Result, error) {
	if len(req.Photos) == 0 {
		return nil, NewError(KindUnknown, MsgNoPhotos, nil)
	}
	if strings.TrimSpace(g.apiKey) == "" {
		return nil, NewError(KindUnknown, MsgNotConfigured, nil)
	}

	parts := []genai.Part{genai.Text(UserText(req.Photos))}
	for _, p := range req.Photos {
		data, format, err := g.fetchImage(ctx, p.URL)
		if err != nil {
			return nil, NewError(KindUpload, "Failed to read "+p.Angle+" photo", err)
		}
		parts = append(parts, genai.ImageData(format, data))
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, NewError(KindUnknown, MsgAnalysisFailed, fmt.Errorf("failed to create gemini client: %w", err))
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(SystemPrompt(req.Previous))}}
	model.Tools = []*genai.Tool{analysisTool()}
	model.ToolConfig = &genai.ToolConfig{
		FunctionCallingConfig: &genai.FunctionCallingConfig{
			Mode:                 genai.FunctionCallingAny,
			AllowedFunctionNames: []string{ToolName},
		},
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, mapGeminiError(err)
	}
	return resultFromResponse(resp)
}

func resultFromResponse(resp *genai.GenerateContentResponse) (*Result, error) {
	if resp == nil {
		return nil, NewError(KindUnknown, MsgNoStructuredResult, nil)
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			call, ok := part.(genai.FunctionCall)
			if !ok || call.Name != ToolName {
				continue
			}
			args, err := json.Marshal(call.Args)
			if err != nil {
				return nil, NewError(KindUnknown, MsgNoStructuredResult, err)
			}
			return DecodeResult(args)
		}
	}
	return nil, NewError(KindUnknown, MsgNoStructuredResult, nil)
}

func (g *Gemini) fetchImage(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := g.fetch.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch photo: status=%d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("fetch photo: %w", err)
	}
	if len(data) > maxPhotoBytes {
		return nil, "", fmt.Errorf("fetch photo: larger than %d bytes", maxPhotoBytes)
	}

	format := "jpeg"
	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "image/") {
		format = strings.TrimPrefix(strings.SplitN(ct, ";", 2)[0], "image/")
	}
	return data, format, nil
}

// httpCoder is implemented by gax apierror.APIError.
type httpCoder interface {
	HTTPCode() int
}

func mapGeminiError(err error) error {
	code := 0
	var gerr *googleapi.Error
	var coder httpCoder
	switch {
	case errors.As(err, &gerr):
		code = gerr.Code
	case errors.As(err, &coder):
		code = coder.HTTPCode()
	}

	switch code {
	case http.StatusTooManyRequests:
		return NewError(KindRateLimit, MsgRateLimit, err)
	case http.StatusPaymentRequired:
		return NewError(KindCredits, MsgCreditsExhausted, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return NewError(KindAuth, MsgUnauthorized, err)
	default:
		return NewError(KindUnknown, MsgAnalysisFailed, err)
	}
}
