package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var testPhotos = []PhotoURL{
	{URL: "https://storage.test/u1/1_top.jpg?sig=a", Angle: "top"},
	{URL: "https://storage.test/u1/1_crown.jpg?sig=b", Angle: "crown"},
}

func toolResponse(args string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{
			"message": map[string]any{
				"tool_calls": []any{map[string]any{
					"type":     "function",
					"function": map[string]any{"name": ToolName, "arguments": args},
				}},
			},
		}},
	})
	return string(b)
}

func newTestGateway(t *testing.T, h http.HandlerFunc) *Gateway {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewGateway(GatewayConfig{BaseURL: server.URL, APIKey: "test-key", Model: "google/gemini-2.5-flash", Timeout: time.Second})
}

func TestGatewayAnalyzeSuccess(t *testing.T) {
	var captured chatRequest
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		raw := map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&raw)
		b, _ := json.Marshal(raw)
		_ = json.Unmarshal(b, &captured)
		_, _ = w.Write([]byte(toolResponse(`{"overall_score":72,"density_score":70,"hairline_score":80,"crown_score":65,"ai_summary":"Looking steady.","alert_triggered":false,"comparison_notes":"Slight gain at the crown."}`)))
	})

	res, err := g.Analyze(context.Background(), Request{
		Photos:   testPhotos,
		Previous: &Scores{Overall: 65, Density: 60, Hairline: 70, Crown: 55},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.OverallScore != 72 || res.CrownScore != 65 || res.AlertTriggered {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.ComparisonNotes == nil || *res.ComparisonNotes != "Slight gain at the crown." {
		t.Fatalf("expected comparison notes, got %v", res.ComparisonNotes)
	}

	if captured.ToolChoice.Function.Name != ToolName {
		t.Fatalf("expected forced tool %s, got %q", ToolName, captured.ToolChoice.Function.Name)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(captured.Messages))
	}
	system, _ := captured.Messages[0].Content.(string)
	if !strings.Contains(system, "Overall: 65/100, Density: 60/100, Hairline: 70/100, Crown: 55/100") {
		t.Fatalf("expected comparison context in system prompt, got %q", system)
	}
	parts, _ := captured.Messages[1].Content.([]any)
	if len(parts) != 3 {
		t.Fatalf("expected text and two image parts, got %d", len(parts))
	}
}

func TestGatewayStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		kind   Kind
		msg    string
	}{
		{http.StatusTooManyRequests, KindRateLimit, MsgRateLimit},
		{http.StatusPaymentRequired, KindCredits, MsgCreditsExhausted},
		{http.StatusUnauthorized, KindAuth, MsgUnauthorized},
		{http.StatusInternalServerError, KindUnknown, MsgAnalysisFailed},
		{http.StatusBadGateway, KindUnknown, MsgAnalysisFailed},
	}
	for _, tc := range cases {
		g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte("upstream says no"))
		})
		_, err := g.Analyze(context.Background(), Request{Photos: testPhotos})
		if err == nil {
			t.Fatalf("status %d: expected error", tc.status)
		}
		if KindOf(err) != tc.kind {
			t.Fatalf("status %d: expected kind %s, got %s", tc.status, tc.kind, KindOf(err))
		}
		if MessageOf(err) != tc.msg {
			t.Fatalf("status %d: expected message %q, got %q", tc.status, tc.msg, MessageOf(err))
		}
		if !strings.Contains(err.Error(), "body=upstream says no") {
			t.Fatalf("status %d: expected body in error detail, got %v", tc.status, err)
		}
	}
}

func TestGatewayMissingToolCallIsUnknown(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Your hair looks great!"}}]}`))
	})
	res, err := g.Analyze(context.Background(), Request{Photos: testPhotos})
	if res != nil {
		t.Fatalf("expected no result, got %+v", res)
	}
	if KindOf(err) != KindUnknown || MessageOf(err) != MsgNoStructuredResult {
		t.Fatalf("expected unknown structured-result failure, got %v", err)
	}
}

func TestGatewayRejectsOutOfRangeScores(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(toolResponse(`{"overall_score":140,"density_score":70,"hairline_score":80,"crown_score":65,"ai_summary":"ok","alert_triggered":false}`)))
	})
	res, err := g.Analyze(context.Background(), Request{Photos: testPhotos})
	if res != nil || KindOf(err) != KindUnknown || MessageOf(err) != MsgInvalidResult {
		t.Fatalf("expected invalid result failure, got res=%v err=%v", res, err)
	}
}

func TestGatewayNotConfigured(t *testing.T) {
	g := NewGateway(GatewayConfig{BaseURL: "http://127.0.0.1:1"})
	_, err := g.Analyze(context.Background(), Request{Photos: testPhotos})
	if MessageOf(err) != MsgNotConfigured {
		t.Fatalf("expected not configured, got %v", err)
	}
}

func TestGatewayNetworkErrorClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	g := NewGateway(GatewayConfig{BaseURL: url, APIKey: "k", Timeout: time.Second})
	_, err := g.Analyze(context.Background(), Request{Photos: testPhotos})
	if KindOf(err) != KindUnknown {
		t.Fatalf("expected unknown kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "gateway network error") {
		t.Fatalf("expected network classification, got %v", err)
	}
}

func TestGatewayTimeoutClassified(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	g.http.Timeout = 50 * time.Millisecond
	_, err := g.Analyze(context.Background(), Request{Photos: testPhotos})
	if err == nil || !strings.Contains(err.Error(), "gateway timeout") {
		t.Fatalf("expected timeout classification, got %v", err)
	}
}
