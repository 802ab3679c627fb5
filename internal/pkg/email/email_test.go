package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type reminderData struct {
	Name       string
	LastScore  int
	LastDate   string
	CaptureURL string
}

func TestSendGridRequest(t *testing.T) {
	var got sendGridRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewSendGridClient(SendGridConfig{APIKey: "sg-key", FromEmail: "hello@hairtrack.test", FromName: "HairTrack", BaseURL: srv.URL})
	err := client.Send(context.Background(), &Message{
		To: "sam@example.com", ToName: "Sam", Subject: "Hi", HTMLContent: "<p>hi</p>", TextContent: "hi",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if auth != "Bearer sg-key" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if got.From.Email != "hello@hairtrack.test" || got.Personalizations[0].To[0].Email != "sam@example.com" {
		t.Fatalf("unexpected request %+v", got)
	}
	if len(got.Content) != 2 || got.Content[0].Type != "text/plain" || got.Content[1].Type != "text/html" {
		t.Fatalf("unexpected content order %+v", got.Content)
	}
}

func TestSendGridErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewSendGridClient(SendGridConfig{APIKey: "bad", BaseURL: srv.URL})
	if err := client.Send(context.Background(), &Message{To: "a@b.c"}); err == nil {
		t.Fatal("expected error for 401")
	}
}

func TestNewSenderWithoutKeyLogs(t *testing.T) {
	if _, ok := NewSender(SendGridConfig{}).(LogSender); !ok {
		t.Fatal("expected LogSender without API key")
	}
	if _, ok := NewSender(SendGridConfig{APIKey: "k"}).(*SendGridClient); !ok {
		t.Fatal("expected SendGrid client with API key")
	}
}

func TestRenderWeeklyReminder(t *testing.T) {
	svc, err := NewService(LogSender{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	msg, err := svc.Render("sam@example.com", "Sam", TemplateWeeklyReminder, "Weekly check-in", reminderData{
		Name: "Sam", LastScore: 70, LastDate: "Jan 8, 2024", CaptureURL: "https://app.test/capture",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"HairTrack", "Hi Sam", "70/100", "https://app.test/capture"} {
		if !strings.Contains(msg.HTMLContent, want) {
			t.Fatalf("html missing %q", want)
		}
	}
	if !strings.Contains(msg.TextContent, "overall score 70/100") {
		t.Fatalf("unexpected text part %q", msg.TextContent)
	}

	msg, err = svc.Render("new@example.com", "", TemplateWeeklyReminder, "Weekly check-in", reminderData{CaptureURL: "https://app.test/capture"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(msg.HTMLContent, "Hi there") || !strings.Contains(msg.HTMLContent, "first analysis") {
		t.Fatalf("unexpected first-time body")
	}

	if _, err := svc.Render("a@b.c", "", "missing", "x", nil); err == nil {
		t.Fatal("expected unknown template error")
	}
}
