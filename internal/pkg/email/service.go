package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	texttemplate "text/template"
)

// Template names
const (
	TemplateWeeklyReminder = "weekly_reminder"
)

// Service renders templates into messages for a Sender
type Service struct {
	sender       Sender
	baseTemplate *template.Template
	templates    map[string]*template.Template
	texts        map[string]*texttemplate.Template
}

// NewService creates email service
func NewService(sender Sender) (*Service, error) {
	base, err := template.New("base").Parse(BaseTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse base template: %w", err)
	}
	s := &Service{
		sender:       sender,
		baseTemplate: base,
		templates:    make(map[string]*template.Template),
		texts:        make(map[string]*texttemplate.Template),
	}

	htmlTemplates := map[string]string{
		TemplateWeeklyReminder: WeeklyReminderTemplate,
	}
	for name, content := range htmlTemplates {
		tmpl, err := template.New(name).Parse(content)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		s.templates[name] = tmpl
	}

	textTemplates := map[string]string{
		TemplateWeeklyReminder: WeeklyReminderText,
	}
	for name, content := range textTemplates {
		tmpl, err := texttemplate.New(name).Parse(content)
		if err != nil {
			return nil, fmt.Errorf("parse text template %s: %w", name, err)
		}
		s.texts[name] = tmpl
	}
	return s, nil
}

// Render builds the message for templateName without sending it.
func (s *Service) Render(to, toName, templateName, subject string, data interface{}) (*Message, error) {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return nil, fmt.Errorf("template %s not found", templateName)
	}

	var content bytes.Buffer
	if err := tmpl.Execute(&content, data); err != nil {
		return nil, err
	}
	var html bytes.Buffer
	if err := s.baseTemplate.Execute(&html, map[string]interface{}{
		"Content": template.HTML(content.String()),
	}); err != nil {
		return nil, err
	}

	msg := &Message{To: to, ToName: toName, Subject: subject, HTMLContent: html.String()}
	if text, ok := s.texts[templateName]; ok {
		var buf bytes.Buffer
		if err := text.Execute(&buf, data); err != nil {
			return nil, err
		}
		msg.TextContent = buf.String()
	}
	return msg, nil
}

// Send renders and sends synchronously
func (s *Service) Send(ctx context.Context, to, toName, templateName, subject string, data interface{}) error {
	msg, err := s.Render(to, toName, templateName, subject, data)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, msg)
}
