package reminder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hairtrack/hairtrack-api/internal/domain/analysis"
	"github.com/hairtrack/hairtrack-api/internal/domain/history"
	"github.com/hairtrack/hairtrack-api/internal/pkg/email"
)

const subject = "Your weekly HairTrack check-in"

// Mailer renders and sends a template. *email.Service satisfies it.
type Mailer interface {
	Send(ctx context.Context, to, toName, templateName, subject string, data interface{}) error
}

// Data is the template data of a weekly reminder.
type Data struct {
	Name       string
	LastScore  int
	LastDate   string
	CaptureURL string
}

// Summary reports one reminder run.
type Summary struct {
	OptedIn int      `json:"opted_in"`
	Due     []string `json:"due"`
	Sent    int      `json:"sent"`
	Failed  []string `json:"failed,omitempty"`
}

// Service emails opted-in users who have no analysis in the current week.
type Service struct {
	repo       Repository
	sessions   analysis.Repository
	mailer     Mailer
	captureURL string
	now        func() time.Time
}

// NewService creates reminder service. appURL is the web client base URL.
func NewService(repo Repository, sessions analysis.Repository, mailer Mailer, appURL string) *Service {
	return &Service{
		repo:       repo,
		sessions:   sessions,
		mailer:     mailer,
		captureURL: strings.TrimRight(appURL, "/") + "/analysis",
		now:        time.Now,
	}
}

// Run sends this week's reminders. With dryRun nothing is sent.
func (s *Service) Run(ctx context.Context, dryRun bool) (*Summary, error) {
	recipients, err := s.repo.ListOptedIn(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reminder recipients: %w", err)
	}

	weekStart := history.WeekStart(s.now())
	summary := &Summary{OptedIn: len(recipients), Due: []string{}}

	for _, rc := range recipients {
		latest, err := s.sessions.GetLatest(ctx, rc.UserID)
		if err != nil {
			return summary, fmt.Errorf("latest session for %s: %w", rc.UserID, err)
		}
		if latest != nil && !latest.CreatedAt.UTC().Before(weekStart) {
			continue
		}
		summary.Due = append(summary.Due, rc.Email)
		if dryRun {
			continue
		}

		data := Data{Name: rc.FullName.String, CaptureURL: s.captureURL}
		if latest != nil {
			data.LastScore = latest.OverallScore
			data.LastDate = latest.CreatedAt.UTC().Format("Jan 2, 2006")
		}
		if err := s.mailer.Send(ctx, rc.Email, rc.FullName.String, email.TemplateWeeklyReminder, subject, data); err != nil {
			log.Error().Err(err).Str("user_id", rc.UserID.String()).Msg("Failed to send weekly reminder")
			summary.Failed = append(summary.Failed, rc.Email)
			continue
		}
		summary.Sent++
	}

	log.Info().Int("opted_in", summary.OptedIn).Int("due", len(summary.Due)).Int("sent", summary.Sent).Bool("dry_run", dryRun).Msg("Weekly reminders processed")
	return summary, nil
}
