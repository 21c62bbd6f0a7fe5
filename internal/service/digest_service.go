package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log"
	"net/mail"
	"strings"
	"text/template"
	"time"

	"calmcompanion/internal/models"
	"calmcompanion/internal/repository"
)

var ErrInvalidRecipient = errors.New("invalid recipient address")

// DigestSummary aggregates a profile's activity log
type DigestSummary struct {
	ProfileID   string                      `json:"profileId"`
	ProfileName string                      `json:"profileName"`
	Total       int                         `json:"total"`
	ByType      map[models.ActivityType]int `json:"byType"`
	Latest      int64                       `json:"latest"` // epoch millis, 0 when empty
	Recent      models.ActivityLogList      `json:"recent"`
}

// LatestTime is Latest as a time, zero when the log is empty
func (d DigestSummary) LatestTime() time.Time {
	if d.Latest == 0 {
		return time.Time{}
	}
	return time.UnixMilli(d.Latest)
}

const digestRecentEntries = 10

// Summarize counts entries per type and finds the newest timestamp
func Summarize(logs models.ActivityLogList) DigestSummary {
	summary := DigestSummary{
		Total:  len(logs),
		ByType: make(map[models.ActivityType]int),
	}
	for _, entry := range logs {
		summary.ByType[entry.Type]++
		if entry.Timestamp > summary.Latest {
			summary.Latest = entry.Timestamp
		}
	}
	summary.Recent = logs[:min(len(logs), digestRecentEntries)]
	return summary
}

var digestText = template.Must(template.New("digest.txt").Parse(`Activity summary for {{.ProfileName}}

Total activities: {{.Total}}
{{range $type, $count := .ByType}}- {{$type}}: {{$count}}
{{end}}{{if .Latest}}Last activity: {{.LatestTime.Format "2006-01-02 15:04"}}
{{end}}
Recent:
{{range .Recent}}- {{.Type}} {{.Detail}}
{{end}}
---
This is an automated email from Calm Companion. Please do not reply.
`))

var digestHTML = htmltemplate.Must(htmltemplate.New("digest.html").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<h1>Activity summary for {{.ProfileName}}</h1>
	<p>Total activities: <strong>{{.Total}}</strong></p>
	<ul>{{range $type, $count := .ByType}}<li>{{$type}}: {{$count}}</li>{{end}}</ul>
	{{if .Latest}}<p>Last activity: {{.LatestTime.Format "2006-01-02 15:04"}}</p>{{end}}
	<h2>Recent</h2>
	<ul>{{range .Recent}}<li>{{.Type}} {{.Detail}}</li>{{end}}</ul>
	<p style="font-size: 12px; color: #666;">This is an automated email from Calm Companion. Please do not reply.</p>
</body>
</html>
`))

// DigestService emails caregivers a summary of the active profile's activity
type DigestService struct {
	cs       *repository.CollectionStore
	activity *repository.ActivityRepository
	profiles *repository.ProfileRepository
	mailer   Mailer
}

// NewDigestService creates a new digest service
func NewDigestService(cs *repository.CollectionStore, activity *repository.ActivityRepository, profiles *repository.ProfileRepository, mailer Mailer) *DigestService {
	return &DigestService{cs: cs, activity: activity, profiles: profiles, mailer: mailer}
}

// Build summarizes the active profile's log
func (s *DigestService) Build(ctx context.Context) DigestSummary {
	summary := Summarize(s.activity.GetLogs(ctx))
	summary.ProfileID = s.cs.ResolvedProfileID()
	summary.ProfileName = summary.ProfileID
	if p := s.profiles.GetProfile(ctx, summary.ProfileID); p != nil {
		summary.ProfileName = p.Name
	}
	return summary
}

// Send renders and mails the digest. It reports whether an email was handed
// to the mailer; a disabled mailer skips the send without error.
func (s *DigestService) Send(ctx context.Context, to string) (DigestSummary, bool, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(to))
	if err != nil {
		return DigestSummary{}, false, fmt.Errorf("%w: %w", ErrInvalidRecipient, err)
	}

	summary := s.Build(ctx)
	if !s.mailer.Enabled() {
		log.Printf("Skipping activity digest for %s: mailer disabled", summary.ProfileID)
		return summary, false, nil
	}

	var text, html bytes.Buffer
	if err := digestText.Execute(&text, summary); err != nil {
		return summary, false, fmt.Errorf("failed to render digest: %w", err)
	}
	if err := digestHTML.Execute(&html, summary); err != nil {
		return summary, false, fmt.Errorf("failed to render digest: %w", err)
	}

	subject := fmt.Sprintf("Calm Companion activity summary: %s", summary.ProfileName)
	if err := s.mailer.Send(ctx, addr.Address, subject, html.String(), text.String()); err != nil {
		return summary, false, err
	}
	return summary, true, nil
}
