// Package mail renders account emails and hands them to a delivery transport
// (SendGrid in production, the log in development).
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/dmitrijs2005/addressbook/internal/server/config"
)

//go:embed templates/*
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt"))
)

// Message is a rendered email ready for delivery.
type Message struct {
	ToAddress string
	ToName    string
	Subject   string
	Text      string
	HTML      string
}

// Transport delivers a rendered Message.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
}

// Mailer composes verification and password reset emails.
type Mailer struct {
	transport            Transport
	publicURL            string
	verificationValidFor time.Duration
	resetValidFor        time.Duration
}

func NewMailer(transport Transport, cfg *config.Config) *Mailer {
	return &Mailer{
		transport:            transport,
		publicURL:            strings.TrimRight(cfg.PublicURL, "/"),
		verificationValidFor: cfg.VerificationTokenValidityDuration,
		resetValidFor:        cfg.ResetTokenValidityDuration,
	}
}

type templateData struct {
	Name     string
	Link     string
	ValidFor string
}

func (m *Mailer) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	link := m.publicURL + "/auth/verify/" + url.PathEscape(token)
	msg, err := render("verify_email", "Confirm your email", to, name, templateData{
		Name:     name,
		Link:     link,
		ValidFor: humanDuration(m.verificationValidFor),
	})
	if err != nil {
		return err
	}
	return m.transport.Send(ctx, msg)
}

func (m *Mailer) SendPasswordResetEmail(ctx context.Context, to, name, token string) error {
	link := m.publicURL + "/auth/password-reset?token=" + url.QueryEscape(token)
	msg, err := render("password_reset", "Reset your password", to, name, templateData{
		Name:     name,
		Link:     link,
		ValidFor: humanDuration(m.resetValidFor),
	})
	if err != nil {
		return err
	}
	return m.transport.Send(ctx, msg)
}

func render(name, subject, to, toName string, data templateData) (*Message, error) {
	if data.Name == "" {
		data.Name = "there"
	}

	var html, text bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&html, name+".html", data); err != nil {
		return nil, fmt.Errorf("render %s html: %w", name, err)
	}
	if err := textTemplates.ExecuteTemplate(&text, name+".txt", data); err != nil {
		return nil, fmt.Errorf("render %s text: %w", name, err)
	}

	return &Message{
		ToAddress: to,
		ToName:    toName,
		Subject:   subject,
		Text:      text.String(),
		HTML:      html.String(),
	}, nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a limited time"
	case d%(24*time.Hour) == 0:
		n := int(d / (24 * time.Hour))
		if n == 1 {
			return "24 hours"
		}
		return fmt.Sprintf("%d days", n)
	case d%time.Hour == 0:
		n := int(d / time.Hour)
		if n == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", n)
	default:
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
}
