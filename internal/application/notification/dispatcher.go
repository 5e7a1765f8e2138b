package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/storefront-api/internal/infrastructure/mail"
	"github.com/storefront-api/internal/pkg/logger"
	"github.com/storefront-api/internal/pkg/metrics"
)

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, m mail.Message) error
}

// DispatcherConfig is fixed at construction; nothing is read from the
// environment when a message is sent.
type DispatcherConfig struct {
	FrontendURL string
	From        string
	SiteName    string
	Subject     string
	TokenTTL    time.Duration
}

// Dispatcher delivers verification links. Without a Sender it logs the link
// and reports success so the flow can be completed locally.
type Dispatcher struct {
	cfg    DispatcherConfig
	sender Sender
	log    *zap.Logger
}

func NewDispatcher(cfg DispatcherConfig, sender Sender) *Dispatcher {
	if cfg.SiteName == "" {
		cfg.SiteName = "FashionHub"
	}
	if cfg.Subject == "" {
		cfg.Subject = "Email Verification - " + cfg.SiteName
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &Dispatcher{cfg: cfg, sender: sender, log: logger.WithModule("notification")}
}

// VerificationURL builds the link the user follows to confirm the address.
func (d *Dispatcher) VerificationURL(email, token string) string {
	return fmt.Sprintf("%s/verify-email?token=%s&email=%s",
		d.cfg.FrontendURL, url.QueryEscape(token), url.QueryEscape(email))
}

// Send reports whether the verification message was handed off. Provider
// errors are logged and reported as false; they are never returned.
func (d *Dispatcher) Send(ctx context.Context, email, name, token string) bool {
	link := d.VerificationURL(email, token)

	if d.sender == nil {
		d.log.Info("verification email (no mail provider configured)",
			zap.String("to", email),
			zap.String("url", link),
		)
		metrics.VerificationDispatch.WithLabelValues("fallback").Inc()
		return true
	}

	html, text, err := d.render(name, link)
	if err != nil {
		d.log.Error("render verification email", zap.Error(err))
		metrics.VerificationDispatch.WithLabelValues("failed").Inc()
		return false
	}

	err = d.sender.Send(ctx, mail.Message{
		From:    d.cfg.From,
		To:      email,
		Subject: d.cfg.Subject,
		HTML:    html,
		Text:    text,
	})
	if err != nil {
		d.log.Error("send verification email", zap.String("to", email), zap.Error(err))
		metrics.VerificationDispatch.WithLabelValues("failed").Inc()
		return false
	}
	metrics.VerificationDispatch.WithLabelValues("sent").Inc()
	return true
}

type emailData struct {
	SiteName string
	Name     string
	Link     string
	Validity string
}

func (d *Dispatcher) render(name, link string) (string, string, error) {
	data := emailData{
		SiteName: d.cfg.SiteName,
		Name:     name,
		Link:     link,
		Validity: humanDuration(d.cfg.TokenTTL),
	}
	var html bytes.Buffer
	if err := verificationHTML.Execute(&html, data); err != nil {
		return "", "", err
	}
	text := fmt.Sprintf("Hi %s,\n\nPlease verify your email address for %s by opening this link:\n\n%s\n\nThis link will expire in %s.\nIf you didn't create this account, please ignore this email.\n",
		name, d.cfg.SiteName, link, data.Validity)
	return html.String(), text, nil
}

func humanDuration(d time.Duration) string {
	if d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	return d.String()
}

var verificationHTML = template.Must(template.New("verification").Parse(`<div style="font-family: 'Manrope', sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #0f172a; color: white; padding: 2rem; border-radius: 12px 12px 0 0; text-align: center;">
    <h1 style="margin: 0; font-size: 1.8rem;">Welcome to {{.SiteName}}</h1>
  </div>
  <div style="background: #f8fafc; padding: 2rem; border-radius: 0 0 12px 12px;">
    <p style="color: #0f172a; margin: 0 0 1rem 0;">Hi <strong>{{.Name}}</strong>,</p>
    <p style="color: #6b7280; line-height: 1.6;">Thank you for creating an account! Please verify your email address by clicking below.</p>
    <div style="text-align: center; margin: 2rem 0;">
      <a href="{{.Link}}" style="background: #0f172a; color: white; padding: 14px 32px; border-radius: 12px; text-decoration: none; font-weight: 700; display: inline-block;">Verify Email Address</a>
    </div>
    <p style="color: #6b7280; font-size: 0.95rem;">Or copy and paste this link:</p>
    <p style="background: #e2e8f0; padding: 1rem; border-radius: 8px; word-break: break-all; font-size: 0.85rem;">{{.Link}}</p>
    <p style="color: #6b7280; font-size: 0.9rem;">This link will expire in {{.Validity}}.</p>
    <hr style="border: none; border-top: 1px solid #e2e8f0; margin: 2rem 0;" />
    <p style="color: #6b7280; font-size: 0.85rem; margin: 0;">If you didn't create this account, please ignore this email.</p>
  </div>
</div>
`))
