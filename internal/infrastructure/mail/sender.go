package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/storefront-api/internal/config"
	"github.com/storefront-api/internal/pkg/logger"
)

// Message is a rendered email ready for delivery.
type Message struct {
	From    string // overrides the configured sender address when set
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers messages over SMTP.
type Sender struct {
	client *gomail.Client
	from   string
	log    *zap.Logger
}

// NewSender builds an SMTP client from cfg. Authentication is only enabled
// when both username and password are set.
func NewSender(cfg *config.Config) (*Sender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.SMTP.Port),
		gomail.WithTimeout(30 * time.Second),
	}
	if cfg.SMTP.Username != "" && cfg.SMTP.Password != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.SMTP.Username),
			gomail.WithPassword(cfg.SMTP.Password),
		)
	}
	if cfg.SMTP.TLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}

	client, err := gomail.NewClient(cfg.SMTP.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}
	return &Sender{client: client, from: cfg.EmailFrom, log: logger.WithModule("mail")}, nil
}

func (s *Sender) Send(ctx context.Context, m Message) error {
	if m.To == "" {
		return errors.New("mail: recipient required")
	}

	from := s.from
	if m.From != "" {
		from = m.From
	}
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject(m.Subject)

	switch {
	case m.Text != "" && m.HTML != "":
		msg.SetBodyString(gomail.TypeTextPlain, m.Text)
		msg.AddAlternativeString(gomail.TypeTextHTML, m.HTML)
	case m.HTML != "":
		msg.SetBodyString(gomail.TypeTextHTML, m.HTML)
	default:
		msg.SetBodyString(gomail.TypeTextPlain, m.Text)
	}

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	s.log.Info("email sent", zap.String("to", m.To))
	return nil
}
