package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"starrail-backend/internal/codes"

	"github.com/jordan-wright/email"
	otelcodes "go.opentelemetry.io/otel/codes"
)

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

// Email mails every redeemed code to a fixed list of recipients.
type Email struct {
	config SmtpConfig
	to     []string
}

func NewEmail(config SmtpConfig, to []string) Email {
	return Email{config: config, to: to}
}

func (e Email) Send(ctx context.Context, rec codes.CodeRecord) error {
	_, span := tracer.Start(ctx, "Email.Send")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Star Rail Codes <%s>", e.config.EmailAddress)
	mail.To = e.to
	mail.Subject = fmt.Sprintf("%s: %s", title, rec.Code)
	mail.Text = []byte(describe(rec))

	addr := fmt.Sprintf("%s:%d", e.config.Server, e.config.Port)
	err := mail.Send(addr, smtp.PlainAuth("", e.config.EmailAddress, e.config.Password, e.config.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to send email")
		return err
	}
	return nil
}

var _ codes.NotifyAPI = Email{}
