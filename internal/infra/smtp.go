package infra

import (
	"fmt"
	"net/smtp"

	"caixapos/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends alert mail through an SMTP relay, guarded by the circuit
// breaker so a dead relay fails fast.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	cb       *CircuitBreaker
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		cb:       NewCircuitBreaker(DefaultCBConfig()),
	}
}

// BreakerState exposes the breaker state for the health endpoint.
func (m *Mailer) BreakerState() CBState { return m.cb.State() }

// Send delivers a plain-text message. Returns ErrCircuitOpen without touching
// the network while the breaker is open.
func (m *Mailer) Send(to, subject, body string) error {
	return m.cb.Execute(func() error {
		e := email.NewEmail()
		e.From = m.user
		e.To = []string{to}
		e.Subject = subject
		e.Text = []byte(body)

		auth := smtp.PlainAuth("", m.user, m.password, m.host)
		return e.Send(m.addr, auth)
	})
}
