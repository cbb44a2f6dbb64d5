package mailer

import (
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"agriedge/internal/dto"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Mailer struct {
	cfg  Config
	log  *zerolog.Logger
	send sendFunc
}

func New(cfg Config, log *zerolog.Logger) *Mailer {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &Mailer{cfg: cfg, log: log, send: smtp.SendMail}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool {
	return m.cfg.Host != ""
}

// SendRegistrationEmail confirms a registration in the language it was submitted in.
func (m *Mailer) SendRegistrationEmail(msg dto.RegistrationCreatedMessage) error {
	if !m.Enabled() {
		m.log.Debug().Str("email", msg.Email).Msg("smtp not configured, confirmation skipped")
		return nil
	}

	subject, body := confirmation(msg)
	raw := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s",
		m.cfg.From, msg.Email, mime.QEncoding.Encode("utf-8", subject), body,
	)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	if err := m.send(addr, auth, m.cfg.From, []string{msg.Email}, []byte(raw)); err != nil {
		m.log.Warn().Err(err).Str("email", msg.Email).Msg("failed to send confirmation email")
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info().Str("email", msg.Email).Str("registration_id", msg.RegistrationID).Msg("confirmation email sent")
	return nil
}

func confirmation(msg dto.RegistrationCreatedMessage) (subject, body string) {
	interests := strings.Join(msg.Interests, ", ")
	if msg.Lang == "fr" {
		subject = "Votre inscription AgriEdge est confirmée"
		body = fmt.Sprintf("Bonjour %s,\n\nNous avons bien reçu votre inscription.\nSolutions d'intérêt : %s\n\nÀ bientôt !\nL'équipe AgriEdge", msg.FullName, interests)
		return subject, body
	}
	subject = "Your AgriEdge registration is confirmed"
	body = fmt.Sprintf("Hello %s,\n\nWe have received your registration.\nInterests: %s\n\nSee you soon!\nThe AgriEdge team", msg.FullName, interests)
	return subject, body
}
