package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/haidang/taskhive/backend/internal/config"
	"github.com/haidang/taskhive/backend/pkg/logger"
)

// Mailer sends invitation notification emails over SMTP. With mail
// disabled in config every send is a logged no-op, which keeps the
// invitation flow usable in development.
type Mailer struct {
	cfg *config.MailConfig
}

func NewMailer(cfg *config.MailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendInvitation delivers one invitation mail. The accept link embeds the
// invitation token under the configured public base URL.
func (m *Mailer) SendInvitation(ctx context.Context, mail *InvitationMail) error {
	if !m.cfg.Enabled || m.cfg.Host == "" {
		logger.Infof("[Mail] Delivery disabled, skipping invitation mail to %s", mail.ReceiverEmail)
		return nil
	}

	subject := fmt.Sprintf("[TaskHive] %s invited you to join %s", mail.SenderName, mail.ProjectName)
	if mail.Resend {
		subject = fmt.Sprintf("[TaskHive] Reminder: %s invited you to join %s", mail.SenderName, mail.ProjectName)
	}

	body := m.buildInvitationBody(mail)
	return m.send([]string{mail.ReceiverEmail}, subject, body)
}

func (m *Mailer) buildInvitationBody(mail *InvitationMail) string {
	acceptURL := fmt.Sprintf("%s/invitations/accept?token=%s",
		strings.TrimSuffix(m.cfg.BaseURL, "/"), mail.Token)
	expireDays := mail.ExpiresInDays
	if expireDays <= 0 {
		expireDays = 7
	}

	var sb strings.Builder
	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString("<h2>Project Invitation</h2>")
	sb.WriteString(fmt.Sprintf("<p><b>%s</b> has invited you to join <b>%s</b> as <b>%s</b>.</p>",
		mail.SenderName, mail.ProjectName, mail.Role))
	sb.WriteString(fmt.Sprintf("<p><a href=\"%s\" style=\"background: #4f46e5; color: #fff; padding: 10px 20px; border-radius: 4px; text-decoration: none;\">Accept invitation</a></p>", acceptURL))
	sb.WriteString(fmt.Sprintf("<p style=\"color: #888; font-size: 12px;\">This invitation expires in %d days. If you were not expecting it, you can ignore this email.</p>", expireDays))
	sb.WriteString("</body></html>")
	return sb.String()
}

func (m *Mailer) send(to []string, subject, body string) error {
	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, from, to, []byte(message.String())); err != nil {
		logger.Infof("[Mail] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Mail] Sent invitation mail to %v", to)
	return nil
}
