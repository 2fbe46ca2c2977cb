package email

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/trainlog/trainlog/internal/config"
	mail "github.com/xhit/go-simple-mail/v2"
)

// NotificationService sends training summaries by email.
type NotificationService struct {
	config *config.EmailConfig
}

// SummaryNotification contains the data for a summary email.
type SummaryNotification struct {
	UserEmail     string
	UserName      string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	TrainingCount int
	Content       string
	AppURL        string
}

// Paragraphs splits the summary into paragraphs for the template.
func (n SummaryNotification) Paragraphs() []string {
	var out []string
	for _, p := range strings.Split(n.Content, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// New creates a new email notification service.
func New(cfg *config.EmailConfig) *NotificationService {
	return &NotificationService{
		config: cfg,
	}
}

// Enabled reports whether emails are sent at all.
func (n *NotificationService) Enabled() bool {
	return n != nil && n.config != nil && n.config.Enabled
}

// SendSummary emails a generated training summary to the user.
func (n *NotificationService) SendSummary(notification SummaryNotification) error {
	if !n.Enabled() {
		log.Debug("Email notifications are disabled, skipping notification")
		return nil
	}

	if notification.UserEmail == "" {
		log.Warn("User email is empty, skipping notification", "user", notification.UserName)
		return nil
	}

	subject := fmt.Sprintf("[Trainlog] Your training summary %s - %s",
		notification.PeriodStart.Format("Jan 2"), notification.PeriodEnd.Format("Jan 2, 2006"))

	body, err := n.generateEmailBody(notification)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return n.sendEmail(notification.UserEmail, subject, body)
}

//go:embed templates/*.html
var templatesFS embed.FS

// generateEmailBody creates the HTML email body.
func (n *NotificationService) generateEmailBody(notification SummaryNotification) (string, error) {
	t, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "summary.html", notification); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// sendEmail sends an email using go-simple-mail library.
func (n *NotificationService) sendEmail(to, subject, body string) error {
	server := mail.NewSMTPClient()
	server.Host = n.config.SMTPHost
	server.Port = n.config.SMTPPort
	server.Username = n.config.Username
	server.Password = n.config.Password

	if n.config.UseSSL {
		server.Encryption = mail.EncryptionSSLTLS
	} else if n.config.UseTLS {
		server.Encryption = mail.EncryptionSTARTTLS
	} else {
		server.Encryption = mail.EncryptionNone
	}

	if n.config.InsecureSkipVerify {
		server.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	smtpClient, err := server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		if closeErr := smtpClient.Close(); closeErr != nil {
			log.Warn("Failed to close SMTP client", "error", closeErr)
		}
	}()

	email := mail.NewMSG()

	fromName := n.config.FromName
	if fromName == "" {
		fromName = "Trainlog"
	}
	email.SetFrom(fmt.Sprintf("%s <%s>", fromName, n.config.FromEmail))
	email.AddTo(to)
	email.SetSubject(subject)
	email.SetBody(mail.TextHTML, body)

	if email.Error != nil {
		return fmt.Errorf("failed to build email: %w", email.Error)
	}

	if err := email.Send(smtpClient); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info("Email notification sent successfully", "to", to, "subject", subject)
	return nil
}
