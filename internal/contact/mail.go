package contact

import (
	"context"
	"crypto/tls"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const fromDisplayName = "Galoya Arrack Website"

// MailerConfig は SMTP 配送の設定です。
type MailerConfig struct {
	Host     string
	Port     int
	Username string // 送信元アドレスにも使います
	Password string
	Timeout  time.Duration
	To       string
	CC       []string
}

// Mailer は問い合わせを SMTP でメール送信する Notifier です。
type Mailer struct {
	cfg    MailerConfig
	logger *zap.Logger
	now    func() time.Time
	send   func(ctx context.Context, msg *gomail.Msg) error
}

// NewMailer は Mailer を作成します。
func NewMailer(cfg MailerConfig, logger *zap.Logger) *Mailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Mailer{cfg: cfg, logger: logger, now: time.Now}
	m.send = m.sendSMTP
	return m
}

// Notify は1通だけ送信します。失敗しても再送はしません。
func (m *Mailer) Notify(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	composed, err := m.Compose(msg)
	if err != nil {
		return err
	}
	if err := m.send(ctx, composed); err != nil {
		return fmt.Errorf("failed to send contact email: %w", err)
	}
	m.logger.Info("contact email sent", zap.String("replyTo", msg.Email), zap.Int("recipients", 1+len(m.cfg.CC)))
	return nil
}

// Compose はテキストとHTMLの multipart/alternative メッセージを組み立てます。
func (m *Mailer) Compose(msg Message) (*gomail.Msg, error) {
	now := m.now()
	data := mailData{Message: msg, Year: now.Year()}

	out := gomail.NewMsg()
	if err := out.FromFormat(fromDisplayName, m.cfg.Username); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := out.To(m.cfg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	if len(m.cfg.CC) > 0 {
		if err := out.Cc(m.cfg.CC...); err != nil {
			return nil, fmt.Errorf("invalid cc address: %w", err)
		}
	}
	if err := out.ReplyTo(msg.Email); err != nil {
		return nil, fmt.Errorf("invalid reply-to address: %w", err)
	}
	out.Subject("New Contact Form: " + headerSafe(msg.Name))
	out.SetDateWithValue(now)
	out.SetMessageIDWithValue(uuid.NewString() + "@" + m.cfg.Host)

	if err := out.SetBodyTextTemplate(textBody, data); err != nil {
		return nil, fmt.Errorf("failed to render text body: %w", err)
	}
	if err := out.AddAlternativeHTMLTemplate(htmlBody, data); err != nil {
		return nil, fmt.Errorf("failed to render html body: %w", err)
	}
	return out, nil
}

// sendSMTP は STARTTLS（サーバーが対応していれば）で送信します。ユーザー名があれば PLAIN 認証します。
func (m *Mailer) sendSMTP(ctx context.Context, msg *gomail.Msg) error {
	opts := []gomail.Option{
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithPort(m.cfg.Port),
		gomail.WithTLSConfig(&tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}),
		gomail.WithTimeout(m.cfg.Timeout),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}
	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// headerSafe はヘッダーインジェクションを防ぐため改行を取り除きます。
func headerSafe(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == '\r' || r == '\n' }), " ")
}

type mailData struct {
	Message
	Year int
}

var textBody = texttemplate.Must(texttemplate.New("text").Parse(`New Contact Form Submission - Galoya Arrack Website

Name: {{.Name}}
Email: {{.Email}}
{{if .Phone}}Phone: {{.Phone}}
{{end}}
Message:
{{.Message.Message}}

---
This email was sent from the Galoya Arrack contact form
`))

var htmlBody = htmltemplate.Must(htmltemplate.New("html").Funcs(htmltemplate.FuncMap{
	"lines": func(s string) []string { return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
  .container { max-width: 600px; margin: 0 auto; padding: 20px; }
  .header { background: linear-gradient(135deg, #DAA520, #B8860B); color: white; padding: 30px; text-align: center; }
  .content { background: #f9f9f9; padding: 30px; }
  .field { margin-bottom: 20px; }
  .label { font-weight: bold; color: #DAA520; margin-bottom: 5px; }
  .value { padding: 10px; background: white; border-left: 3px solid #DAA520; }
  .footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
</style>
</head>
<body>
<div class="container">
  <div class="header">
    <h1>New Contact Form Submission</h1>
    <p>Galoya Arrack Website</p>
  </div>
  <div class="content">
    <div class="field"><div class="label">Name:</div><div class="value">{{.Name}}</div></div>
    <div class="field"><div class="label">Email:</div><div class="value">{{.Email}}</div></div>
    {{- if .Phone}}
    <div class="field"><div class="label">Phone:</div><div class="value">{{.Phone}}</div></div>
    {{- end}}
    <div class="field"><div class="label">Message:</div><div class="value">{{range $i, $l := lines .Message.Message}}{{if $i}}<br>{{end}}{{$l}}{{end}}</div></div>
  </div>
  <div class="footer">
    <p>This email was sent from the Galoya Arrack contact form</p>
    <p>&copy; {{.Year}} Galoya Plantations, Sri Lanka</p>
  </div>
</div>
</body>
</html>
`))
