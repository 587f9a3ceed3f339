// mailer — исходящая почта сервиса: magic-link подтверждения email и
// уведомления о событиях вокруг вопросов. Отправка всегда fire-and-forget:
// ошибка логируется и проглатывается, на исход бизнес-операции не влияет.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	logctx "github.com/the-dramaturgy/dramaturgy-service/pkg/log"
)

// Message — письмо в адрес одного получателя.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer — минимальный контракт отправки почты.
type Mailer interface {
	// Send синхронно отправляет письмо.
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer отправляет через net/smtp (PLAIN auth, если заданы креды).
type SMTPMailer struct {
	addr     string
	from     string
	username string
	password string
}

// NewSMTP создаёт SMTP-отправитель. addr — host:port.
func NewSMTP(addr, from, username, password string) *SMTPMailer {
	return &SMTPMailer{addr: addr, from: from, username: username, password: password}
}

// Send отправляет письмо; дедлайн берётся из ctx через обёртку SendAsync.
func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	const op = "mailer.SMTPMailer.Send"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)

	var auth smtp.Auth
	if m.username != "" {
		host := m.addr
		if i := strings.IndexByte(host, ':'); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", m.username, m.password, host)
	}

	if err := smtp.SendMail(m.addr, auth, m.from, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// LogMailer — заглушка для local-окружения и тестов: письмо только логируется.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	logctx.From(ctx).Info("mail_skipped",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}

// SendAsync отправляет письмо в фоне с собственным дедлайном.
// Контекст запроса не наследуется: завершение HTTP-запроса не должно
// обрывать доставку. Ошибка логируется и не возвращается.
func SendAsync(ctx context.Context, m Mailer, msg Message) {
	lg := logctx.From(ctx)

	go func() {
		sendCtx, cancel := context.WithTimeout(logctx.Into(context.Background(), lg), 15*time.Second)
		defer cancel()

		if err := m.Send(sendCtx, msg); err != nil {
			lg.Warn("mail_send_failed",
				slog.String("to", msg.To),
				slog.String("subject", msg.Subject),
				slog.String("err", err.Error()),
			)
		}
	}()
}
