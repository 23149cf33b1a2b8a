package mailer

import (
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer mengirim email transaksional lewat SendGrid.
// API key dan alamat pengirim diberikan saat konstruksi.
type Mailer struct {
	client *sendgrid.Client
	from   string
}

func NewMailer(apiKey, from string) *Mailer {
	return &Mailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
	}
}

func (m *Mailer) buildMessage(toEmail, toName, subject, body string) *mail.SGMailV3 {
	from := mail.NewEmail("Task Manager", m.from)
	to := mail.NewEmail(toName, toEmail)
	return mail.NewSingleEmail(from, subject, to, body, body)
}

func (m *Mailer) send(toEmail, toName, subject, body string) error {
	message := m.buildMessage(toEmail, toName, subject, body)
	resp, err := m.client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return errors.New("sendgrid rejected the message")
	}
	return nil
}

func welcomeBody(name string) string {
	return fmt.Sprintf("Welcome to the app, %s. Let me know how you get along with the app.", name)
}

func cancelationBody(name string) string {
	return fmt.Sprintf("%s, your profile has been canceled. Please let us know why you canceled and if there was anything we could have done to keep you.", name)
}

// SendWelcomeEmail dikirim setelah registrasi berhasil.
func (m *Mailer) SendWelcomeEmail(email, name string) error {
	return m.send(email, name, "Thanks for joining in!", welcomeBody(name))
}

// SendCancelationEmail dikirim setelah akun dihapus.
func (m *Mailer) SendCancelationEmail(email, name string) error {
	return m.send(email, name, "Sorry to see you go!", cancelationBody(name))
}
