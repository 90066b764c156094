// Package service holds background jobs and outbound integrations that
// sit behind the HTTP handlers
package service

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
)

// Mailer delivers one-time passcodes over SMTP
type Mailer struct {
	Host     string
	Port     int
	Sender   string
	Password string
}

func NewMailer() *Mailer {
	return &Mailer{
		Host:     viper.GetString("mail.host"),
		Port:     viper.GetInt("mail.port"),
		Sender:   viper.GetString("mail.sender"),
		Password: viper.GetString("mail.password"),
	}
}

// SendPasscode mails a sign-in code. Failures here surface to the caller
// as a delivery error, the passcode row must not outlive a failed send
func (m *Mailer) SendPasscode(sendTo, code string) error {
	if sendTo == m.Sender {
		return errors.New("invalid email address")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.Sender)
	msg.SetHeader("To", sendTo)
	msg.SetHeader("Subject", "Your StoreIt sign-in code")
	msg.SetBody("text/html", fmt.Sprintf(
		"Your one-time sign-in code is <b>%v</b>.<br><br>It expires in 15 minutes. If you didn't request it you can ignore this mail.", code))

	d := gomail.NewDialer(m.Host, m.Port, m.Sender, m.Password)

	if err := d.DialAndSend(msg); err != nil {
		return err
	}

	return nil
}
