package mailer

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendBudgetAlert(toEmail string, alert BudgetAlert) error
}

// BudgetAlert carries amounts already formatted for display.
type BudgetAlert struct {
	CompanyName     string
	Limit           string
	CurrentSpending string
}

// sender is satisfied by *gomail.Dialer.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer      sender
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

func (s *emailService) SendBudgetAlert(toEmail string, alert BudgetAlert) error {
	m := s.budgetAlertMessage(toEmail, alert)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send budget alert to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Budget alert sent to %s\n", toEmail)
	return nil
}

func (s *emailService) budgetAlertMessage(toEmail string, alert BudgetAlert) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Monthly AI spending limit reached")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Spending limit reached for %s</h2>
			<p>Your assistants have used <strong>$%s</strong> of your <strong>$%s</strong> monthly limit.</p>
			<p>Assistants will stay silent until the limit is raised or the next month starts.</p>
		</div>
	`, html.EscapeString(alert.CompanyName), html.EscapeString(alert.CurrentSpending), html.EscapeString(alert.Limit))

	m.SetBody("text/html", body)
	return m
}
