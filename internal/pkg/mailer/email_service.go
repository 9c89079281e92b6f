package mailer

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"retention-flow-be/internal/entity"
)

type IEmailService interface {
	SendInsightDigest(toEmail string, insights []entity.Insight) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)
	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

// SendInsightDigest mails the insights a metrics run surfaced. Called only
// when there is something to report.
func (s *emailService) SendInsightDigest(toEmail string, insights []entity.Insight) error {
	if len(insights) == 0 {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Retention flow digest: %d insight(s)", len(insights)))

	var items strings.Builder
	for _, ins := range insights {
		items.WriteString(fmt.Sprintf(`<li><strong>%s</strong>: %s</li>`, ins.Kind, ins.Message))
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Cancellation Flow Insights</h2>
			<p>The latest metrics run flagged the following:</p>
			<ul>%s</ul>
		</div>
	`, items.String())

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send digest to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Insight digest sent to %s\n", toEmail)
	return nil
}
