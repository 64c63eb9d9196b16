package services

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"receiving-portal/config"
	"receiving-portal/models"
)

// Mailer sends a confirmation mail after a GRPO is posted. Optional: with no
// SMTP host configured NewMailerFromConfig returns nil and nothing is sent.
type Mailer struct {
	Host     string
	Port     int
	Sender   string
	Password string
	To       []string
}

func NewMailerFromConfig() *Mailer {
	if config.SMTPHost == "" || config.SMTPSender == "" || len(config.NotifyEmails) == 0 {
		return nil
	}
	return &Mailer{
		Host:     config.SMTPHost,
		Port:     config.SMTPPort,
		Sender:   config.SMTPSender,
		Password: config.SMTPPassword,
		To:       config.NotifyEmails,
	}
}

func (m *Mailer) SendReceiptPosted(username string, receipt *models.ReceiptRequest, grpoDocEntry int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>Goods receipt posted</h3>")
	fmt.Fprintf(&b, "<p>User <b>%s</b> posted GRPO <b>%d</b> against PO %d, warehouse %s.</p>",
		username, grpoDocEntry, receipt.DocEntry, receipt.WhsCode)
	if receipt.SupplierRef != "" {
		fmt.Fprintf(&b, "<p>Supplier ref: %s</p>", receipt.SupplierRef)
	}
	b.WriteString("<table border='1' cellpadding='4'><tr><th>Line</th><th>Quantity</th></tr>")
	for _, l := range receipt.Lines {
		fmt.Fprintf(&b, "<tr><td>%d</td><td>%g</td></tr>", l.LineNum, l.Quantity)
	}
	b.WriteString("</table>")

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.Sender)
	msg.SetHeader("To", m.To...)
	msg.SetHeader("Subject", fmt.Sprintf("GRPO %d posted (PO %d)", grpoDocEntry, receipt.DocEntry))
	msg.SetBody("text/html", b.String())

	dialer := gomail.NewDialer(m.Host, m.Port, m.Sender, m.Password)
	return dialer.DialAndSend(msg)
}
