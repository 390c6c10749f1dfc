package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jmbondo/kitanda-backend/internal/modules/order"
	"go.uber.org/zap"
)

// Mailer sends transactional mail over SMTP. Without an SMTP host
// configured it logs the message instead, so local development works
// without a mail account.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	logger   *zap.Logger
}

func New(host, port, username, password, from string, logger *zap.Logger) *Mailer {
	return &Mailer{host: host, port: port, username: username, password: password, from: from, logger: logger}
}

// SendOrderConfirmation mails the payment reference for a charged order.
func (m *Mailer) SendOrderConfirmation(to string, o *order.Order) error {
	subject := fmt.Sprintf("Confirmação de encomenda %s", o.MerchantTransactionID)

	var b strings.Builder
	fmt.Fprintf(&b, "A sua encomenda foi registada.\n\n")
	fmt.Fprintf(&b, "Referência de pagamento: %s\n", o.PaymentReference)
	fmt.Fprintf(&b, "Entidade: %s\n", o.PaymentEntity)
	fmt.Fprintf(&b, "Total: %.2f AOA\n\n", o.TotalAmount)
	for _, item := range o.Items {
		fmt.Fprintf(&b, "  %dx %s (%s) - %.2f AOA\n", item.Quantity, item.Name, item.SKU, item.LineTotal)
	}

	return m.send(to, subject, b.String())
}

func (m *Mailer) send(to, subject, body string) error {
	if m.host == "" {
		m.logger.Info("smtp not configured, logging mail instead",
			zap.String("to", to), zap.String("subject", subject))
		return nil
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body))
	addr := m.host + ":" + m.port
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}
