package services

import (
	"fmt"
	"strings"
	"sync"

	"ecopredict/config"
	"ecopredict/models"
	"ecopredict/utils"
	"gopkg.in/gomail.v2"
)

// Notifier уведомляет о результатах оценки
type Notifier interface {
	NotifyEvaluation(entry models.HistoryEntry)
	// Wait блокируется до завершения уже начатых отправок
	Wait()
}

// NoopNotifier используется, когда уведомления отключены
type NoopNotifier struct{}

func (NoopNotifier) NotifyEvaluation(models.HistoryEntry) {}

func (NoopNotifier) Wait() {}

// NotificationService отправляет письмо кредитному отделу,
// когда хотя бы одна запись клиента получила категорию NotSolvent
type NotificationService struct {
	dialer *gomail.Dialer
	from   string
	to     string
	send   func(m *gomail.Message) error
	wg     sync.WaitGroup
}

// NewNotificationService создает новый экземпляр NotificationService.
// При пустом smtp.notify_to возвращает NoopNotifier.
func NewNotificationService(cfg *config.Config) Notifier {
	if cfg.SMTP.NotifyTo == "" {
		return NoopNotifier{}
	}

	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	s := &NotificationService{
		dialer: dialer,
		from:   cfg.SMTP.From,
		to:     cfg.SMTP.NotifyTo,
	}
	s.send = func(m *gomail.Message) error {
		return s.dialer.DialAndSend(m)
	}
	return s
}

// NotifyEvaluation отправляет уведомление в фоне; ошибки только логируются
func (s *NotificationService) NotifyEvaluation(entry models.HistoryEntry) {
	if !entry.HasTier(models.SolvencyTierNotSolvent) {
		return
	}

	m := s.buildMessage(entry)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.send(m); err != nil {
			utils.LogError("send not-solvent notification for %s: %v", entry.ClientID, err)
		}
	}()
}

// Wait ждет отправки всех поставленных уведомлений
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

func (s *NotificationService) buildMessage(entry models.HistoryEntry) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to)
	m.SetHeader("Subject", fmt.Sprintf("Client %s is not solvent", entry.ClientID))
	m.SetBody("text/html", notificationBody(entry))
	return m
}

func notificationBody(entry models.HistoryEntry) string {
	var rows strings.Builder
	for _, r := range entry.Results {
		probability := "n/a"
		if r.RepaymentProbabilityPct != nil {
			probability = fmt.Sprintf("%.2f%%", *r.RepaymentProbabilityPct)
		}
		fmt.Fprintf(&rows, `
			<tr><td>%s</td><td>%.2f</td><td>%.2f</td><td>%.2f%%</td><td>%s</td></tr>`,
			r.SolvencyTier, r.MonthlyPayment, r.MaxAffordableLoan, r.SolvencyRatioPct, probability)
	}

	return fmt.Sprintf(`
		<h2>Solvency alert</h2>
		<p>Client: %s</p>
		<p>Requested amount: %.2f</p>
		<p>Annual rate: %.4f</p>
		<p>Term: %d months</p>
		<p>Date: %s</p>
		<table>
			<tr><th>Tier</th><th>Monthly payment</th><th>Max loan</th><th>Ratio</th><th>Repayment probability</th></tr>%s
		</table>
	`, entry.ClientID, entry.RequestedAmount, entry.AnnualRate, entry.TermMonths,
		entry.Timestamp.Format("02.01.2006 15:04:05"), rows.String())
}
