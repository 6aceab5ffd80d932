package services

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ecopredict/config"
	"ecopredict/models"
	"gopkg.in/gomail.v2"
)

func TestNewNotificationService_DisabledWithoutRecipient(t *testing.T) {
	cfg := &config.Config{}
	if _, ok := NewNotificationService(cfg).(NoopNotifier); !ok {
		t.Error("expected NoopNotifier when smtp.notify_to is empty")
	}
}

func newCapturingNotifier() (*NotificationService, chan *gomail.Message) {
	cfg := &config.Config{}
	cfg.SMTP.Host = "localhost"
	cfg.SMTP.Port = 25
	cfg.SMTP.From = "ecopredict@example.com"
	cfg.SMTP.NotifyTo = "credit@example.com"

	sent := make(chan *gomail.Message, 1)
	s := NewNotificationService(cfg).(*NotificationService)
	s.send = func(m *gomail.Message) error {
		sent <- m
		return nil
	}
	return s, sent
}

func TestNotificationService_SendsForNotSolvent(t *testing.T) {
	s, sent := newCapturingNotifier()

	entry := historyEntry(1)
	entry.Results[0].SolvencyTier = models.SolvencyTierNotSolvent
	entry.Results[0].RepaymentProbabilityPct = nil
	s.NotifyEvaluation(entry)
	s.Wait()

	select {
	case m := <-sent:
		if got := m.GetHeader("To"); len(got) != 1 || got[0] != "credit@example.com" {
			t.Errorf("unexpected recipient %v", got)
		}
		if got := m.GetHeader("Subject"); len(got) != 1 || !strings.Contains(got[0], "N23017007413") {
			t.Errorf("unexpected subject %v", got)
		}
	default:
		t.Fatal("expected the notification to be sent before Wait returns")
	}
}

func TestNotificationService_SkipsSolventEntries(t *testing.T) {
	s, sent := newCapturingNotifier()

	s.NotifyEvaluation(historyEntry(1))
	s.NotifyEvaluation(models.HistoryEntry{ClientID: "UNKNOWN", Message: "no result for client UNKNOWN"})
	s.Wait()

	select {
	case <-sent:
		t.Fatal("no notification expected for solvent or missing clients")
	default:
	}
}

func TestNotificationService_WaitBlocksUntilSent(t *testing.T) {
	s, _ := newCapturingNotifier()
	release := make(chan struct{})
	var delivered atomic.Bool
	s.send = func(m *gomail.Message) error {
		<-release
		delivered.Store(true)
		return nil
	}

	entry := historyEntry(1)
	entry.Results[0].SolvencyTier = models.SolvencyTierNotSolvent
	s.NotifyEvaluation(entry)

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()
	s.Wait()

	if !delivered.Load() {
		t.Error("Wait returned before the notification was delivered")
	}
}

func TestNotificationBody(t *testing.T) {
	entry := historyEntry(1)
	entry.Results[0].SolvencyTier = models.SolvencyTierNotSolvent
	entry.Results = append(entry.Results, models.SolvencyResult{SolvencyTier: models.SolvencyTierNotSolvent})

	body := notificationBody(entry)
	for _, want := range []string{"N23017007413", "NotSolvent", "81.13%", "n/a", "01.03.2024"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
}
