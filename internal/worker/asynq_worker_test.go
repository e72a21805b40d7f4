package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bookstall/internal/queue"
	"github.com/bookstall/internal/service"

	"github.com/hibiken/asynq"
)

type fakeDeliverer struct {
	confirmations []queue.OrderNotificationPayload
	alerts        []queue.OrderNotificationPayload
	statuses      []queue.OrderStatusEmailPayload
	contacts      []queue.ContactMessagePayload
	resets        []queue.PasswordResetEmailPayload
	err           error
}

func (f *fakeDeliverer) DeliverOrderConfirmation(payload queue.OrderNotificationPayload) error {
	f.confirmations = append(f.confirmations, payload)
	return f.err
}

func (f *fakeDeliverer) DeliverOrderAdminAlert(payload queue.OrderNotificationPayload) error {
	f.alerts = append(f.alerts, payload)
	return f.err
}

func (f *fakeDeliverer) DeliverOrderStatus(payload queue.OrderStatusEmailPayload) error {
	f.statuses = append(f.statuses, payload)
	return f.err
}

func (f *fakeDeliverer) DeliverContactMessage(payload queue.ContactMessagePayload) error {
	f.contacts = append(f.contacts, payload)
	return f.err
}

func (f *fakeDeliverer) DeliverPasswordResetCode(payload queue.PasswordResetEmailPayload) error {
	f.resets = append(f.resets, payload)
	return f.err
}

type fakeGenerator struct {
	calls [][2]int
	err   error
}

func (f *fakeGenerator) GenerateAllMonthlyReports(month, year int) (int, error) {
	f.calls = append(f.calls, [2]int{month, year})
	return 1, f.err
}

func newTask(t *testing.T, taskType string, payload interface{}) *asynq.Task {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	return asynq.NewTask(taskType, body)
}

func TestConsumerDeliversOrderNotifications(t *testing.T) {
	deliverer := &fakeDeliverer{}
	consumer := &Consumer{Notifications: deliverer}
	ctx := context.Background()

	placed := queue.OrderNotificationPayload{OrderID: 9, CustomerEmail: "ann@example.com", Total: "25.00"}
	if err := consumer.handleOrderConfirmation(ctx, newTask(t, queue.TaskOrderConfirmationEmail, placed)); err != nil {
		t.Fatalf("confirmation failed: %v", err)
	}
	if err := consumer.handleOrderAdminAlert(ctx, newTask(t, queue.TaskOrderAdminAlert, placed)); err != nil {
		t.Fatalf("admin alert failed: %v", err)
	}
	status := queue.OrderStatusEmailPayload{OrderID: 9, Status: "accepted", CustomerEmail: "ann@example.com"}
	if err := consumer.handleOrderStatusEmail(ctx, newTask(t, queue.TaskOrderStatusEmail, status)); err != nil {
		t.Fatalf("status email failed: %v", err)
	}

	if len(deliverer.confirmations) != 1 || deliverer.confirmations[0].Total != "25.00" {
		t.Fatalf("unexpected confirmations: %+v", deliverer.confirmations)
	}
	if len(deliverer.alerts) != 1 {
		t.Fatalf("expected one admin alert, got %d", len(deliverer.alerts))
	}
	if len(deliverer.statuses) != 1 || deliverer.statuses[0].Status != "accepted" {
		t.Fatalf("unexpected statuses: %+v", deliverer.statuses)
	}
}

func TestConsumerSkipsIncompletePayloads(t *testing.T) {
	deliverer := &fakeDeliverer{}
	consumer := &Consumer{Notifications: deliverer}
	ctx := context.Background()

	if err := consumer.handleOrderConfirmation(ctx, newTask(t, queue.TaskOrderConfirmationEmail, queue.OrderNotificationPayload{OrderID: 3})); err != nil {
		t.Fatalf("missing email should be skipped, got %v", err)
	}
	if err := consumer.handleContactMessage(ctx, newTask(t, queue.TaskContactMessage, queue.ContactMessagePayload{Username: "ann"})); err != nil {
		t.Fatalf("empty message should be skipped, got %v", err)
	}
	if len(deliverer.confirmations) != 0 || len(deliverer.contacts) != 0 {
		t.Fatalf("nothing should have been delivered")
	}

	if err := consumer.handleOrderStatusEmail(ctx, asynq.NewTask(queue.TaskOrderStatusEmail, []byte("{bad"))); err == nil {
		t.Fatalf("malformed payload should return error")
	}
}

func TestConsumerReturnsDeliveryErrorForRetry(t *testing.T) {
	deliverer := &fakeDeliverer{err: errors.New("smtp down")}
	consumer := &Consumer{Notifications: deliverer}

	payload := queue.ContactMessagePayload{Username: "ann", Email: "ann@example.com", Message: "hello"}
	if err := consumer.handleContactMessage(context.Background(), newTask(t, queue.TaskContactMessage, payload)); err == nil {
		t.Fatalf("delivery failure should be returned for retry")
	}
}

func TestConsumerDeliversPasswordResetCode(t *testing.T) {
	deliverer := &fakeDeliverer{}
	consumer := &Consumer{Notifications: deliverer}
	ctx := context.Background()

	payload := queue.PasswordResetEmailPayload{Email: "ann@example.com", Username: "ann", Code: "123456", ExpireMinutes: 60}
	if err := consumer.handlePasswordResetEmail(ctx, newTask(t, queue.TaskPasswordResetEmail, payload)); err != nil {
		t.Fatalf("password reset delivery failed: %v", err)
	}
	if len(deliverer.resets) != 1 || deliverer.resets[0].Code != "123456" {
		t.Fatalf("unexpected resets: %+v", deliverer.resets)
	}

	if err := consumer.handlePasswordResetEmail(ctx, newTask(t, queue.TaskPasswordResetEmail, queue.PasswordResetEmailPayload{Email: "ann@example.com"})); err != nil {
		t.Fatalf("empty code should be skipped, got %v", err)
	}
	if len(deliverer.resets) != 1 {
		t.Fatalf("empty code should not be delivered")
	}
}

func TestConsumerMonthlyReports(t *testing.T) {
	generator := &fakeGenerator{}
	consumer := &Consumer{Reports: generator}

	task := newTask(t, queue.TaskMonthlyReports, queue.MonthlyReportsPayload{Month: 9, Year: 2026})
	if err := consumer.handleMonthlyReports(context.Background(), task); err != nil {
		t.Fatalf("monthly reports failed: %v", err)
	}
	if len(generator.calls) != 1 || generator.calls[0] != [2]int{9, 2026} {
		t.Fatalf("unexpected generator calls: %+v", generator.calls)
	}

	generator.err = service.ErrReportPeriodInvalid
	if err := consumer.handleMonthlyReports(context.Background(), task); err != nil {
		t.Fatalf("invalid period should not be retried, got %v", err)
	}
}

func TestMonthlySchedulerTriggersOncePerPeriod(t *testing.T) {
	var triggered [][2]int
	scheduler := NewMonthlyScheduler(0, func(month, year int) error {
		triggered = append(triggered, [2]int{month, year})
		return nil
	})
	if scheduler.interval != defaultMonthlyCheckInterval {
		t.Fatalf("default interval want %v got %v", defaultMonthlyCheckInterval, scheduler.interval)
	}

	current := time.Date(2026, time.January, 15, 3, 0, 0, 0, time.UTC)
	scheduler.now = func() time.Time { return current }
	if scheduler.Tick() {
		t.Fatalf("should not trigger mid-month")
	}

	current = time.Date(2026, time.February, 1, 0, 30, 0, 0, time.UTC)
	if !scheduler.Tick() {
		t.Fatalf("should trigger on the first day of the month")
	}
	current = current.Add(2 * time.Hour)
	if scheduler.Tick() {
		t.Fatalf("should not trigger twice for the same period")
	}
	if len(triggered) != 1 || triggered[0] != [2]int{1, 2026} {
		t.Fatalf("unexpected triggers: %+v", triggered)
	}

	current = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !scheduler.Tick() {
		t.Fatalf("january should trigger for the previous december")
	}
	if triggered[1] != [2]int{12, 2025} {
		t.Fatalf("year rollover want 12/2025 got %v", triggered[1])
	}
}

func TestMonthlySchedulerRetriesAfterFailure(t *testing.T) {
	attempts := 0
	scheduler := NewMonthlyScheduler(5, func(month, year int) error {
		attempts++
		if attempts == 1 {
			return errors.New("redis unavailable")
		}
		return nil
	})
	scheduler.now = func() time.Time { return time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC) }

	if scheduler.Tick() {
		t.Fatalf("failed trigger should not be recorded")
	}
	if !scheduler.Tick() {
		t.Fatalf("next tick should retry the same period")
	}
	if attempts != 2 {
		t.Fatalf("attempts want 2 got %d", attempts)
	}
}

func TestDirectTrigger(t *testing.T) {
	generator := &fakeGenerator{}
	if err := DirectTrigger(generator)(4, 2026); err != nil {
		t.Fatalf("direct trigger failed: %v", err)
	}
	if len(generator.calls) != 1 {
		t.Fatalf("generator should be called once")
	}
}
