package queue

import (
	"encoding/json"
	"testing"

	"github.com/bookstall/internal/config"
)

func TestDisabledClientSkipsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueOrderConfirmationEmail(OrderNotificationPayload{OrderID: 1}); err != nil {
		t.Fatalf("disabled enqueue should be a no-op, got %v", err)
	}
	if err := client.EnqueueMonthlyReports(MonthlyReportsPayload{Month: 9, Year: 2026}); err != nil {
		t.Fatalf("disabled enqueue should be a no-op, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestOrderConfirmationTaskPayload(t *testing.T) {
	task, err := NewOrderConfirmationEmailTask(OrderNotificationPayload{
		OrderID: 42,
		Lines:   []OrderNotificationLine{{ProductName: "Psalms", Quantity: 2, UnitPrice: "10.00", TotalPrice: "20.00"}},
		Total:   "20.00",
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if task.Type() != TaskOrderConfirmationEmail {
		t.Fatalf("unexpected task type %s", task.Type())
	}
	var decoded OrderNotificationPayload
	if err := json.Unmarshal(task.Payload(), &decoded); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if decoded.OrderID != 42 || len(decoded.Lines) != 1 || decoded.Lines[0].TotalPrice != "20.00" {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380})
	if opt.Addr != "redis:6380" {
		t.Fatalf("unexpected addr %s", opt.Addr)
	}
	if cfg.Concurrency != 10 {
		t.Fatalf("expected default concurrency 10, got %d", cfg.Concurrency)
	}
	if cfg.Queues[CriticalQueue] <= cfg.Queues[DefaultQueue] {
		t.Fatalf("critical queue should outweigh default: %+v", cfg.Queues)
	}
}
