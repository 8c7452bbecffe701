package scheduler

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

type testSchedulerConfig struct {
	url   string
	queue string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.url }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return c.queue }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected error for missing redis url")
	}
}

func TestClientEnqueuesClaimNotification(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{url: "redis://" + srv.Addr(), queue: "commissions"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	err = client.EnqueueClaimNotification(context.Background(), ClaimNotificationPayload{
		CommissionID: "7e0b1f10-0f1d-4c9a-b6cf-1a2b3c4d5e6f",
		AgentEmail:   "agent@pj.example",
		AgentName:    "Sam Agent",
		StudentName:  "Li Wei",
		SchoolName:   "Auckland Institute",
		Success:      true,
		DealName:     "Li Wei - Auckland Institute",
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if !srv.Exists("asynq:{commissions}:pending") {
		t.Fatal("task was not enqueued on the commissions queue")
	}
}

func TestClaimNotificationTaskRoundTrip(t *testing.T) {
	payload := ClaimNotificationPayload{
		CommissionID: "c-1",
		AgentEmail:   "agent@pj.example",
		AgentName:    "Sam Agent",
		StudentName:  "Li Wei",
		SchoolName:   "Auckland Institute",
		Success:      false,
		Reason:       "No matching deal",
	}

	task, err := NewClaimNotificationTask(payload)
	if err != nil {
		t.Fatalf("NewClaimNotificationTask: %v", err)
	}
	if task.Type() != TaskClaimNotification {
		t.Fatalf("unexpected task type %q", task.Type())
	}

	parsed, err := ParseClaimNotificationPayload(task)
	if err != nil {
		t.Fatalf("ParseClaimNotificationPayload: %v", err)
	}
	if parsed != payload {
		t.Fatalf("payload mismatch: %+v != %+v", parsed, payload)
	}
}
