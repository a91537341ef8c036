package services

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestTaskTypeInvitationMail_Constant(t *testing.T) {
	if TaskTypeInvitationMail != "mail:invitation" {
		t.Errorf("TaskTypeInvitationMail = %q, expected %q", TaskTypeInvitationMail, "mail:invitation")
	}
}

func TestSyncMailQueue_New(t *testing.T) {
	queue := NewSyncMailQueue()
	if queue == nil {
		t.Error("NewSyncMailQueue should not return nil")
	}
}

func TestSyncMailQueue_IsAsync(t *testing.T) {
	queue := NewSyncMailQueue()
	if queue.IsAsync() {
		t.Error("SyncMailQueue.IsAsync() should return false")
	}
}

func TestSyncMailQueue_Close(t *testing.T) {
	queue := NewSyncMailQueue()
	if err := queue.Close(); err != nil {
		t.Errorf("SyncMailQueue.Close() should return nil, got %v", err)
	}
}

func TestSyncMailQueue_EnqueueWithoutSender(t *testing.T) {
	queue := NewSyncMailQueue()
	mail := &InvitationMail{
		InvitationID:  1,
		ReceiverEmail: "new@example.com",
	}

	if err := queue.Enqueue(mail); err != nil {
		t.Errorf("Enqueue without sender should not error, got %v", err)
	}
}

func TestSyncMailQueue_DeliversThroughSender(t *testing.T) {
	queue := NewSyncMailQueue()

	var mu sync.Mutex
	var got *InvitationMail
	done := make(chan struct{})
	queue.SetSender(func(ctx context.Context, mail *InvitationMail) error {
		mu.Lock()
		got = mail
		mu.Unlock()
		close(done)
		return nil
	})

	mail := &InvitationMail{
		InvitationID:  7,
		ReceiverEmail: "new@example.com",
		ProjectName:   "alpha",
		SenderName:    "owner",
		Role:          "MEMBER",
		Token:         "tok",
	}
	if err := queue.Enqueue(mail); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sender was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if got.InvitationID != 7 || got.ReceiverEmail != "new@example.com" {
		t.Errorf("sender received %+v", got)
	}
}

func TestAsyncMailQueue_IsAsync(t *testing.T) {
	queue := &AsyncMailQueue{}
	if !queue.IsAsync() {
		t.Error("AsyncMailQueue.IsAsync() should return true")
	}
}
