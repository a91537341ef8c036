package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/haidang/taskhive/backend/internal/config"
	"github.com/haidang/taskhive/backend/pkg/logger"
	"github.com/hibiken/asynq"
)

const (
	TaskTypeInvitationMail = "mail:invitation"
)

// InvitationMail is the payload for one invitation notification.
type InvitationMail struct {
	InvitationID  uint   `json:"invitation_id"`
	ReceiverEmail string `json:"receiver_email"`
	ProjectName   string `json:"project_name"`
	SenderName    string `json:"sender_name"`
	Role          string `json:"role"`
	Token         string `json:"token"`
	ExpiresInDays int    `json:"expires_in_days"`
	Resend        bool   `json:"resend"`
}

// MailQueue defines the interface for invitation mail delivery.
type MailQueue interface {
	// Enqueue schedules a mail for delivery
	Enqueue(mail *InvitationMail) error
	// IsAsync returns true if the queue delivers via Redis workers
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// Global mail queue instance
var (
	globalMailQueue MailQueue
	mailQueueOnce   sync.Once
)

// InitMailQueue initializes the global mail queue based on config. With
// Redis enabled and reachable, delivery runs through asynq workers; in
// every other case mails are sent inline from a goroutine.
func InitMailQueue(cfg *config.Config) MailQueue {
	mailQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncMailQueue(&cfg.Redis)
			if err != nil {
				logger.Infof("[MailQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalMailQueue = NewSyncMailQueue()
			} else {
				logger.Infof("[MailQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalMailQueue = queue
			}
		} else {
			logger.Infof("[MailQueue] Sync queue initialized (Redis disabled)")
			globalMailQueue = NewSyncMailQueue()
		}
	})
	return globalMailQueue
}

// GetMailQueue returns the global mail queue instance.
func GetMailQueue() MailQueue {
	return globalMailQueue
}

// AsyncMailQueue implements MailQueue using asynq (Redis-based).
type AsyncMailQueue struct {
	client *asynq.Client
}

// NewAsyncMailQueue creates a new Redis-backed queue after verifying the
// connection.
func NewAsyncMailQueue(cfg *config.RedisConfig) (*AsyncMailQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncMailQueue{client: client}, nil
}

func (q *AsyncMailQueue) Enqueue(mail *InvitationMail) error {
	payload, err := json.Marshal(mail)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeInvitationMail, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Infof("[AsyncMailQueue] Mail enqueued: id=%s, queue=%s", info.ID, info.Queue)
	return nil
}

func (q *AsyncMailQueue) IsAsync() bool {
	return true
}

func (q *AsyncMailQueue) Close() error {
	return q.client.Close()
}

// SyncMailQueue implements MailQueue with inline delivery (no Redis).
type SyncMailQueue struct {
	sender func(context.Context, *InvitationMail) error
}

func NewSyncMailQueue() *SyncMailQueue {
	return &SyncMailQueue{}
}

// SetSender sets the function that delivers mails inline.
func (q *SyncMailQueue) SetSender(sender func(context.Context, *InvitationMail) error) {
	q.sender = sender
}

// Enqueue delivers the mail from a goroutine so the request does not wait
// on SMTP.
func (q *SyncMailQueue) Enqueue(mail *InvitationMail) error {
	if q.sender == nil {
		logger.Infof("[SyncMailQueue] Warning: no sender set, mail will be dropped")
		return nil
	}

	go func() {
		ctx := context.Background()
		if err := q.sender(ctx, mail); err != nil {
			logger.Infof("[SyncMailQueue] Mail delivery failed: %v", err)
		}
	}()

	return nil
}

func (q *SyncMailQueue) IsAsync() bool {
	return false
}

func (q *SyncMailQueue) Close() error {
	return nil
}

// MailWorker consumes invitation mails from the async queue.
type MailWorker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	sender  func(context.Context, *InvitationMail) error
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

// NewMailWorker creates a worker, or nil when Redis is disabled.
func NewMailWorker(cfg *config.RedisConfig) *MailWorker {
	if !cfg.Enabled {
		return nil
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Infof("[MailWorker] Error processing task %s: %v", task.Type(), err)
			}),
		},
	)

	return &MailWorker{
		server: server,
		mux:    asynq.NewServeMux(),
	}
}

func (w *MailWorker) SetSender(sender func(context.Context, *InvitationMail) error) {
	w.sender = sender
}

// Start begins consuming mails.
func (w *MailWorker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.mux.HandleFunc(TaskTypeInvitationMail, w.handleInvitationMail)

	w.running = true
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		logger.Infof("[MailWorker] Starting async worker...")
		if err := w.server.Run(w.mux); err != nil {
			logger.Infof("[MailWorker] Server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the worker.
func (w *MailWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	logger.Infof("[MailWorker] Shutting down...")
	w.server.Shutdown()
	w.running = false
	w.wg.Wait()
	logger.Infof("[MailWorker] Shutdown complete")
}

func (w *MailWorker) handleInvitationMail(ctx context.Context, t *asynq.Task) error {
	var mail InvitationMail
	if err := json.Unmarshal(t.Payload(), &mail); err != nil {
		logger.Infof("[MailWorker] Failed to unmarshal mail: %v", err)
		return err
	}

	logger.Infof("[MailWorker] Delivering invitation mail: invitation_id=%d, to=%s",
		mail.InvitationID, mail.ReceiverEmail)

	if w.sender == nil {
		logger.Infof("[MailWorker] Warning: no sender set")
		return nil
	}

	return w.sender(ctx, &mail)
}
