package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	// TaskTypeDeliver は問い合わせメール配送タスクの種別です。
	TaskTypeDeliver = "contact:deliver"
	queueName       = "contact"
)

// Queue は問い合わせを asynq に投入し、ワーカーで配送する Notifier です。
// 重複送信を避けるため、タスクは再試行しません。
type Queue struct {
	client   *asynq.Client
	server   *asynq.Server
	mux      *asynq.ServeMux
	delivery Notifier
	logger   *zap.Logger
}

// NewQueue は Queue を初期化します。delivery はワーカー側で実際に配送する Notifier です。
func NewQueue(redisURL string, delivery Notifier, logger *zap.Logger) (*Queue, error) {
	if delivery == nil {
		return nil, errors.New("delivery notifier is nil")
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 2,
		Queues:      map[string]int{queueName: 1},
		Logger:      logger.Sugar(),
	})
	q := &Queue{
		client:   asynq.NewClient(opt),
		server:   server,
		mux:      asynq.NewServeMux(),
		delivery: delivery,
		logger:   logger,
	}
	q.mux.HandleFunc(TaskTypeDeliver, q.handleDeliver)
	return q, nil
}

// StartWorkers は asynq サーバーをバックグラウンドで起動します。
func (q *Queue) StartWorkers() {
	go func() {
		if err := q.server.Run(q.mux); err != nil && !errors.Is(err, asynq.ErrServerClosed) {
			q.logger.Error("asynq server stopped with error", zap.Error(err))
		}
	}()
}

// Shutdown はサーバーとクライアントを閉じます。
func (q *Queue) Shutdown() error {
	q.server.Shutdown()
	return q.client.Close()
}

// Notify は配送タスクを投入します。投入に失敗した場合はエラーを返します。
func (q *Queue) Notify(ctx context.Context, msg Message) error {
	task, err := NewDeliverTask(msg)
	if err != nil {
		return err
	}
	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue contact message: %w", err)
	}
	q.logger.Info("contact message queued", zap.String("taskId", info.ID))
	return nil
}

// NewDeliverTask は配送タスクを作成します。
func NewDeliverTask(msg Message) (*asynq.Task, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeDeliver, body, asynq.Queue(queueName), asynq.MaxRetry(0)), nil
}

func (q *Queue) handleDeliver(ctx context.Context, task *asynq.Task) error {
	var msg Message
	if err := json.Unmarshal(task.Payload(), &msg); err != nil {
		return fmt.Errorf("invalid contact payload: %v: %w", err, asynq.SkipRetry)
	}
	if err := q.delivery.Notify(ctx, msg); err != nil {
		q.logger.Error("contact delivery failed", zap.String("replyTo", msg.Email), zap.Error(err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return nil
}
