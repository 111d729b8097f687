package ingestion

import (
	"context"
	"encoding/json"

	"classroom-ai-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const defaultTopic = "INGEST_CONTENT"

// ProcessFunc runs one job to a terminal state. It must handle its own
// failure reporting; the queue only guarantees it is called once per job.
type ProcessFunc func(ctx context.Context, job *Job)

// Queue is the single entry point into the pipeline. Enqueue is
// fire-and-forget; exactly one worker goroutine consumes jobs strictly in
// FIFO order, so at most one job's pipeline is in flight at the top level.
// The queue lives in memory only: jobs enqueued but not finished are lost on
// process crash, leaving their records at "processing".
type Queue struct {
	pubSub *gochannel.GoChannel
	topic  string
	log    logger.ILogger
}

func NewQueue(log logger.ILogger) *Queue {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			// Large buffer so Enqueue never blocks the request path.
			OutputChannelBuffer: 1024,
		},
		watermill.NopLogger{},
	)
	return &Queue{
		pubSub: pubSub,
		topic:  defaultTopic,
		log:    log,
	}
}

// Enqueue appends a job and returns immediately. It only fails once the
// queue has been closed.
func (q *Queue) Enqueue(ctx context.Context, job *Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := q.pubSub.Publish(q.topic, msg); err != nil {
		return err
	}

	q.log.Info("queue", "Job enqueued", map[string]interface{}{
		"content_id": job.ContentId.String(),
		"kind":       string(job.Kind),
	})
	return nil
}

// Run starts the single worker goroutine. A job that panics or fails is
// logged and skipped; the loop itself never stops until ctx is cancelled or
// the queue is closed.
func (q *Queue) Run(ctx context.Context, process ProcessFunc) error {
	messages, err := q.pubSub.Subscribe(ctx, q.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			q.handle(ctx, msg, process)
		}
	}()
	return nil
}

func (q *Queue) handle(ctx context.Context, msg *message.Message, process ProcessFunc) {
	// Ack regardless of outcome: there is no retry, the pipeline owns the
	// terminal status.
	defer msg.Ack()
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("queue", "Worker recovered from panic", map[string]interface{}{
				"panic": r,
			})
		}
	}()

	var job Job
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		q.log.Error("queue", "Failed to unmarshal job", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	process(ctx, &job)
}

func (q *Queue) Close() error {
	return q.pubSub.Close()
}
