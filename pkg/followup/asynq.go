package followup

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jordanlanch/ironoak/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// TaskFollowUpCall is the asynq task type for a follow-up call
const TaskFollowUpCall = "followup.call"

// NewFollowUpTask encodes job as an asynq task
func NewFollowUpTask(job Job) (*asynq.Task, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowUpCall, data), nil
}

// ParseFollowUpTask decodes the job carried by task
func ParseFollowUpTask(task *asynq.Task) (Job, error) {
	var job Job
	if err := json.Unmarshal(task.Payload(), &job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// RedisClientOpt converts a redis:// or rediss:// URL into asynq options
func RedisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, fmt.Errorf("failed parsing redis URL: %w", err)
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		tlsConfig = opt.TLSConfig.Clone()
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}

// AsynqScheduler enqueues jobs into Redis for the worker to process at FireAt
type AsynqScheduler struct {
	client *asynq.Client
	queue  string
}

// NewAsynqScheduler creates a scheduler writing to queue
func NewAsynqScheduler(opt asynq.RedisClientOpt, queue string) *AsynqScheduler {
	if queue == "" {
		queue = "default"
	}
	return &AsynqScheduler{client: asynq.NewClient(opt), queue: queue}
}

// Schedule enqueues job to run at job.FireAt. The job id doubles as the
// task id so a duplicate enqueue is rejected by Redis.
func (s *AsynqScheduler) Schedule(ctx context.Context, job Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	task, err := NewFollowUpTask(job)
	if err != nil {
		return err
	}

	_, err = s.client.EnqueueContext(ctx, task,
		asynq.ProcessAt(job.FireAt),
		asynq.Queue(s.queue),
		asynq.TaskID(job.ID),
		asynq.MaxRetry(3),
	)
	return err
}

// Close releases the Redis connection
func (s *AsynqScheduler) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Worker processes follow-up tasks
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	runner Runner
	log    logger.Logger
}

// NewWorker creates a worker consuming queue
func NewWorker(opt asynq.RedisClientOpt, queue string, runner Runner, log logger.Logger) *Worker {
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		runner: runner,
		log:    log,
	}
	w.mux.HandleFunc(TaskFollowUpCall, w.handleFollowUpCall)
	return w
}

// Run processes tasks until ctx is cancelled
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("failed to start follow-up worker: %w", err)
	}
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}

func (w *Worker) handleFollowUpCall(ctx context.Context, task *asynq.Task) error {
	job, err := ParseFollowUpTask(task)
	if err != nil {
		w.log.Error("invalid follow-up task payload", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return w.runner.RunFollowUp(ctx, job)
}
