package followup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jordanlanch/ironoak/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowUpTask_RoundTrip(t *testing.T) {
	job := Job{ID: "job-1", LeadID: "lead-1", Phone: "+14035550100", FireAt: time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)}

	task, err := NewFollowUpTask(job)
	require.NoError(t, err)
	assert.Equal(t, TaskFollowUpCall, task.Type())

	parsed, err := ParseFollowUpTask(task)
	require.NoError(t, err)
	assert.Equal(t, job, parsed)
}

func TestWorker_HandleFollowUpCall(t *testing.T) {
	var got Job
	w := &Worker{
		runner: RunnerFunc(func(ctx context.Context, job Job) error {
			got = job
			return nil
		}),
		log: logger.Nop(),
	}

	task, err := NewFollowUpTask(Job{ID: "job-1", LeadID: "lead-1"})
	require.NoError(t, err)

	require.NoError(t, w.handleFollowUpCall(context.Background(), task))
	assert.Equal(t, "lead-1", got.LeadID)

	t.Run("bad payload skips retry", func(t *testing.T) {
		err := w.handleFollowUpCall(context.Background(), asynq.NewTask(TaskFollowUpCall, []byte("{bad")))
		assert.True(t, errors.Is(err, asynq.SkipRetry))
	})
}

func TestRedisClientOpt(t *testing.T) {
	opt, err := RedisClientOpt("redis://:secret@localhost:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 2, opt.DB)
	assert.Nil(t, opt.TLSConfig)

	tlsOpt, err := RedisClientOpt("rediss://localhost:6380")
	require.NoError(t, err)
	assert.NotNil(t, tlsOpt.TLSConfig)

	_, err = RedisClientOpt("://bad")
	assert.Error(t, err)
}
