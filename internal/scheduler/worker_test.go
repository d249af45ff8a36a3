package scheduler

import (
	"context"
	"errors"
	"testing"

	"sales_visits_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeleter struct {
	deleted []string
	err     error
}

func (f *fakeDeleter) Delete(_ context.Context, name string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.deleted = append(f.deleted, name)
	return true, nil
}

func TestHandleOrphanObjectDelete(t *testing.T) {
	deleter := &fakeDeleter{}
	w := &Worker{deleter: deleter, log: logger.Nop()}

	task, err := NewOrphanObjectTask(OrphanObjectPayload{ObjectName: "photo-abc.jpg", VisitID: "v1", ClientID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, TaskOrphanObjectDelete, task.Type())

	require.NoError(t, w.handleOrphanObjectDelete(context.Background(), task))
	assert.Equal(t, []string{"photo-abc.jpg"}, deleter.deleted)
}

func TestHandleOrphanObjectDeleteRetriesBackendFailures(t *testing.T) {
	deleter := &fakeDeleter{err: errors.New("timeout")}
	w := &Worker{deleter: deleter, log: logger.Nop()}

	task, err := NewOrphanObjectTask(OrphanObjectPayload{ObjectName: "photo-abc.jpg"})
	require.NoError(t, err)

	err = w.handleOrphanObjectDelete(context.Background(), task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleOrphanObjectDeleteSkipsMalformedPayload(t *testing.T) {
	w := &Worker{deleter: &fakeDeleter{}, log: logger.Nop()}

	err := w.handleOrphanObjectDelete(context.Background(), asynq.NewTask(TaskOrphanObjectDelete, []byte(`{}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = w.handleOrphanObjectDelete(context.Background(), asynq.NewTask(TaskOrphanObjectDelete, []byte(`not json`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestNewOrphanObjectTaskRequiresName(t *testing.T) {
	_, err := NewOrphanObjectTask(OrphanObjectPayload{VisitID: "v1"})
	assert.Error(t, err)
}

func TestNilClientScheduleIsNoop(t *testing.T) {
	var c *Client
	assert.NoError(t, c.ScheduleOrphanCleanup(context.Background(), OrphanObjectPayload{ObjectName: "x"}))
	assert.NoError(t, c.Close())
}
