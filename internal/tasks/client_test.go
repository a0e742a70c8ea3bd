package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := DefaultConfig()
	client, err := NewClient(DBPathFor(filepath.Join(t.TempDir(), "readworld.db")), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestDBPathFor(t *testing.T) {
	assert.Equal(t, "/data/readworld-tasks.db", DBPathFor("/data/readworld.db"))
	assert.Equal(t, "state-tasks", DBPathFor("state"))
}

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := DBPathFor(filepath.Join(tmpDir, "readworld.db"))

	client, err := NewClient(dbPath, DefaultConfig())
	require.NoError(t, err)

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "tasks database should be created")
	assert.NoError(t, client.Close())
}

func TestClientStartStop(t *testing.T) {
	client := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)
	client.Start(ctx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx))
}

func TestStopWithoutStart(t *testing.T) {
	client := newTestClient(t)
	assert.True(t, client.Stop(context.Background()))
}

type echoTask struct {
	Value string `json:"value"`
}

func (t echoTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "echo",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     5 * time.Second,
	}
}

func TestEnqueue(t *testing.T) {
	client := newTestClient(t)

	executed := make(chan string, 1)
	client.Register(backlite.NewQueue(func(ctx context.Context, task echoTask) error {
		executed <- task.Value
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)

	id, err := client.Enqueue(echoTask{Value: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case val := <-executed:
		assert.Equal(t, "hello", val)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "pending", statusString(backlite.TaskStatusPending))
	assert.Equal(t, "running", statusString(backlite.TaskStatusRunning))
	assert.Equal(t, "success", statusString(backlite.TaskStatusSuccess))
	assert.Equal(t, "failure", statusString(backlite.TaskStatusFailure))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 90*24*time.Hour, cfg.AuditRetention)
}

type fakeCleaner struct {
	retention time.Duration
	err       error
}

func (f *fakeCleaner) DeleteOldEvents(_ context.Context, retention time.Duration) (int64, error) {
	f.retention = retention
	return 3, f.err
}

func TestCleanupAuditEvents(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		cfg := CleanupAuditEventsTask{}.Config()
		assert.Equal(t, "cleanup_audit_events", cfg.Name)
		assert.Equal(t, 3, cfg.MaxAttempts)
		assert.NotNil(t, cfg.Retention)
	})

	t.Run("retention in days", func(t *testing.T) {
		assert.Equal(t, 30, NewCleanupAuditEventsTask(30*24*time.Hour).RetentionDays)
		assert.Equal(t, 1, NewCleanupAuditEventsTask(time.Hour).RetentionDays)
	})

	t.Run("passes retention", func(t *testing.T) {
		cleaner := &fakeCleaner{}
		err := CleanupAuditEventsProcessor(cleaner)(context.Background(), CleanupAuditEventsTask{RetentionDays: 7})
		require.NoError(t, err)
		assert.Equal(t, 7*24*time.Hour, cleaner.retention)
	})

	t.Run("defaults to 90 days", func(t *testing.T) {
		cleaner := &fakeCleaner{}
		require.NoError(t, CleanupAuditEventsProcessor(cleaner)(context.Background(), CleanupAuditEventsTask{}))
		assert.Equal(t, 90*24*time.Hour, cleaner.retention)
	})

	t.Run("errors", func(t *testing.T) {
		err := CleanupAuditEventsProcessor(&fakeCleaner{err: errors.New("locked")})(context.Background(), CleanupAuditEventsTask{})
		assert.ErrorContains(t, err, "locked")

		assert.Error(t, CleanupAuditEventsProcessor(nil)(context.Background(), CleanupAuditEventsTask{}))
	})
}
