package http

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readworld/internal/account"
	"github.com/mrlokans/readworld/internal/audit"
	"github.com/mrlokans/readworld/internal/database"
	auditrepo "github.com/mrlokans/readworld/internal/database/audit"
	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/state/statetest"
	"github.com/mrlokans/readworld/internal/tasks"
)

func TestStateController(t *testing.T) {
	app := newTestApp(t)

	t.Run("state", func(t *testing.T) {
		st := decode[entities.UserState](t, app.do(t, http.MethodGet, "/api/state", nil))
		assert.Equal(t, entities.PlanFree, st.Plan)
		assert.Equal(t, "2024-03", st.SavedMonthKey)
	})

	t.Run("state is served without rereading storage", func(t *testing.T) {
		ctx := context.Background()
		key := app.fixture.Store.Key(ctx)
		const external = `{"plan":"premium"}`
		require.NoError(t, app.fixture.Backend.Set(ctx, key, external))

		st := decode[entities.UserState](t, app.do(t, http.MethodGet, "/api/state", nil))
		assert.Equal(t, entities.PlanFree, st.Plan)

		stored, err := app.fixture.Backend.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, external, stored)

		require.NoError(t, app.fixture.Store.Save(ctx))
	})

	t.Run("identity", func(t *testing.T) {
		resp := decode[map[string]string](t, app.do(t, http.MethodGet, "/api/identity", nil))
		assert.Equal(t, statetest.UserID, resp["user_id"])
		assert.Equal(t, "readworld_state_"+statetest.UserID, resp["storage_key"])
	})

	t.Run("achievements", func(t *testing.T) {
		resp := decode[map[string]any](t, app.do(t, http.MethodGet, "/api/achievements", nil))
		assert.Equal(t, float64(0), resp["earned"])
		assert.NotZero(t, resp["total"])
	})

	t.Run("streak", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/streak", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"streak":0`)
	})

	t.Run("notifications drain", func(t *testing.T) {
		app.fixture.Feed.Notify("info", "hello")
		first := decode[map[string][]any](t, app.do(t, http.MethodGet, "/api/notifications", nil))
		assert.Len(t, first["notifications"], 1)
		second := decode[map[string][]any](t, app.do(t, http.MethodGet, "/api/notifications", nil))
		assert.Empty(t, second["notifications"])
	})

	t.Run("activity without a log", func(t *testing.T) {
		assert.Equal(t, http.StatusServiceUnavailable, app.do(t, http.MethodGet, "/api/activity", nil).Code)
	})
}

func TestStateController_Activity(t *testing.T) {
	db, err := database.NewQuietDatabase(filepath.Join(t.TempDir(), "activity.db"))
	require.NoError(t, err)
	defer db.Close()

	service := audit.NewService(auditrepo.NewRepository(db.DB))
	ctx := context.Background()
	require.NoError(t, service.Log(ctx, &entities.AuditEvent{UserID: statetest.UserID, EventType: entities.AuditEventExport, Action: "export"}))
	require.NoError(t, service.Log(ctx, &entities.AuditEvent{UserID: statetest.UserID, EventType: entities.AuditEventSettings, Action: "preferences"}))
	require.NoError(t, service.Log(ctx, &entities.AuditEvent{UserID: "someone-else", EventType: entities.AuditEventExport, Action: "export"}))

	app := newTestApp(t)
	controller := NewStateController(app.fixture.Store, nil, nil, app.fixture.Feed, service)
	router := gin.New()
	router.GET("/api/activity", controller.GetActivity)
	app.router = router

	resp := decode[map[string]any](t, app.do(t, http.MethodGet, "/api/activity", nil))
	assert.Equal(t, float64(2), resp["total_events"])

	resp = decode[map[string]any](t, app.do(t, http.MethodGet, "/api/activity?type=export&limit=500", nil))
	assert.Equal(t, float64(1), resp["total_events"])
	assert.Equal(t, float64(25), resp["limit"])
}

func TestTasksController(t *testing.T) {
	app := newTestApp(t)

	t.Run("queues an export", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/export/annotations", exportRequest{BookIDs: []string{"lotr-1"}})
		require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"task_id":"task-42"`)

		require.Len(t, app.queue.enqueued, 1)
		task, ok := app.queue.enqueued[0].(tasks.ExportAnnotationsTask)
		require.True(t, ok)
		assert.Equal(t, statetest.UserID, task.UserID)
		assert.Equal(t, []string{"lotr-1"}, task.BookIDs)
	})

	t.Run("empty body exports everything", func(t *testing.T) {
		require.Equal(t, http.StatusAccepted, app.do(t, http.MethodPost, "/api/export/annotations", nil).Code)
		task := app.queue.enqueued[len(app.queue.enqueued)-1].(tasks.ExportAnnotationsTask)
		assert.Empty(t, task.BookIDs)
	})

	t.Run("unknown book", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/export/annotations", exportRequest{BookIDs: []string{"ghost"}})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("status", func(t *testing.T) {
		resp := decode[map[string]string](t, app.do(t, http.MethodGet, "/api/tasks/task-42", nil))
		assert.Equal(t, "success", resp["status"])
	})
}

func TestAccountController_Unavailable(t *testing.T) {
	app := newTestApp(t)

	resp := decode[accountResponse](t, app.do(t, http.MethodGet, "/api/account", nil))
	assert.False(t, resp.LoggedIn)
	assert.Equal(t, entities.PlanFree, resp.Plan)

	w := app.do(t, http.MethodPost, "/api/account/login", account.LoginRequest{Email: "not-an-email", Password: "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPost, "/api/account/login", account.LoginRequest{Email: "sam@example.com", Password: "pw"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "account_unavailable", decode[ErrorResponse](t, w).Code)
}
