package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readworld/internal/account"
	"github.com/mrlokans/readworld/internal/achievements"
	"github.com/mrlokans/readworld/internal/annotations"
	"github.com/mrlokans/readworld/internal/catalog"
	"github.com/mrlokans/readworld/internal/documents"
	"github.com/mrlokans/readworld/internal/library"
	"github.com/mrlokans/readworld/internal/reader"
	"github.com/mrlokans/readworld/internal/settingsstore"
	"github.com/mrlokans/readworld/internal/state/statetest"
	"github.com/mrlokans/readworld/internal/storage"
	"github.com/mrlokans/readworld/internal/streak"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)

const threePagePDF = "%PDF-1.4\n1 0 obj\n<< /Type /Pages /Kids [] /Count 3 >>\nendobj\n%%EOF\n"

type fakeQueue struct {
	enqueued []backlite.Task
}

func (q *fakeQueue) Enqueue(task backlite.Task) (string, error) {
	q.enqueued = append(q.enqueued, task)
	return "task-42", nil
}

func (q *fakeQueue) Status(_ context.Context, taskID string) (string, error) {
	if taskID == "task-42" {
		return "success", nil
	}
	return "not_found", nil
}

type fakeRescheduler struct{ calls int }

func (r *fakeRescheduler) Reschedule(context.Context) error {
	r.calls++
	return nil
}

type testApp struct {
	fixture   *statetest.Fixture
	router    *gin.Engine
	queue     *fakeQueue
	scheduler *fakeRescheduler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	f := statetest.New(t, testNow)
	cat := catalog.Default()
	engine := achievements.NewEngine(f.Store, f.Feed)
	tracker := streak.NewTracker(f.Store, engine, time.UTC)
	records := storage.NewMemory()

	books := fstest.MapFS{}
	for _, b := range cat.Books() {
		if b.Format == "pdf" {
			books[b.FileURL] = &fstest.MapFile{Data: []byte(threePagePDF)}
		}
	}

	app := &testApp{fixture: f, queue: &fakeQueue{}, scheduler: &fakeRescheduler{}}
	app.router = NewRouter(RouterConfig{
		Store:        f.Store,
		Catalog:      cat,
		Library:      library.New(f.Store, cat, engine),
		Annotations:  annotations.NewManager(f.Store),
		Achievements: engine,
		Streak:       tracker,
		Reader: reader.NewSession(f.Store, cat, engine, tracker, f.Feed, reader.Renderers{
			Paginated: documents.NewPDF(books),
			Location:  documents.NewEPUB(books),
		}),
		Settings:      settingsstore.New(records, f.Store),
		Notifications: f.Feed,
		Account:       account.NewService(nil, records, f.Store, engine, f.Feed),
		TaskQueue:     app.queue,
		Scheduler:     app.scheduler,
		Version:       "test",
	})
	return app
}

// do performs a request; body is JSON-encoded when not nil.
func (a *testApp) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
