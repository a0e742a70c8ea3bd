package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/readworld/internal/catalog"
	"github.com/mrlokans/readworld/internal/state"
	"github.com/mrlokans/readworld/internal/tasks"
)

// TaskQueue accepts background jobs and reports on them. *tasks.Client satisfies it.
type TaskQueue interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (string, error)
}

// TasksController queues annotation exports and reports task status.
type TasksController struct {
	queue   TaskQueue
	store   *state.Store
	catalog *catalog.Catalog
}

func NewTasksController(queue TaskQueue, store *state.Store, cat *catalog.Catalog) *TasksController {
	return &TasksController{queue: queue, store: store, catalog: cat}
}

type exportRequest struct {
	BookIDs []string `json:"bookIds"`
}

// ExportAnnotations handles POST /api/export/annotations. An empty body exports every annotated book.
func (tc *TasksController) ExportAnnotations(c *gin.Context) {
	var req exportRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	for _, id := range req.BookIDs {
		if _, ok := tc.catalog.Find(id); !ok {
			respondNotFound(c, "book "+id)
			return
		}
	}

	task := tasks.NewExportAnnotationsTask(tc.store.UserID(c.Request.Context()), req.BookIDs)
	taskID, err := tc.queue.Enqueue(task)
	if err != nil {
		respondInternalError(c, err, "enqueue export")
		return
	}

	respondAccepted(c, "Export queued", gin.H{
		"task_id": taskID,
		"job_id":  task.JobID,
		"queue":   task.Config().Name,
	})
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": status,
	})
}
