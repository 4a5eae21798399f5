// Package api exposes MoveTasks as a REST resource. Creating a task stores it; running it drives the
// device through a Runner and records the outcome on the task.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/calvinmclean/babyapi"
	"github.com/go-chi/render"
	log "github.com/sirupsen/logrus"

	"github.com/calvinmclean/autovend"
)

// ErrInvalidGrid is returned when a task's grid cannot be mapped onto the field
var ErrInvalidGrid = errors.New("grid width and height must be greater than 1")

// Status is the progress of a Task
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Task is a MoveTask stored by the API
type Task struct {
	babyapi.DefaultResource
	autovend.MoveTask

	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Bind validates created and replaced tasks and resets their progress
func (t *Task) Bind(r *http.Request) error {
	err := t.DefaultResource.Bind(r)
	if err != nil {
		return err
	}

	switch r.Method {
	case http.MethodPost, http.MethodPut:
		if !t.Valid() {
			return ErrInvalidGrid
		}
		t.Status = StatusPending
		t.Error = ""
	}

	return nil
}

// Runner executes a MoveTask on the device
type Runner interface {
	RunTask(context.Context, autovend.MoveTask) error
}

// API serves the /tasks resource. Only one task runs at a time
type API struct {
	*babyapi.API[*Task]

	runner Runner
	mtx    sync.Mutex
}

// New creates the API. Tasks are run by POST /tasks/{id}/run
func New(runner Runner) *API {
	a := &API{
		API:    babyapi.NewAPI("Tasks", "/tasks", func() *Task { return &Task{} }),
		runner: runner,
	}

	a.AddCustomIDRoute(http.MethodPost, "/run", a.GetRequestedResourceAndDo(a.run))

	return a
}

func (a *API) run(r *http.Request, t *Task) (render.Renderer, *babyapi.ErrResponse) {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	logger := log.WithField("task_id", t.GetID())

	t.Status = StatusRunning
	t.Error = ""
	err := a.Storage.Set(r.Context(), t)
	if err != nil {
		return nil, babyapi.InternalServerError(fmt.Errorf("error storing task: %w", err))
	}

	logger.Infof("running task %s -> %s", t.From(), t.To())
	err = a.runner.RunTask(r.Context(), t.MoveTask)
	if err != nil {
		logger.WithError(err).Error("task failed")
		t.Status = StatusFailed
		t.Error = err.Error()
	} else {
		logger.Info("task done")
		t.Status = StatusDone
	}

	err = a.Storage.Set(r.Context(), t)
	if err != nil {
		return nil, babyapi.InternalServerError(fmt.Errorf("error storing task: %w", err))
	}

	return nil, nil
}

// ListenAndServe serves the API until the context is cancelled
func (a *API) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.WithError(err).Error("error shutting down API server")
		}
	}()

	log.Infof("serving API on %s", addr)
	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("error serving API: %w", err)
	}

	return nil
}
