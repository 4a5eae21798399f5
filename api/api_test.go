package api

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinmclean/autovend"
)

type fakeRunner struct {
	mtx   sync.Mutex
	tasks []autovend.MoveTask
	err   error
}

func (r *fakeRunner) RunTask(_ context.Context, task autovend.MoveTask) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.tasks = append(r.tasks, task)
	return r.err
}

func newTestServer(t *testing.T, runner Runner) *Client {
	t.Helper()

	server := httptest.NewServer(New(runner).Router())
	t.Cleanup(server.Close)

	return NewClient(server.URL)
}

func TestSubmit(t *testing.T) {
	tests := []struct {
		name      string
		runnerErr error
		status    Status
		errMsg    string
	}{
		{"Done", nil, StatusDone, ""},
		{"Failed", errors.New("timed out waiting for device"), StatusFailed, "task failed: timed out waiting for device"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{err: tt.runnerErr}
			client := newTestServer(t, runner)

			task, err := client.Submit(context.Background(), autovend.TestTask)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Equal(t, tt.errMsg, err.Error())
			} else {
				require.NoError(t, err)
			}

			require.NotNil(t, task)
			assert.Equal(t, tt.status, task.Status)
			assert.Equal(t, autovend.TestTask, task.MoveTask)
			assert.Equal(t, []autovend.MoveTask{autovend.TestTask}, runner.tasks)
		})
	}
}

func TestCreateDoesNotRun(t *testing.T) {
	runner := &fakeRunner{}
	client := newTestServer(t, runner)

	task, err := client.Create(context.Background(), autovend.TestTask)
	require.NoError(t, err)
	assert.NotEmpty(t, task.GetID())
	assert.Equal(t, StatusPending, task.Status)

	stored, err := client.Get(context.Background(), task.GetID())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
	assert.Empty(t, runner.tasks)
}

func TestCreateRejectsInvalidGrid(t *testing.T) {
	runner := &fakeRunner{}
	client := newTestServer(t, runner)

	_, err := client.Create(context.Background(), autovend.MoveTask{Width: 1, Height: 22})
	require.Error(t, err)
	assert.Empty(t, runner.tasks)
}

func TestRunUnknownTask(t *testing.T) {
	runner := &fakeRunner{}
	client := newTestServer(t, runner)

	_, err := client.Run(context.Background(), "cs8qg1ivmkhc73c4l0ug")
	require.Error(t, err)
	assert.Empty(t, runner.tasks)
}
