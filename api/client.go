package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/calvinmclean/babyapi"

	"github.com/calvinmclean/autovend"
)

// Client submits tasks to a running API
type Client struct {
	client *babyapi.Client[*Task]
}

func NewClient(addr string) *Client {
	return &Client{client: babyapi.NewClient[*Task](addr, "/tasks")}
}

// Create stores a task without running it
func (c *Client) Create(ctx context.Context, task autovend.MoveTask) (*Task, error) {
	resp, err := c.client.Post(ctx, &Task{MoveTask: task})
	if err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}
	return resp.Data, nil
}

func (c *Client) Get(ctx context.Context, id string) (*Task, error) {
	resp, err := c.client.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting task: %w", err)
	}
	return resp.Data, nil
}

// Run runs a stored task and returns it with its final status
func (c *Client) Run(ctx context.Context, id string) (*Task, error) {
	url, err := c.client.URL(id)
	if err != nil {
		return nil, fmt.Errorf("error creating URL: %w", err)
	}
	url += "/run"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.client.MakeGenericRequest(req, nil)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	if resp.Response.StatusCode != http.StatusNoContent {
		return nil, fmt.Errorf("unexpected status code: %d, response: %v", resp.Response.StatusCode, resp.Body)
	}

	return c.Get(ctx, id)
}

// Submit creates and runs a task. A task that ran but failed is returned with an error
func (c *Client) Submit(ctx context.Context, task autovend.MoveTask) (*Task, error) {
	created, err := c.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	result, err := c.Run(ctx, created.GetID())
	if err != nil {
		return nil, err
	}

	if result.Status == StatusFailed {
		return result, errors.New("task failed: " + result.Error)
	}

	return result, nil
}
