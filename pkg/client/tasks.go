package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/api"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/tasks"
)

func (c *Client) ListTasks(ctx context.Context) ([]tasks.TaskStatus, string, error) {
	var res []tasks.TaskStatus
	correlation, err := c.get(ctx, c.endpoint(api.TasksRoute), &res)
	return res, correlation, err
}

func (c *Client) TriggerTask(ctx context.Context, name string) (string, error) {
	path := strings.Replace(api.TriggerTaskRoute, "{name}", name, 1)

	var res api.TriggerTaskResponse
	correlation, err := c.post(ctx, c.endpoint(path), nil, &res)
	if err != nil {
		return correlation, err
	}
	if res.Status != "triggered" {
		return correlation, fmt.Errorf("unexpected response status: %s", res.Status)
	}
	return correlation, nil
}
