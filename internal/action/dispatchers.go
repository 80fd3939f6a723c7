package action

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ayusman/mudra/internal/plugin"
)

// LogDispatcher only logs actions. It is used when no player is configured.
type LogDispatcher struct {
	Logger *slog.Logger
}

// Dispatch logs a and reports success.
func (d LogDispatcher) Dispatch(ctx context.Context, a Action) (*Result, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "action", "action", a)
	return &Result{Action: a, Detail: "logged"}, nil
}

// PluginDispatcher runs actions through an external plugin.
type PluginDispatcher struct {
	manager    *plugin.Manager
	executor   *plugin.Executor
	name       string
	volumeStep int
}

// NewPluginDispatcher dispatches to the plugin called name. volumeStep is
// passed to the plugin with increase and decrease actions.
func NewPluginDispatcher(manager *plugin.Manager, executor *plugin.Executor, name string, volumeStep int) *PluginDispatcher {
	return &PluginDispatcher{
		manager:    manager,
		executor:   executor,
		name:       name,
		volumeStep: volumeStep,
	}
}

// volumeParams is sent with increase and decrease.
type volumeParams struct {
	Step int `json:"step"`
}

// Dispatch sends a to the plugin and fails if the plugin reports failure.
func (d *PluginDispatcher) Dispatch(ctx context.Context, a Action) (*Result, error) {
	p, err := d.manager.Get(d.name)
	if err != nil {
		return nil, err
	}
	if !p.Supports(string(a)) {
		return nil, fmt.Errorf("plugin %s does not support %s", d.name, a)
	}

	req := &plugin.Request{Action: string(a)}
	if (a == Increase || a == Decrease) && d.volumeStep > 0 {
		params, err := json.Marshal(volumeParams{Step: d.volumeStep})
		if err != nil {
			return nil, fmt.Errorf("encode %s params: %w", a, err)
		}
		req.Params = params
	}

	resp, err := d.executor.Execute(ctx, p, req)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "no error message"
		}
		return nil, fmt.Errorf("plugin %s: %s", d.name, msg)
	}

	return &Result{Action: a, Detail: string(resp.Data)}, nil
}
