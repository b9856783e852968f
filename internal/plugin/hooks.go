package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Hooks forwards action notifications to every subscribed plugin.
type Hooks struct {
	manager  *Manager
	executor *Executor
	logger   *slog.Logger
}

// NewHooks combines a manager and an executor.
func NewHooks(manager *Manager, executor *Executor, logger *slog.Logger) *Hooks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hooks{manager: manager, executor: executor, logger: logger}
}

// Notify runs each plugin subscribed to req.Action in name order. Failures are
// logged and joined into the returned error; one failing plugin does not stop the
// rest.
func (h *Hooks) Notify(ctx context.Context, req Request) error {
	var errs []error
	for _, p := range h.manager.ForAction(req.Action) {
		r := req
		resp, err := h.executor.Execute(ctx, p, &r)
		if err == nil && !resp.Success {
			err = errors.New(resp.Error)
		}
		if err != nil {
			h.logger.Warn("plugin hook failed", "plugin", p.Manifest.Name, "action", req.Action, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Manifest.Name, err))
			continue
		}
		h.logger.Debug("plugin hook ran", "plugin", p.Manifest.Name, "action", req.Action)
	}
	return errors.Join(errs...)
}
