package admin

import (
	"context"
	"errors"
	"fmt"

	"game-catalog/pkg/backend"
)

// ErrUnknownAction is returned for an action id with no handler
var ErrUnknownAction = errors.New("unknown action")

// Request is one dispatched dashboard action
type Request struct {
	Action   string
	ID       string
	Filename string
	Key      string
}

// ActionFunc handles one action id
type ActionFunc func(ctx context.Context, d *Dashboard, req Request) (*Result, error)

// Actions maps every action id the dashboard emits to its handler
var Actions = map[string]ActionFunc{
	"approve": func(ctx context.Context, d *Dashboard, req Request) (*Result, error) {
		return d.Approve(ctx, req.ID)
	},
	"reject": func(ctx context.Context, d *Dashboard, req Request) (*Result, error) {
		return d.Reject(ctx, req.ID)
	},
	"view-files": func(ctx context.Context, d *Dashboard, req Request) (*Result, error) {
		return d.ViewFiles(ctx, req.ID)
	},
	"delete-file": func(ctx context.Context, d *Dashboard, req Request) (*Result, error) {
		return d.DeleteFile(ctx, req.ID, req.Filename)
	},
	"delete-all-files": func(ctx context.Context, d *Dashboard, req Request) (*Result, error) {
		return d.DeleteAllFiles(ctx, req.ID)
	},
	"login": func(ctx context.Context, d *Dashboard, req Request) (*Result, error) {
		ok, err := d.session.Login(req.Key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &Result{LoggedOut: true}, nil
		}
		return d.Load(ctx)
	},
	"logout": func(ctx context.Context, d *Dashboard, req Request) (*Result, error) {
		if err := d.session.Logout(); err != nil {
			return nil, err
		}
		return &Result{LoggedOut: true}, nil
	},
	"refresh-pending": func(ctx context.Context, d *Dashboard, req Request) (*Result, error) {
		res := &Result{}
		res.Pending, res.PendingErr = d.Pending(ctx)
		if errors.Is(res.PendingErr, ErrLoggedOut) || errors.Is(res.PendingErr, backend.ErrUnauthorized) {
			return &Result{LoggedOut: true}, res.PendingErr
		}
		return res, nil
	},
	"refresh-storage": func(ctx context.Context, d *Dashboard, req Request) (*Result, error) {
		res := &Result{}
		res.Storage, res.StorageErr = d.Storage(ctx)
		if errors.Is(res.StorageErr, ErrLoggedOut) || errors.Is(res.StorageErr, backend.ErrUnauthorized) {
			return &Result{LoggedOut: true}, res.StorageErr
		}
		return res, nil
	},
	"close-modal": func(ctx context.Context, d *Dashboard, req Request) (*Result, error) {
		return &Result{}, nil
	},
}

// Dispatch runs the handler registered for req.Action
func (d *Dashboard) Dispatch(ctx context.Context, req Request) (*Result, error) {
	fn, ok := Actions[req.Action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
	return fn(ctx, d, req)
}
