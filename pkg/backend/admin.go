package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"game-catalog/pkg/models"
)

// AdminKeyHeader carries the admin credential on every admin call
const AdminKeyHeader = "x-admin-key"

// AdminClient calls the moderation endpoints with one credential
type AdminClient struct {
	client *Client
	key    string
}

// Admin returns a client that attaches key to every call
func (c *Client) Admin(key string) *AdminClient {
	return &AdminClient{client: c, key: key}
}

// Pending lists games waiting for approval
func (a *AdminClient) Pending(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	if err := a.getJSON(ctx, "list pending", "/api/admin/pending", &games); err != nil {
		return nil, err
	}
	if games == nil {
		games = []models.Game{}
	}
	return games, nil
}

// Approve publishes a pending game
func (a *AdminClient) Approve(ctx context.Context, id string) (*models.ActionResult, error) {
	return a.action(ctx, "approve", id)
}

// Reject deletes a pending game and all of its files
func (a *AdminClient) Reject(ctx context.Context, id string) (*models.ActionResult, error) {
	return a.action(ctx, "reject", id)
}

// Storage fetches the storage overview
func (a *AdminClient) Storage(ctx context.Context) (*models.StorageOverview, error) {
	var overview models.StorageOverview
	if err := a.getJSON(ctx, "storage overview", "/api/admin/storage", &overview); err != nil {
		return nil, err
	}
	if overview.Games == nil {
		overview.Games = map[string]models.GameStorage{}
	}
	return &overview, nil
}

// Files lists the stored files of one game
func (a *AdminClient) Files(ctx context.Context, id string) (*models.FileList, error) {
	var list models.FileList
	if err := a.getJSON(ctx, "list files", "/api/admin/files/"+url.PathEscape(id), &list); err != nil {
		return nil, err
	}
	if list.Files == nil {
		list.Files = []models.StoredFile{}
	}
	return &list, nil
}

// DeleteFile removes one stored file. Only the status is inspected.
func (a *AdminClient) DeleteFile(ctx context.Context, id, name string) error {
	path := "/api/admin/files/" + url.PathEscape(id) + "/" + url.PathEscape(name)
	resp, err := a.client.do(ctx, http.MethodDelete, path, nil, a.headers())
	if err != nil {
		return fmt.Errorf("delete file %s/%s: %w", id, name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return checkStatus("delete file", resp)
}

func (a *AdminClient) action(ctx context.Context, kind, id string) (*models.ActionResult, error) {
	payload, err := json.Marshal(map[string]string{"id": id})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to marshal request body: %w", kind, err)
	}

	headers := a.headers()
	headers.Set("Content-Type", "application/json")
	resp, err := a.client.do(ctx, http.MethodPost, "/api/admin/"+kind, bytes.NewReader(payload), headers)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", kind, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}

	var result models.ActionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &StatusError{Op: kind, StatusCode: resp.StatusCode}
		}
		return nil, fmt.Errorf("%s %s: failed to decode response body: %w", kind, id, err)
	}
	if !result.Success {
		return &result, &RemoteError{Op: kind, Message: result.Error}
	}
	return &result, nil
}

func (a *AdminClient) getJSON(ctx context.Context, op, path string, out any) error {
	resp, err := a.client.do(ctx, http.MethodGet, path, nil, a.headers())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if err := checkStatus(op, resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response body: %w", op, err)
	}
	return nil
}

func (a *AdminClient) headers() http.Header {
	h := http.Header{}
	h.Set(AdminKeyHeader, a.key)
	return h
}
