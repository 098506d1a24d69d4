// Package backend is the REST client for the external catalog backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"game-catalog/pkg/models"
)

// maxErrorBody caps how much of an error response is kept
const maxErrorBody = 4096

// Client talks to the public endpoints of the backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the backend at baseURL. A nil httpClient uses
// a client without a timeout; callers bound requests through the context.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the backend origin without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Games fetches the published catalog
func (c *Client) Games(ctx context.Context) ([]models.Game, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/games", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus("list games", resp); err != nil {
		return nil, err
	}

	var games []models.Game
	if err := json.NewDecoder(resp.Body).Decode(&games); err != nil {
		return nil, fmt.Errorf("list games: failed to decode response body: %w", err)
	}
	if games == nil {
		games = []models.Game{}
	}
	return games, nil
}

// Game fetches one game. A 404, an empty body or a JSON null all yield
// ErrNotFound.
func (c *Client) Game(ctx context.Context, id string) (*models.Game, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/games?id="+url.QueryEscape(id), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get game %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("get game %s: %w", id, ErrNotFound)
	}
	if err := checkStatus("get game", resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("get game %s: failed to read response body: %w", id, err)
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("get game %s: %w", id, ErrNotFound)
	}

	var game models.Game
	if err := json.Unmarshal(trimmed, &game); err != nil {
		return nil, fmt.Errorf("get game %s: failed to decode response body: %w", id, err)
	}
	return &game, nil
}

// SubmitGame posts a new game for moderation
func (c *Client) SubmitGame(ctx context.Context, game models.Game) error {
	payload, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("submit game: failed to marshal request body: %w", err)
	}

	headers := http.Header{"Content-Type": []string{"application/json"}}
	resp, err := c.do(ctx, http.MethodPost, "/api/games", bytes.NewReader(payload), headers)
	if err != nil {
		return fmt.Errorf("submit game: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("submit game: failed to read response body: %w", err)
	}

	var result models.SubmitResult
	if err := json.Unmarshal(body, &result); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &StatusError{Op: "submit game", StatusCode: resp.StatusCode, Body: string(body)}
		}
		return fmt.Errorf("submit game: failed to decode response body: %w", err)
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "Submission failed"
		}
		return &RemoteError{Op: "submit game", Message: msg}
	}
	return nil
}

// FileURL turns a storage path returned by the backend into an absolute URL
func (c *Client) FileURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + path
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, headers http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
