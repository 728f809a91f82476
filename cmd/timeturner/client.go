package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"syscall"
	"time"

	"timeturner/internal/api"
)

// apiClient is a thin HTTP wrapper over the daemon's API.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *apiClient) Status(ctx context.Context) (api.Status, error) {
	var out api.Status
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &out)
	return out, err
}

func (c *apiClient) Sync(ctx context.Context) (api.SyncResponse, error) {
	var out api.SyncResponse
	err := c.do(ctx, http.MethodPost, "/api/sync", nil, &out)
	return out, err
}

func (c *apiClient) Nudge(ctx context.Context, amountMS int64) (api.NudgeResponse, error) {
	var out api.NudgeResponse
	err := c.do(ctx, http.MethodPost, "/api/nudge", api.NudgeRequest{AmountMS: amountMS}, &out)
	return out, err
}

func (c *apiClient) History(ctx context.Context, limit int) ([]api.HistoryEntry, error) {
	var out api.HistoryResponse
	path := "/api/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

func (c *apiClient) Logs(ctx context.Context, tail int) (api.LogStreamResponse, error) {
	var out api.LogStreamResponse
	path := "/api/logs?tail=1&limit=" + strconv.Itoa(tail)
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *apiClient) GetConfig(ctx context.Context) (api.ConfigPayload, error) {
	var out api.ConfigPayload
	err := c.do(ctx, http.MethodGet, "/api/config", nil, &out)
	return out, err
}

func (c *apiClient) SetConfig(ctx context.Context, payload api.ConfigPayload) (api.ConfigPayload, error) {
	var out api.ConfigPayload
	err := c.do(ctx, http.MethodPut, "/api/config", payload, &out)
	return out, err
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapDialError(err, c.baseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeAPIError surfaces the daemon's error message. Both the generic error
// envelope and the sync/nudge payloads carry it under the "error" key.
func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return errors.New(payload.Error)
	}
	return fmt.Errorf("daemon returned %s", resp.Status)
}

func wrapDialError(err error, baseURL string) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("connect to daemon at %s: connection refused; start it with `timeturner run`", baseURL)
	}
	return fmt.Errorf("connect to daemon at %s: %w", baseURL, err)
}
