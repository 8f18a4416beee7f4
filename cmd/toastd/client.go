package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vango-dev/toast/internal/config"
	"github.com/vango-dev/toast/internal/errors"
	"github.com/vango-dev/toast/pkg/server"
)

// apiClient talks to a running toastd.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(addr string) *apiClient {
	if addr == "" {
		addr = config.DefaultAddress
	}
	base := strings.TrimRight(addr, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &apiClient{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *apiClient) push(ctx context.Context, req server.ToastRequest) (server.ToastJSON, error) {
	var out server.ToastJSON
	err := c.do(ctx, http.MethodPost, "/api/toasts", req, http.StatusCreated, &out)
	return out, err
}

func (c *apiClient) list(ctx context.Context) ([]server.ToastJSON, error) {
	var out server.ListResponse
	err := c.do(ctx, http.MethodGet, "/api/toasts", nil, http.StatusOK, &out)
	return out.Toasts, err
}

func (c *apiClient) dismiss(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/toasts/%d", id), nil, http.StatusNoContent, nil)
}

func (c *apiClient) clear(ctx context.Context) (int, error) {
	var out server.ClearResponse
	err := c.do(ctx, http.MethodDelete, "/api/toasts", nil, http.StatusOK, &out)
	return out.Removed, err
}

// do sends one request and decodes the reply into out. Server errors are
// returned as the server's own ToastError.
func (c *apiClient) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, r)
	if err != nil {
		return errors.New("E401").WithDetail(err.Error())
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.New("E401").
			WithDetail("Could not reach " + c.base).
			WithSuggestion("Start the server with 'toastd serve' or pass --addr").
			Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var er server.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&er); err == nil && er.Error != nil {
			return er.Error
		}
		return errors.New("E402").WithDetailf("%s %s returned %s", method, path, resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.New("E402").WithDetail("Malformed response body").Wrap(err)
	}
	return nil
}
