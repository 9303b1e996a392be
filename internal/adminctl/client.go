// Package adminctl implements vasihatctl, the operator CLI for the admin
// HTTP API.
package adminctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"github.com/BijjaSagar/vashihat-nama/internal/server/httpapi"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
)

// Client calls the admin endpoints with the shared admin secret.
type Client struct {
	baseURL string
	secret  string
	http    *http.Client
}

func NewClient(baseURL, secret string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), secret: secret, http: hc}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set(common.AdminSecretHeaderName, c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) Sweep(ctx context.Context) (*httpapi.SweepResponse, error) {
	var out httpapi.SweepResponse
	if err := c.do(ctx, http.MethodPost, "/api/admin/trigger_heartbeat_check", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Grant(ctx context.Context, nomineeID int64) error {
	return c.do(ctx, http.MethodPost, "/api/admin/nominees/"+strconv.FormatInt(nomineeID, 10)+"/grant", nil)
}

func (c *Client) Stats(ctx context.Context) (*models.AdminStats, error) {
	var out models.AdminStats
	if err := c.do(ctx, http.MethodGet, "/api/admin/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.do(ctx, http.MethodGet, "/api/admin/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}
