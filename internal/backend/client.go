// Package backend talks to the json-server style mock backend that owns the
// problem catalog and the account list.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/models"
)

// ErrNotFound is returned when the backend answers 404.
var ErrNotFound = errors.New("backend: not found")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	log := logger.FromContext(ctx).WithPrefix("backend").WithField("path", path)
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	log.Debug("requesting %s %s", method, url)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("request failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("request failed: status=%d, body=%s", resp.StatusCode, string(msg))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(msg))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("failed to decode response: %v", err)
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// FetchProblems returns every valid problem. Records that fail migration are
// logged and skipped rather than failing the whole catalog.
func (c *Client) FetchProblems(ctx context.Context) ([]models.Problem, error) {
	log := logger.FromContext(ctx).WithPrefix("backend")

	var raw []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/problems", nil, &raw); err != nil {
		return nil, err
	}

	out := make([]models.Problem, 0, len(raw))
	legacy := 0
	for i, msg := range raw {
		var w Problem
		if err := json.Unmarshal(msg, &w); err != nil {
			log.Warn("skipping malformed problem record #%d: %v", i, err)
			continue
		}
		p, err := w.ToModel()
		if err != nil {
			log.Warn("skipping invalid problem record #%d: %v", i, err)
			continue
		}
		if w.Legacy() {
			legacy++
		}
		out = append(out, p)
	}

	log.Info("fetched %d problems (%d skipped, %d migrated from legacy schema)", len(out), len(raw)-len(out), legacy)
	return out, nil
}

func (c *Client) FetchProblem(ctx context.Context, id int64) (*models.Problem, error) {
	var w Problem
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/problems/%d", id), nil, &w); err != nil {
		return nil, err
	}
	p, err := w.ToModel()
	if err != nil {
		return nil, fmt.Errorf("problem %d: %w", id, err)
	}
	return &p, nil
}

// UpdateProblem sends a partial update and returns the stored record.
func (c *Client) UpdateProblem(ctx context.Context, id int64, patch models.ProblemPatch) (*models.Problem, error) {
	var w Problem
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/problems/%d", id), patch, &w); err != nil {
		return nil, err
	}
	p, err := w.ToModel()
	if err != nil {
		return nil, fmt.Errorf("problem %d: %w", id, err)
	}
	return &p, nil
}

func (c *Client) FetchUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).WithPrefix("backend").Debug("fetched %d users", len(users))
	return users, nil
}
