package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/parishworks/sexton/internal/conversions"
)

const idempotencyKeyHeader = "Idempotency-Key"

type client struct {
	base   *url.URL
	token  string
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates an HTTP agent client. baseURL points at the agent's API
// root (e.g. http://localhost:3005/api); token, when non-empty, is sent as a
// bearer credential.
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) (Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse agent base url: %w", err)
	}

	return &client{
		base:   base,
		token:  token,
		http:   &http.Client{Timeout: timeout},
		logger: logger.With("system", "agent"),
	}, nil
}

func (c *client) StartConversion(ctx context.Context, kind conversions.Kind, req StartRequest) (*StartResponse, error) {
	body := map[string]string{
		"url":              req.URL,
		subjectField(kind): req.SubjectID,
	}

	var resp StartResponse
	if err := c.do(ctx, http.MethodPost, startPath(kind), req.IdempotencyKey, body, &resp); err != nil {
		return nil, err
	}

	c.logger.Info(
		"conversion started",
		"kind", string(kind),
		"task_id", resp.TaskID,
		"task_status", resp.TaskStatus,
	)
	return &resp, nil
}

func (c *client) TaskStatus(ctx context.Context, kind conversions.Kind, taskID string) (*TaskStatusResponse, error) {
	var resp TaskStatusResponse
	if err := c.do(ctx, http.MethodGet, statusPath(kind, taskID), "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *client) do(ctx context.Context, method, path, idempotencyKey string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal agent request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.base.JoinPath(path).String()
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build agent request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if idempotencyKey != "" {
		req.Header.Set(idempotencyKeyHeader, idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf(
			"%w: %s %s returned %d: %s",
			ErrUnavailable, method, path, resp.StatusCode, strings.TrimSpace(string(detail)),
		)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode agent response: %w", err)
	}

	return nil
}

func startPath(kind conversions.Kind) string {
	if kind == conversions.KindPost {
		return "posts/apply-youtube-transcript"
	}
	return "pages/convert-single-page"
}

func statusPath(kind conversions.Kind, taskID string) string {
	if kind == conversions.KindPost {
		return "posts/task/" + taskID
	}
	return "pages/task/" + taskID
}

func subjectField(kind conversions.Kind) string {
	if kind == conversions.KindPost {
		return "postId"
	}
	return "pageId"
}
