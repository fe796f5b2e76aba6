// Package cli implements the sextonctl operator commands: enqueue
// conversions, inspect jobs, and watch a subject's conversion records.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/parishworks/sexton/internal/conversions"
	"github.com/parishworks/sexton/internal/queue"
	"github.com/parishworks/sexton/internal/workflow"
	"github.com/parishworks/sexton/pkg/pagination"
)

const (
	envServer     = "SEXTON_SERVER"
	defaultServer = "http://localhost:8080"
)

// Client is a thin HTTP client for the Sexton API consumed by the commands.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a Client for the given server, falling back to the
// SEXTON_SERVER environment variable and then the local default.
func NewClient(server string) *Client {
	if server == "" {
		server = os.Getenv(envServer)
	}
	if server == "" {
		server = defaultServer
	}

	return &Client{
		base: strings.TrimSuffix(server, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// Enqueue submits a conversion to the kind's enqueue endpoint.
func (c *Client) Enqueue(ctx context.Context, kind conversions.Kind, req workflow.EnqueueRequest) (*workflow.EnqueueResponse, error) {
	path := "/api/begin-single-page-conversion"
	if kind == conversions.KindPost {
		path = "/api/begin-post-creation"
	}

	var resp workflow.EnqueueResponse
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Job fetches a job by id.
func (c *Client) Job(ctx context.Context, id string) (*queue.Job, error) {
	var job queue.Job
	if err := c.do(ctx, http.MethodGet, "/api/jobs/"+id, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Conversions lists a subject's conversion records, newest first.
func (c *Client) Conversions(ctx context.Context, kind conversions.Kind, subjectID string) (*pagination.PageResult[conversions.Record], error) {
	path := fmt.Sprintf("/api/%s?subject_id=%s", kind.Collection(), subjectID)

	var result pagination.PageResult[conversions.Record]
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
