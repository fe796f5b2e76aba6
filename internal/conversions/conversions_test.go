package conversions_test

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/parishworks/sexton/internal/conversions"
)

func TestKindCollection(t *testing.T) {
	tests := []struct {
		kind conversions.Kind
		want string
	}{
		{conversions.KindPage, "page-conversions"},
		{conversions.KindPost, "post-conversions"},
	}

	for _, tt := range tests {
		if got := tt.kind.Collection(); got != tt.want {
			t.Errorf("Collection(%s) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestKindTable(t *testing.T) {
	tests := []struct {
		kind conversions.Kind
		want string
	}{
		{conversions.KindPage, "page_conversions"},
		{conversions.KindPost, "post_conversions"},
	}

	for _, tt := range tests {
		if got := tt.kind.Table(); got != tt.want {
			t.Errorf("Table(%s) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestKindValid(t *testing.T) {
	if !conversions.KindPage.Valid() {
		t.Error("KindPage should be valid")
	}
	if !conversions.KindPost.Valid() {
		t.Error("KindPost should be valid")
	}
	if conversions.Kind("video").Valid() {
		t.Error("unknown kind should not be valid")
	}
}

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status conversions.Status
		want   bool
	}{
		{conversions.StatusQueued, false},
		{conversions.StatusRunning, false},
		{conversions.StatusCompleted, true},
		{conversions.StatusFailed, true},
	}

	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("Terminal(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"queued", "running", "completed", "failed"} {
		status, err := conversions.ParseStatus(valid)
		if err != nil {
			t.Errorf("ParseStatus(%q) failed: %v", valid, err)
		}
		if string(status) != valid {
			t.Errorf("ParseStatus(%q) = %q", valid, status)
		}
	}

	if _, err := conversions.ParseStatus("pending"); !errors.Is(err, conversions.ErrInvalidStatus) {
		t.Errorf("ParseStatus(pending) = %v, want ErrInvalidStatus", err)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", conversions.ErrNotFound, http.StatusNotFound},
		{"active conflict", conversions.ErrActive, http.StatusConflict},
		{"invalid status", conversions.ErrInvalidStatus, http.StatusBadRequest},
		{"invalid id", conversions.ErrInvalidID, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := conversions.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	values := url.Values{}
	values.Set("subject_id", "doc-1")
	values.Set("agent_task_id", "task-9")
	values.Set("status", "running")
	values.Set("active", "true")

	f := conversions.FiltersFromQuery(values)

	if f.SubjectID == nil || *f.SubjectID != "doc-1" {
		t.Errorf("SubjectID = %v, want doc-1", f.SubjectID)
	}
	if f.AgentTaskID == nil || *f.AgentTaskID != "task-9" {
		t.Errorf("AgentTaskID = %v, want task-9", f.AgentTaskID)
	}
	if f.Status == nil || *f.Status != conversions.StatusRunning {
		t.Errorf("Status = %v, want running", f.Status)
	}
	if f.Active == nil || !*f.Active {
		t.Errorf("Active = %v, want true", f.Active)
	}
}

func TestFiltersFromQueryIgnoresInvalid(t *testing.T) {
	values := url.Values{}
	values.Set("status", "pending")
	values.Set("active", "sometimes")

	f := conversions.FiltersFromQuery(values)

	if f.Status != nil {
		t.Errorf("Status = %v, want nil for invalid value", f.Status)
	}
	if f.Active != nil {
		t.Errorf("Active = %v, want nil for invalid value", f.Active)
	}
}
