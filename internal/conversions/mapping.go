package conversions

import (
	"net/url"
	"strconv"

	"github.com/parishworks/sexton/pkg/query"
	"github.com/parishworks/sexton/pkg/repository"
)

func projectionFor(kind Kind) *query.ProjectionMap {
	return query.
		NewProjectionMap("public", kind.Table(), "c").
		Project("id", "ID").
		Project("subject_id", "SubjectID").
		Project("agent_task_id", "AgentTaskID").
		Project("agent_task_status", "AgentTaskStatus").
		Project("last_error", "LastError").
		Project("job_id", "JobID").
		Project("created_at", "CreatedAt").
		Project("updated_at", "UpdatedAt")
}

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for conversion record queries.
// Nil fields are ignored. Active selects records with a non-terminal status
// and is how polling clients ask for in-flight conversions.
type Filters struct {
	SubjectID   *string `json:"subject_id,omitempty"`
	AgentTaskID *string `json:"agent_task_id,omitempty"`
	Status      *Status `json:"status,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.WhereEquals("SubjectID", f.SubjectID).
		WhereEquals("AgentTaskID", f.AgentTaskID).
		WhereEquals("AgentTaskStatus", f.Status)

	if f.Active != nil && *f.Active {
		b.WhereIn("AgentTaskStatus", statusValues(ActiveStatuses))
	}

	return b
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Invalid status values are ignored rather than rejected.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("subject_id"); s != "" {
		f.SubjectID = &s
	}

	if t := values.Get("agent_task_id"); t != "" {
		f.AgentTaskID = &t
	}

	if s := values.Get("status"); s != "" {
		if status, err := ParseStatus(s); err == nil {
			f.Status = &status
		}
	}

	if a := values.Get("active"); a != "" {
		if active, err := strconv.ParseBool(a); err == nil {
			f.Active = &active
		}
	}

	return f
}

func statusValues(statuses []Status) []any {
	values := make([]any, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	return values
}

func scanRecord(s repository.Scanner) (Record, error) {
	var r Record
	err := s.Scan(
		&r.ID,
		&r.SubjectID,
		&r.AgentTaskID,
		&r.AgentTaskStatus,
		&r.LastError,
		&r.JobID,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}
