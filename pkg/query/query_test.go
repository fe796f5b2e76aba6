package query_test

import (
	"reflect"
	"testing"

	"github.com/parishworks/sexton/pkg/query"
)

func conversionProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "page_conversions", "c").
		Project("id", "Id").
		Project("subject_id", "SubjectID").
		Project("agent_task_status", "Status").
		Project("created_at", "CreatedAt")
}

func TestProjectionMap(t *testing.T) {
	pm := conversionProjection()

	if got := pm.From(); got != "public.page_conversions c" {
		t.Errorf("From() = %q, want qualified table with alias", got)
	}
	if got := pm.Column("SubjectID"); got != "c.subject_id" {
		t.Errorf("Column(SubjectID) = %q, want c.subject_id", got)
	}
	if got := pm.Column("unmapped"); got != "unmapped" {
		t.Errorf("Column(unmapped) = %q, want passthrough", got)
	}
	if got := pm.Columns(); got != "c.id, c.subject_id, c.agent_task_status, c.created_at" {
		t.Errorf("Columns() = %q, want mapped columns in projection order", got)
	}
	if got := pm.Alias(); got != "c" {
		t.Errorf("Alias() = %q, want c", got)
	}
}

func TestBuilderBuild(t *testing.T) {
	subject := "page-7"
	status := "running"

	sql, args := query.NewBuilder(conversionProjection()).
		WhereEquals("SubjectID", &subject).
		WhereEquals("Status", &status).
		Build()

	want := "SELECT c.id, c.subject_id, c.agent_task_status, c.created_at " +
		"FROM public.page_conversions c " +
		"WHERE c.subject_id = $1 AND c.agent_task_status = $2"
	if sql != want {
		t.Errorf("Build() sql = %q, want %q", sql, want)
	}
	if len(args) != 2 || args[0] != &subject || args[1] != &status {
		t.Errorf("Build() args = %v, want [subject, status]", args)
	}
}

func TestBuilderSkipsNilConditions(t *testing.T) {
	var subject *string

	sql, args := query.NewBuilder(conversionProjection()).
		WhereEquals("SubjectID", subject).
		WhereContains("SubjectID", nil).
		WhereSearch(nil, "SubjectID").
		Build()

	want := "SELECT c.id, c.subject_id, c.agent_task_status, c.created_at " +
		"FROM public.page_conversions c"
	if sql != want {
		t.Errorf("Build() sql = %q, want no WHERE clause", sql)
	}
	if len(args) != 0 {
		t.Errorf("Build() args = %v, want empty", args)
	}
}

func TestBuilderWhereIn(t *testing.T) {
	subject := "page-7"

	sql, args := query.NewBuilder(conversionProjection()).
		WhereEquals("SubjectID", &subject).
		WhereIn("Status", []any{"queued", "running"}).
		BuildCount()

	want := "SELECT COUNT(*) FROM public.page_conversions c " +
		"WHERE c.subject_id = $1 AND c.agent_task_status IN ($2, $3)"
	if sql != want {
		t.Errorf("BuildCount() sql = %q, want %q", sql, want)
	}
	if len(args) != 3 {
		t.Errorf("BuildCount() args = %v, want 3 parameters", args)
	}
}

func TestBuilderWhereSearch(t *testing.T) {
	search := "about"

	sql, args := query.NewBuilder(conversionProjection()).
		WhereSearch(&search, "SubjectID", "Status").
		Build()

	want := "SELECT c.id, c.subject_id, c.agent_task_status, c.created_at " +
		"FROM public.page_conversions c " +
		"WHERE (c.subject_id ILIKE $1 OR c.agent_task_status ILIKE $2)"
	if sql != want {
		t.Errorf("Build() sql = %q, want %q", sql, want)
	}
	if len(args) != 2 || args[0] != "%about%" || args[1] != "%about%" {
		t.Errorf("Build() args = %v, want wildcard patterns", args)
	}
}

func TestBuilderBuildPage(t *testing.T) {
	sql, _ := query.NewBuilder(conversionProjection(), query.SortField{Field: "CreatedAt", Descending: true}).
		BuildPage(2, 10)

	want := "SELECT c.id, c.subject_id, c.agent_task_status, c.created_at " +
		"FROM public.page_conversions c " +
		"ORDER BY c.created_at DESC LIMIT 10 OFFSET 10"
	if sql != want {
		t.Errorf("BuildPage() sql = %q, want %q", sql, want)
	}
}

func TestBuilderOrderByOverridesDefault(t *testing.T) {
	sql, _ := query.NewBuilder(conversionProjection(), query.SortField{Field: "CreatedAt", Descending: true}).
		OrderByFields([]query.SortField{{Field: "SubjectID"}}).
		Build()

	want := "SELECT c.id, c.subject_id, c.agent_task_status, c.created_at " +
		"FROM public.page_conversions c " +
		"ORDER BY c.subject_id ASC"
	if sql != want {
		t.Errorf("Build() sql = %q, want explicit ordering", sql)
	}
}

func TestBuilderBuildSingle(t *testing.T) {
	sql, args := query.NewBuilder(conversionProjection()).BuildSingle("Id", "abc")

	want := "SELECT c.id, c.subject_id, c.agent_task_status, c.created_at " +
		"FROM public.page_conversions c WHERE c.id = $1"
	if sql != want {
		t.Errorf("BuildSingle() sql = %q, want %q", sql, want)
	}
	if len(args) != 1 || args[0] != "abc" {
		t.Errorf("BuildSingle() args = %v, want [abc]", args)
	}
}

func TestBuilderBuildSingleOrNull(t *testing.T) {
	subject := "page-7"

	sql, _ := query.NewBuilder(conversionProjection(), query.SortField{Field: "CreatedAt", Descending: true}).
		WhereEquals("SubjectID", &subject).
		BuildSingleOrNull()

	want := "SELECT c.id, c.subject_id, c.agent_task_status, c.created_at " +
		"FROM public.page_conversions c " +
		"WHERE c.subject_id = $1 " +
		"ORDER BY c.created_at DESC LIMIT 1"
	if sql != want {
		t.Errorf("BuildSingleOrNull() sql = %q, want %q", sql, want)
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []query.SortField
	}{
		{"empty", "", nil},
		{"single ascending", "subjectId", []query.SortField{{Field: "subjectId"}}},
		{"single descending", "-createdAt", []query.SortField{{Field: "createdAt", Descending: true}}},
		{
			"mixed with whitespace",
			"subjectId, -createdAt",
			[]query.SortField{
				{Field: "subjectId"},
				{Field: "createdAt", Descending: true},
			},
		},
		{"skips empty segments", "subjectId,,", []query.SortField{{Field: "subjectId"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := query.ParseSortFields(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSortFields(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
