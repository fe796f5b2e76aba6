// Package workflow defines the conversion pipelines Sexton runs on its job
// queue: a begin step that starts an agent task and registers the conversion
// record, and a wait step that polls the agent until the task settles. The
// two are composed into per-kind workflows and also registered standalone so
// callers may queue either step as an individual task.
package workflow

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/parishworks/sexton/internal/conversions"
)

// Workflow kinds. Each is a two-step pipeline: begin, then wait.
const (
	KindConvertPage         = "convert-page"
	KindCreatePostFromVideo = "create-post-from-video"
)

// Standalone task kinds. Each runs one workflow step as a single-step job.
const (
	TaskBeginPageConversion   = "begin-page-conversion"
	TaskWaitForPageConversion = "wait-for-page-conversion"
	TaskBeginPostCreation     = "begin-post-creation"
	TaskWaitForPostCreation   = "wait-for-post-creation"
)

// BeginInput is the payload for a begin step: the CMS document to populate
// and the source URL to convert.
type BeginInput struct {
	SubjectID string `json:"documentId"`
	URL       string `json:"url"`
}

// Validate checks that both fields are present.
func (in BeginInput) Validate() error {
	if in.SubjectID == "" || in.URL == "" {
		return fmt.Errorf("%w: documentId and url are required", ErrInvalidInput)
	}
	return nil
}

// BeginOutput identifies the conversion record the begin step created.
// It doubles as the wait step's input.
type BeginOutput struct {
	ConversionID uuid.UUID `json:"conversionId"`
}

// WaitInput identifies the conversion record the wait step polls.
type WaitInput struct {
	ConversionID uuid.UUID `json:"conversionId"`
}

// WaitOutput reports the terminal status the wait step observed.
type WaitOutput struct {
	Status conversions.Status `json:"status"`
}
