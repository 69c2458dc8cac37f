// Package adapter defines the boundary between the migration workflow and
// each external test-management system. It is interface-only: concrete
// sessions (REST clients, auth flows, pagination) live outside this core and
// are supplied to a Workflow by whichever caller wires up a concrete system.
package adapter

import (
	"context"
	"time"

	"github.com/cedricziel/migrated/internal/mapper"
)

// Session represents an authenticated connection to one external system for
// the lifetime of a single workflow run. A Session is never shared across
// workflows.
type Session interface {
	// SystemName reports which system this session authenticates against.
	SystemName() string
	// Close releases any resources (connections, tokens) held by the session.
	Close() error
}

// Filters narrows an extraction to a subset of a project's records; its keys
// are system-specific (folder path, label, status, …).
type Filters map[string]any

// Page is one page of raw, system-specific records returned by a listing
// call, together with whether more pages remain.
type Page struct {
	Records    []mapper.SourceRecord
	NextCursor string
	HasMore    bool
}

// AttachmentMetadata describes a binary attachment being uploaded,
// independent of its bytes.
type AttachmentMetadata struct {
	FileName string
	FileType string
	Size     int64
}

// Adapter is what the workflow engine consumes from each external
// test-management system's connector. Every method may block on network I/O
// and must respect ctx cancellation/timeouts; a timeout surfaces as an error
// satisfying errors.Is(err, ErrTimeout).
type Adapter interface {
	// Connect opens a Session using config, which is the job's
	// system-specific SourceConfig/TargetConfig map.
	Connect(ctx context.Context, config map[string]any) (Session, error)

	ListTestCases(ctx context.Context, session Session, projectKey string, cursor string, filters Filters) (Page, error)
	CreateTestCase(ctx context.Context, session Session, record mapper.SourceRecord) (string, error)

	ListTestExecutions(ctx context.Context, session Session, projectKey string, cursor string, filters Filters) (Page, error)
	CreateTestExecution(ctx context.Context, session Session, record mapper.SourceRecord) (string, error)

	ListTestSuites(ctx context.Context, session Session, projectKey string, cursor string, filters Filters) (Page, error)
	CreateTestSuite(ctx context.Context, session Session, record mapper.SourceRecord) (string, error)

	ListTestCycles(ctx context.Context, session Session, projectKey string, cursor string, filters Filters) (Page, error)
	CreateTestCycle(ctx context.Context, session Session, record mapper.SourceRecord) (string, error)

	// UploadAttachment stores bytes against meta and returns an opaque
	// storage location the mapper never populates itself.
	UploadAttachment(ctx context.Context, session Session, bytes []byte, meta AttachmentMetadata) (string, error)
}

// ConnectTimeout is a default budget for a Connect call. The workflow engine
// does not apply it: Connect runs under whatever ctx was passed to
// Engine.Start, and an adapter may apply a budget of its own via ctx.
const ConnectTimeout = 30 * time.Second
