// Package memory implements a fixture-backed Adapter used by the CLI's
// one-shot "migrate" command and by the HTTP demo server to exercise the
// workflow end to end without a real Zephyr/qTest network client, which
// this core deliberately does not ship (see SPEC_FULL.md §1). It is a
// runnable stand-in, not a production connector: records live entirely in a
// process-local map seeded at construction time.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cedricziel/migrated/internal/adapter"
	"github.com/cedricziel/migrated/internal/mapper"
)

// Adapter serves a fixed, in-memory record set for one system and records
// whatever the workflow's Load step creates.
type Adapter struct {
	system string

	mu         sync.Mutex
	testCases  []mapper.SourceRecord
	executions []mapper.SourceRecord
	suites     []mapper.SourceRecord
	cycles     []mapper.SourceRecord
	created    []mapper.SourceRecord
	nextID     int
}

var _ adapter.Adapter = (*Adapter)(nil)

// New returns an Adapter for systemName seeded with testCases.
func New(systemName string, testCases []mapper.SourceRecord) *Adapter {
	return &Adapter{system: systemName, testCases: testCases}
}

type session struct{ system string }

func (s *session) SystemName() string { return s.system }
func (s *session) Close() error       { return nil }

// Connect always succeeds; this adapter never authenticates against a real
// backend.
func (a *Adapter) Connect(ctx context.Context, config map[string]any) (adapter.Session, error) {
	return &session{system: a.system}, nil
}

func (a *Adapter) ListTestCases(ctx context.Context, s adapter.Session, projectKey, cursor string, filters adapter.Filters) (adapter.Page, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return adapter.Page{Records: a.testCases}, nil
}

func (a *Adapter) CreateTestCase(ctx context.Context, s adapter.Session, record mapper.SourceRecord) (string, error) {
	return a.create(record)
}

func (a *Adapter) ListTestExecutions(ctx context.Context, s adapter.Session, projectKey, cursor string, filters adapter.Filters) (adapter.Page, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return adapter.Page{Records: a.executions}, nil
}

func (a *Adapter) CreateTestExecution(ctx context.Context, s adapter.Session, record mapper.SourceRecord) (string, error) {
	return a.create(record)
}

func (a *Adapter) ListTestSuites(ctx context.Context, s adapter.Session, projectKey, cursor string, filters adapter.Filters) (adapter.Page, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return adapter.Page{Records: a.suites}, nil
}

func (a *Adapter) CreateTestSuite(ctx context.Context, s adapter.Session, record mapper.SourceRecord) (string, error) {
	return a.create(record)
}

func (a *Adapter) ListTestCycles(ctx context.Context, s adapter.Session, projectKey, cursor string, filters adapter.Filters) (adapter.Page, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return adapter.Page{Records: a.cycles}, nil
}

func (a *Adapter) CreateTestCycle(ctx context.Context, s adapter.Session, record mapper.SourceRecord) (string, error) {
	return a.create(record)
}

func (a *Adapter) UploadAttachment(ctx context.Context, s adapter.Session, bytes []byte, meta adapter.AttachmentMetadata) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	return fmt.Sprintf("memory://%s/attachment/%d", a.system, a.nextID), nil
}

func (a *Adapter) create(record mapper.SourceRecord) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	a.created = append(a.created, record)
	return fmt.Sprintf("%s-%d", a.system, a.nextID), nil
}

// Created returns the records this adapter's Load calls have accumulated, in
// call order.
func (a *Adapter) Created() []mapper.SourceRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]mapper.SourceRecord, len(a.created))
	copy(out, a.created)
	return out
}

// DemoZephyrTestCases is a small fixture roster used to give the CLI's
// migrate command something to move on a fresh checkout.
func DemoZephyrTestCases() []mapper.SourceRecord {
	return []mapper.SourceRecord{
		{
			"id":          "TC-1",
			"key":         "DEMO-T1",
			"name":        "Login with valid credentials",
			"objective":   "Verify a user can sign in",
			"description": "Exercises the standard login form.",
			"folderPath":  "/Authentication",
			"status":      "Approved",
			"priority":    "High",
			"createdOn":   "2025-01-01T08:00:00Z",
			"updatedOn":   "2025-01-02T09:30:00Z",
			"steps": []any{
				map[string]any{"index": 1, "description": "Navigate to login page", "expectedResult": "Login form is visible"},
				map[string]any{"index": 2, "description": "Enter valid credentials", "expectedResult": "User is redirected to dashboard"},
			},
		},
		{
			"id":          "TC-2",
			"key":         "DEMO-T2",
			"name":        "Login with invalid password",
			"objective":   "Verify rejection of bad credentials",
			"description": "Negative login test.",
			"folderPath":  "/Authentication",
			"status":      "Ready For Review",
			"priority":    "Medium",
			"createdOn":   "2025-01-03T08:00:00Z",
			"updatedOn":   "2025-01-03T08:00:00Z",
			"steps": []any{
				map[string]any{"index": 1, "description": "Navigate to login page", "expectedResult": "Login form is visible"},
				map[string]any{"index": 2, "description": "Enter an invalid password", "expectedResult": "Error message is shown"},
			},
		},
		{
			"id":          "TC-3",
			"key":         "DEMO-T3",
			"name":        "Password reset email",
			"objective":   "Verify a reset email is sent",
			"description": "Covers the forgot-password flow.",
			"folderPath":  "/Authentication/Recovery",
			"status":      "Draft",
			"priority":    "Low",
			"createdOn":   "2025-01-04T08:00:00Z",
			"updatedOn":   "2025-01-04T08:00:00Z",
			"steps": []any{
				map[string]any{"index": 1, "description": "Request a password reset", "expectedResult": "Confirmation email is queued"},
			},
		},
	}
}
