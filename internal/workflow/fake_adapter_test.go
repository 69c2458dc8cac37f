package workflow_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/cedricziel/migrated/internal/adapter"
	"github.com/cedricziel/migrated/internal/mapper"
)

// fakeSession is a minimal adapter.Session double.
type fakeSession struct{ system string }

func (f *fakeSession) SystemName() string { return f.system }
func (f *fakeSession) Close() error       { return nil }

// fakeAdapter serves a fixed, in-memory record set and can be told to fail
// its ListTestCases calls while failExtract is set, to exercise the extract-failure-then-resume
// scenario without any real network dependency.
type fakeAdapter struct {
	system     string
	records    []mapper.SourceRecord
	created    []mapper.SourceRecord
	failExtract bool
	connectErr  error
}

func (f *fakeAdapter) Connect(ctx context.Context, config map[string]any) (adapter.Session, error) {
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	return &fakeSession{system: f.system}, nil
}

func (f *fakeAdapter) ListTestCases(ctx context.Context, session adapter.Session, projectKey, cursor string, filters adapter.Filters) (adapter.Page, error) {
	if f.failExtract {
		return adapter.Page{}, errors.New("simulated transient network failure")
	}
	return adapter.Page{Records: f.records}, nil
}

func (f *fakeAdapter) CreateTestCase(ctx context.Context, session adapter.Session, record mapper.SourceRecord) (string, error) {
	f.created = append(f.created, record)
	return fmt.Sprintf("created-%d", len(f.created)), nil
}

func (f *fakeAdapter) ListTestExecutions(ctx context.Context, session adapter.Session, projectKey, cursor string, filters adapter.Filters) (adapter.Page, error) {
	return adapter.Page{}, nil
}
func (f *fakeAdapter) CreateTestExecution(ctx context.Context, session adapter.Session, record mapper.SourceRecord) (string, error) {
	return "", nil
}
func (f *fakeAdapter) ListTestSuites(ctx context.Context, session adapter.Session, projectKey, cursor string, filters adapter.Filters) (adapter.Page, error) {
	return adapter.Page{}, nil
}
func (f *fakeAdapter) CreateTestSuite(ctx context.Context, session adapter.Session, record mapper.SourceRecord) (string, error) {
	return "", nil
}
func (f *fakeAdapter) ListTestCycles(ctx context.Context, session adapter.Session, projectKey, cursor string, filters adapter.Filters) (adapter.Page, error) {
	return adapter.Page{}, nil
}
func (f *fakeAdapter) CreateTestCycle(ctx context.Context, session adapter.Session, record mapper.SourceRecord) (string, error) {
	return "", nil
}
func (f *fakeAdapter) UploadAttachment(ctx context.Context, session adapter.Session, bytes []byte, meta adapter.AttachmentMetadata) (string, error) {
	return "", nil
}
