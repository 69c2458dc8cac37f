package canonical

import "time"

// User is the canonical representation of a person reference (owner, creator,
// executor). Only id is required; the rest are best-effort hints carried over
// from the source system.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// Link is an arbitrary cross-reference to another entity, canonical or
// external (e.g. a Requirement id, or a raw URL kept for traceability).
type Link struct {
	Type   string `json:"type"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// Attachment carries file metadata only; storageLocation is populated by the
// binary store, never by a mapper. Content is only ever populated in memory
// when the binary store is bypassed, and must not be retained past the load
// step.
type Attachment struct {
	FileName        string    `json:"fileName"`
	FileType        string    `json:"fileType"`
	Size            int64     `json:"size"`
	StorageLocation string    `json:"storageLocation,omitempty"`
	Content         []byte    `json:"-"`
	UploadedBy      string    `json:"uploadedBy,omitempty"`
	UploadedAt      time.Time `json:"uploadedAt,omitempty"`
	Description     string    `json:"description,omitempty"`
}

// CustomField normalizes a single arbitrary system-specific field, whether it
// arrived as a flat map entry (Zephyr) or a property object (qTest).
type CustomField struct {
	Name     string          `json:"name"`
	Value    any             `json:"value"`
	Type     CustomFieldType `json:"fieldType"`
	FieldID  string          `json:"fieldId,omitempty"`
	Options  []string        `json:"options,omitempty"`
	Required bool            `json:"required,omitempty"`
	IsCustom bool            `json:"isCustom"`
}

// TestStep is one ordered action/expectation pair within a TestCase.
type TestStep struct {
	ID             string        `json:"id"`
	Order          int           `json:"order"`
	Action         string        `json:"action"`
	ExpectedResult string        `json:"expectedResult"`
	Data           string        `json:"data,omitempty"`
	IsDataDriven   bool          `json:"isDataDriven,omitempty"`
	Attachments    []Attachment  `json:"attachments,omitempty"`
	CustomFields   []CustomField `json:"customFields,omitempty"`
}

// TestCase is the canonical representation of a single test definition.
type TestCase struct {
	ID              string         `json:"id"`
	SourceSystem    string         `json:"sourceSystem"`
	ExternalID      string         `json:"externalId"`
	Name            string         `json:"name"`
	Objective       string         `json:"objective,omitempty"`
	Description     string         `json:"description,omitempty"`
	Preconditions   string         `json:"preconditions,omitempty"`
	FolderPath      string         `json:"folderPath,omitempty"`
	Status          TestCaseStatus `json:"status"`
	Priority        Priority       `json:"priority"`
	TestSteps       []TestStep     `json:"testSteps"`
	Attachments     []Attachment   `json:"attachments,omitempty"`
	Tags            []string       `json:"tags,omitempty"`
	Links           []Link         `json:"links,omitempty"`
	CustomFields    []CustomField  `json:"customFields,omitempty"`
	Automation      string         `json:"automation,omitempty"`
	Owner           *User          `json:"owner,omitempty"`
	CreatedBy       *User          `json:"createdBy,omitempty"`
	UpdatedBy       *User          `json:"updatedBy,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	Version         int            `json:"version,omitempty"`
	IsLatestVersion bool           `json:"isLatestVersion,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// Clone returns a deep copy of tc so that a mapper invocation never leaks a
// mutable reference across workflow steps; see canonical entity ownership
// rule.
func (tc *TestCase) Clone() *TestCase {
	if tc == nil {
		return nil
	}
	out := *tc
	out.TestSteps = cloneSteps(tc.TestSteps)
	out.Attachments = cloneAttachments(tc.Attachments)
	out.Tags = append([]string(nil), tc.Tags...)
	out.Links = append([]Link(nil), tc.Links...)
	out.CustomFields = cloneCustomFields(tc.CustomFields)
	out.Metadata = cloneMetadata(tc.Metadata)
	if tc.Owner != nil {
		owner := *tc.Owner
		out.Owner = &owner
	}
	if tc.CreatedBy != nil {
		u := *tc.CreatedBy
		out.CreatedBy = &u
	}
	if tc.UpdatedBy != nil {
		u := *tc.UpdatedBy
		out.UpdatedBy = &u
	}
	return &out
}

func cloneSteps(in []TestStep) []TestStep {
	if in == nil {
		return nil
	}
	out := make([]TestStep, len(in))
	for i, s := range in {
		out[i] = s
		out[i].Attachments = cloneAttachments(s.Attachments)
		out[i].CustomFields = cloneCustomFields(s.CustomFields)
	}
	return out
}

func cloneAttachments(in []Attachment) []Attachment {
	if in == nil {
		return nil
	}
	out := make([]Attachment, len(in))
	copy(out, in)
	for i := range out {
		if in[i].Content != nil {
			out[i].Content = append([]byte(nil), in[i].Content...)
		}
	}
	return out
}

func cloneCustomFields(in []CustomField) []CustomField {
	if in == nil {
		return nil
	}
	out := make([]CustomField, len(in))
	for i, f := range in {
		out[i] = f
		out[i].Options = append([]string(nil), f.Options...)
	}
	return out
}

func cloneMetadata(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// StepResult is the outcome of executing a single TestStep.
type StepResult struct {
	StepID        string          `json:"stepId"`
	Status        ExecutionStatus `json:"status"`
	ActualResult  string          `json:"actualResult,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Attachments   []Attachment    `json:"attachments,omitempty"`
	ExecutionTime int64           `json:"executionTime,omitempty"` // milliseconds
	Defects       []string        `json:"defects,omitempty"`       // Defect ids
}

// TestExecution is a single recorded run of a TestCase.
type TestExecution struct {
	ID           string         `json:"id"`
	SourceSystem string         `json:"sourceSystem"`
	ExternalID   string         `json:"externalId"`
	TestCaseID   string         `json:"testCaseId"`
	TestCycleID  string         `json:"testCycleId,omitempty"`
	Status       ExecutionStatus `json:"status"`
	Environment  string         `json:"environment,omitempty"`
	BuildVersion string         `json:"buildVersion,omitempty"`
	StartTime    time.Time      `json:"startTime"`
	EndTime      time.Time      `json:"endTime"`
	ExecutionTime int64         `json:"executionTime,omitempty"`
	ExecutedBy   *User          `json:"executedBy,omitempty"`
	StepResults  []StepResult   `json:"stepResults"`
	Attachments  []Attachment   `json:"attachments,omitempty"`
	Defects      []string       `json:"defects,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// TestSuite groups an ordered set of test cases under a folder-like path.
type TestSuite struct {
	ID           string         `json:"id"`
	SourceSystem string         `json:"sourceSystem"`
	ExternalID   string         `json:"externalId"`
	Name         string         `json:"name"`
	ParentID     string         `json:"parentId,omitempty"`
	Path         string         `json:"path,omitempty"`
	TestCaseIDs  []string       `json:"testCaseIds"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// TestCycle represents a scheduled pass of executions against a set of test
// cases within a time window.
type TestCycle struct {
	ID            string         `json:"id"`
	SourceSystem  string         `json:"sourceSystem"`
	ExternalID    string         `json:"externalId"`
	Name          string         `json:"name"`
	Status        string         `json:"status,omitempty"`
	StartDate     time.Time      `json:"startDate,omitempty"`
	EndDate       time.Time      `json:"endDate,omitempty"`
	Environment   string         `json:"environment,omitempty"`
	BuildVersion  string         `json:"buildVersion,omitempty"`
	TestCaseIDs   []string       `json:"testCaseIds"`
	ExecutionIDs  []string       `json:"executionIds"`
	FolderPath    string         `json:"folderPath,omitempty"`
	Owner         *User          `json:"owner,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Requirement is a supplemental traceability entity linked from TestCase.Links.
// It is not migrated as a primary entity type in the seed scenarios but is
// carried through when present in source data.
type Requirement struct {
	ID                string         `json:"id"`
	SourceSystem      string         `json:"sourceSystem"`
	ExternalID        string         `json:"externalId"`
	Title             string         `json:"title"`
	Description       string         `json:"description,omitempty"`
	Status            string         `json:"status,omitempty"`
	Priority          Priority       `json:"priority,omitempty"`
	LinkedTestCaseIDs []string       `json:"linkedTestCaseIds,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

// Defect is a supplemental traceability entity referenced from StepResult and
// TestExecution defect-id lists.
type Defect struct {
	ID                string         `json:"id"`
	SourceSystem      string         `json:"sourceSystem"`
	ExternalID        string         `json:"externalId"`
	Summary           string         `json:"summary"`
	Description       string         `json:"description,omitempty"`
	Status            string         `json:"status,omitempty"`
	Severity          string         `json:"severity,omitempty"`
	LinkedTestCaseID  string         `json:"linkedTestCaseId,omitempty"`
	LinkedExecutionID string         `json:"linkedExecutionId,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}
