// Package qtest implements the qTest test-case and test-execution mappers,
// grounded on the source system's qtest_mapper.py reference implementation.
//
// Two deliberate deviations from that reference are documented in
// DESIGN.md: the priority-code space is extended to five values to satisfy
// the pinned HIGH<->1 / MEDIUM<->3 contract while still covering a CRITICAL
// canonical level, and dates are represented as millisecond epoch timestamps
// rather than raw ISO-8601 strings.
package qtest

import (
	"fmt"
	"strconv"

	"github.com/cedricziel/migrated/internal/canonical"
	"github.com/cedricziel/migrated/internal/mapper"
	"github.com/cedricziel/migrated/internal/mapper/mapcommon"
)

const SystemName = "qtest"

// TestCaseMapper converts between qTest's test-case JSON shape and the
// canonical model.
type TestCaseMapper struct{}

var _ mapper.TestCaseMapper = TestCaseMapper{}

func (TestCaseMapper) SystemName() string            { return SystemName }
func (TestCaseMapper) EntityType() mapper.EntityType { return mapper.EntityTestCase }

var structuralFields = map[string]bool{
	"priority":      true,
	"status":        true,
	"objective":     true,
	"precondition":  true,
}

// ToCanonical converts a qTest test-case record into the canonical model.
// qTest carries objective/preconditions/priority/status inside a
// "properties" list of {field_name, field_value} objects rather than as
// top-level keys.
func (m TestCaseMapper) ToCanonical(source mapper.SourceRecord, ctx *canonical.TransformationContext) (*canonical.TestCase, error) {
	props := propertyList(source)

	tc := &canonical.TestCase{
		SourceSystem: SystemName,
		ID:           idString(source["id"]),
		ExternalID:   idString(source["parent_id"]),
		Name:         mapcommon.StringField(source, "name"),
		Objective:    propertyValue(props, "Objective"),
		Preconditions: propertyValue(props, "Precondition"),
		FolderPath:   idString(source["parent_id"]),
		Status:       m.statusToCanonical(props),
		Priority:     m.priorityToCanonical(props),
		CreatedAt:    mapcommon.ParseTime(source["created_date"]),
		UpdatedAt:    mapcommon.ParseTime(source["last_modified_date"]),
	}

	if steps, ok := source["test_steps"].([]any); ok {
		ts, err := m.mapStepsToCanonical(steps)
		if err != nil {
			return nil, err
		}
		tc.TestSteps = ts
	}

	if createdBy := mapcommon.StringField(source, "created_by"); createdBy != "" {
		tc.CreatedBy = &canonical.User{ID: createdBy}
	}
	if modifiedBy := mapcommon.StringField(source, "last_modified_by"); modifiedBy != "" {
		tc.UpdatedBy = &canonical.User{ID: modifiedBy}
	}

	if tags, ok := source["tags"].([]any); ok {
		for _, t := range tags {
			if s, ok := t.(string); ok {
				tc.Tags = append(tc.Tags, s)
			}
		}
	}

	if attachments, ok := source["attachments"].([]any); ok {
		tc.Attachments = m.mapAttachmentsToCanonical(attachments)
	}

	tc.CustomFields = m.MapCustomFields(props, ctx)

	return tc, nil
}

// FromCanonical converts the canonical model back into qTest's wire shape.
func (m TestCaseMapper) FromCanonical(tc *canonical.TestCase, ctx *canonical.TransformationContext) (mapper.SourceRecord, error) {
	props := []any{
		property("Objective", tc.Objective),
		property("Precondition", tc.Preconditions),
		property("Priority", m.priorityFromCanonical(tc.Priority)),
		property("Status", m.statusFromCanonical(tc.Status)),
	}

	for _, f := range tc.CustomFields {
		if structuralFields[mapcommon.Lower(f.Name)] {
			continue
		}
		value := f.Value
		if ctx != nil {
			if s, ok := value.(string); ok {
				value = ctx.MapValue(f.Name, s)
			}
		}
		name := f.Name
		if ctx != nil {
			name = ctx.RenameField(name)
		}
		props = append(props, property(name, value))
	}

	out := mapper.SourceRecord{
		"id":   tc.ID,
		"name": tc.Name,
		"properties": props,
	}

	if parentID, err := strconv.Atoi(tc.FolderPath); err == nil {
		out["parent_id"] = parentID
	} else if tc.FolderPath != "" {
		out["parent_id"] = tc.FolderPath
	}

	if !tc.CreatedAt.IsZero() {
		out["created_date"] = tc.CreatedAt.UTC().UnixMilli()
	}
	if !tc.UpdatedAt.IsZero() {
		out["last_modified_date"] = tc.UpdatedAt.UTC().UnixMilli()
	}
	if tc.CreatedBy != nil {
		out["created_by"] = tc.CreatedBy.ID
	}
	if tc.UpdatedBy != nil {
		out["last_modified_by"] = tc.UpdatedBy.ID
	}
	if len(tc.Tags) > 0 {
		tags := make([]any, len(tc.Tags))
		for i, t := range tc.Tags {
			tags[i] = t
		}
		out["tags"] = tags
	}

	out["test_steps"] = m.mapStepsFromCanonical(tc.TestSteps)

	return out, nil
}

// ValidateMapping reports discrepancies between the source record and the
// canonical record produced from it.
func (m TestCaseMapper) ValidateMapping(source mapper.SourceRecord, target *canonical.TestCase) []string {
	var messages []string
	if target.ID == "" && source["id"] != nil {
		messages = append(messages, "test case id was not preserved")
	}
	if target.Name == "" && mapcommon.StringField(source, "name") != "" {
		messages = append(messages, "test case name was not preserved")
	}
	if steps, ok := source["test_steps"].([]any); ok {
		if len(steps) != len(target.TestSteps) {
			messages = append(messages, fmt.Sprintf("step count mismatch: source had %d, canonical has %d", len(steps), len(target.TestSteps)))
		}
	}

	props := propertyList(source)
	if raw := statusProperty(props); raw != "" {
		if _, ok := qtestStatusToCanonical[mapcommon.Lower(raw)]; !ok {
			messages = append(messages, fmt.Sprintf("unrecognized status %q, defaulted to DRAFT", raw))
		}
	}
	if raw := priorityProperty(props); raw != "" {
		if _, ok := qtestPriorityToCanonical[mapcommon.Lower(raw)]; !ok {
			messages = append(messages, fmt.Sprintf("unrecognized priority %q, defaulted to MEDIUM", raw))
		}
	}
	return messages
}

func (m TestCaseMapper) mapStepsToCanonical(steps []any) ([]canonical.TestStep, error) {
	out := make([]canonical.TestStep, 0, len(steps))
	for i, raw := range steps {
		step, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("qtest step %d: not an object", i)
		}
		order := i + 1
		if n, ok := mapcommon.ToInt(step["order"]); ok && n > 0 {
			order = n
		}
		out = append(out, canonical.TestStep{
			ID:             idString(step["id"]),
			Order:          order,
			Action:         mapcommon.StringField(step, "description"),
			ExpectedResult: mapcommon.StringField(step, "expected_result"),
			Data:           mapcommon.StringField(step, "test_data"),
		})
	}
	return out, nil
}

func (m TestCaseMapper) mapStepsFromCanonical(steps []canonical.TestStep) []any {
	out := make([]any, len(steps))
	for i, s := range steps {
		out[i] = map[string]any{
			"order":           s.Order,
			"description":     s.Action,
			"expected_result": s.ExpectedResult,
			"test_data":       s.Data,
		}
	}
	return out
}

func (m TestCaseMapper) mapAttachmentsToCanonical(attachments []any) []canonical.Attachment {
	out := make([]canonical.Attachment, 0, len(attachments))
	for _, raw := range attachments {
		a, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, canonical.Attachment{
			FileName:    mapcommon.StringField(a, "name"),
			FileType:    mapcommon.StringField(a, "content_type"),
			Size:        int64(mapcommon.IntField(a, "size")),
			Description: mapcommon.StringField(a, "description"),
		})
	}
	return out
}

// MapCustomFields normalizes qTest's properties list into the canonical
// list, excluding the structural fields (priority/status/objective/
// precondition) that are first-class on TestCase rather than round-tripped
// through custom fields.
func (m TestCaseMapper) MapCustomFields(props []any, ctx *canonical.TransformationContext) []canonical.CustomField {
	var out []canonical.CustomField
	for _, raw := range props {
		p, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		name := mapcommon.StringField(p, "field_name")
		if name == "" || structuralFields[mapcommon.Lower(name)] {
			continue
		}
		value := p["field_value"]
		out = append(out, canonical.CustomField{
			Name:     name,
			Value:    value,
			Type:     mapcommon.DetermineFieldType(value),
			FieldID:  mapcommon.StringField(p, "field_id"),
			IsCustom: true,
		})
	}
	return out
}

func propertyList(source mapper.SourceRecord) []any {
	props, _ := source["properties"].([]any)
	return props
}

func propertyValue(props []any, fieldName string) string {
	for _, raw := range props {
		p, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if mapcommon.StringField(p, "field_name") == fieldName {
			return mapcommon.StringField(p, "field_value")
		}
	}
	return ""
}

func property(name string, value any) map[string]any {
	return map[string]any{"field_name": name, "field_value": value}
}

func idString(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		return strconv.FormatInt(int64(n), 10)
	default:
		return ""
	}
}

var qtestStatusToCanonical = map[string]canonical.TestCaseStatus{
	"1":              canonical.StatusDraft,
	"2":              canonical.StatusReady,
	"3":              canonical.StatusApproved,
	"4":              canonical.StatusDraft,
	"5":              canonical.StatusReady,
	"6":              canonical.StatusDeprecated,
	"approved":       canonical.StatusApproved,
	"unapproved":     canonical.StatusDraft,
	"draft":          canonical.StatusDraft,
	"needs work":     canonical.StatusDraft,
	"needs update":   canonical.StatusDraft,
	"ready to review": canonical.StatusReady,
	"ready for review": canonical.StatusReady,
	"ready":          canonical.StatusReady,
	"deprecated":     canonical.StatusDeprecated,
	"obsolete":       canonical.StatusDeprecated,
}

func statusProperty(props []any) string {
	if raw := propertyValue(props, "Status"); raw != "" {
		return raw
	}
	return propertyValue(props, "status")
}

func (m TestCaseMapper) statusToCanonical(props []any) canonical.TestCaseStatus {
	if status, ok := qtestStatusToCanonical[mapcommon.Lower(statusProperty(props))]; ok {
		return status
	}
	return canonical.StatusDraft
}

func (m TestCaseMapper) statusFromCanonical(s canonical.TestCaseStatus) string {
	switch s {
	case canonical.StatusDraft:
		return "1"
	case canonical.StatusReady:
		return "5"
	case canonical.StatusApproved:
		return "3"
	case canonical.StatusDeprecated:
		return "6"
	case canonical.StatusArchived:
		return "6"
	default:
		return "1"
	}
}

// qtestPriorityToCanonical implements the extended five-value code space
// documented in DESIGN.md: HIGH<->"1" and MEDIUM<->"3" are pinned by the
// binding contract; LOW<->"4" is carried over from the reference mapping;
// CRITICAL<->"5" is this implementation's extension since the native
// four-value qTest scale has no slot for it.
var qtestPriorityToCanonical = map[string]canonical.Priority{
	"1":        canonical.PriorityHigh,
	"3":        canonical.PriorityMedium,
	"4":        canonical.PriorityLow,
	"5":        canonical.PriorityCritical,
	"critical": canonical.PriorityCritical,
	"high":     canonical.PriorityHigh,
	"medium":   canonical.PriorityMedium,
	"low":      canonical.PriorityLow,
}

func priorityProperty(props []any) string {
	if raw := propertyValue(props, "Priority"); raw != "" {
		return raw
	}
	return propertyValue(props, "priority")
}

func (m TestCaseMapper) priorityToCanonical(props []any) canonical.Priority {
	if priority, ok := qtestPriorityToCanonical[mapcommon.Lower(priorityProperty(props))]; ok {
		return priority
	}
	return canonical.PriorityMedium
}

func (m TestCaseMapper) priorityFromCanonical(p canonical.Priority) string {
	switch p {
	case canonical.PriorityLow:
		return "4"
	case canonical.PriorityMedium:
		return "3"
	case canonical.PriorityHigh:
		return "1"
	case canonical.PriorityCritical:
		return "5"
	default:
		return "3"
	}
}
