// Package zephyr implements the Zephyr Scale test-case and test-execution
// mappers, grounded on the source system's zephyr_mapper.py reference
// implementation.
package zephyr

import (
	"fmt"
	"time"

	"github.com/cedricziel/migrated/internal/canonical"
	"github.com/cedricziel/migrated/internal/mapper"
)

const SystemName = "zephyr"

// TestCaseMapper converts between Zephyr Scale's test-case JSON shape and the
// canonical model.
type TestCaseMapper struct{}

var _ mapper.TestCaseMapper = TestCaseMapper{}

func (TestCaseMapper) SystemName() string          { return SystemName }
func (TestCaseMapper) EntityType() mapper.EntityType { return mapper.EntityTestCase }

// ToCanonical converts a Zephyr test-case record into the canonical model.
// Zephyr stores steps under "steps" keyed by "index"; it stores custom
// fields as a flat "customFields" map; labels become canonical tags.
func (m TestCaseMapper) ToCanonical(source mapper.SourceRecord, ctx *canonical.TransformationContext) (*canonical.TestCase, error) {
	tc := &canonical.TestCase{
		SourceSystem:  SystemName,
		ID:            stringField(source, "id"),
		ExternalID:    stringField(source, "key"),
		Name:          stringField(source, "name"),
		Objective:     stringField(source, "objective"),
		Description:   stringField(source, "description"),
		Preconditions: stringField(source, "precondition"),
		FolderPath:    stringField(source, "folderPath"),
		Status:        m.statusToCanonical(stringField(source, "status")),
		Priority:      m.priorityToCanonical(stringField(source, "priority")),
		CreatedAt:     parseTime(source["createdOn"]),
		UpdatedAt:     parseTime(source["updatedOn"]),
	}

	if steps, ok := source["steps"].([]any); ok {
		ts, err := m.mapStepsToCanonical(steps)
		if err != nil {
			return nil, err
		}
		tc.TestSteps = ts
	}

	if owner := stringField(source, "owner"); owner != "" {
		tc.Owner = &canonical.User{ID: owner}
	}
	if createdBy := stringField(source, "createdBy"); createdBy != "" {
		tc.CreatedBy = &canonical.User{ID: createdBy}
	}

	if labels, ok := source["labels"].([]any); ok {
		for _, l := range labels {
			if s, ok := l.(string); ok {
				tc.Tags = append(tc.Tags, s)
			}
		}
	}

	if attachments, ok := source["attachments"].([]any); ok {
		tc.Attachments = m.mapAttachmentsToCanonical(attachments)
	}

	if fields, ok := source["customFields"].(map[string]any); ok {
		tc.CustomFields = m.MapCustomFields(fields, ctx)
	}

	return tc, nil
}

// FromCanonical converts the canonical model back into Zephyr's wire shape.
func (m TestCaseMapper) FromCanonical(tc *canonical.TestCase, ctx *canonical.TransformationContext) (mapper.SourceRecord, error) {
	out := mapper.SourceRecord{
		"id":           tc.ID,
		"key":          tc.ExternalID,
		"name":         tc.Name,
		"objective":    tc.Objective,
		"description":  tc.Description,
		"precondition": tc.Preconditions,
		"folderPath":   tc.FolderPath,
		"status":       m.statusFromCanonical(tc.Status),
		"priority":     m.priorityFromCanonical(tc.Priority),
	}

	if !tc.CreatedAt.IsZero() {
		out["createdOn"] = tc.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !tc.UpdatedAt.IsZero() {
		out["updatedOn"] = tc.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if tc.Owner != nil {
		out["owner"] = tc.Owner.ID
	}
	if tc.CreatedBy != nil {
		out["createdBy"] = tc.CreatedBy.ID
	}
	if len(tc.Tags) > 0 {
		labels := make([]any, len(tc.Tags))
		for i, t := range tc.Tags {
			labels[i] = t
		}
		out["labels"] = labels
	}

	out["steps"] = m.mapStepsFromCanonical(tc.TestSteps)

	if len(tc.CustomFields) > 0 {
		fields := map[string]any{}
		for _, f := range tc.CustomFields {
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
			fields[name] = value
		}
		out["customFields"] = fields
	}

	return out, nil
}

// ValidateMapping reports discrepancies between the source record and the
// canonical record produced from it.
func (m TestCaseMapper) ValidateMapping(source mapper.SourceRecord, target *canonical.TestCase) []string {
	var messages []string
	if target.ID == "" && stringField(source, "id") != "" {
		messages = append(messages, "test case id was not preserved")
	}
	if target.Name == "" && stringField(source, "name") != "" {
		messages = append(messages, "test case name was not preserved")
	}
	if steps, ok := source["steps"].([]any); ok {
		if len(steps) != len(target.TestSteps) {
			messages = append(messages, fmt.Sprintf("step count mismatch: source had %d, canonical has %d", len(steps), len(target.TestSteps)))
		}
	}
	if raw := stringField(source, "status"); raw != "" {
		if _, ok := zephyrStatusToCanonical[upper(raw)]; !ok {
			messages = append(messages, fmt.Sprintf("unrecognized status %q, defaulted to DRAFT", raw))
		}
	}
	if raw := stringField(source, "priority"); raw != "" {
		if _, ok := zephyrPriorityToCanonical[upper(raw)]; !ok {
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
			return nil, fmt.Errorf("zephyr step %d: not an object", i)
		}
		order := i + 1
		if idx, ok := step["index"]; ok {
			if n, ok := toInt(idx); ok {
				order = n
			}
		}
		out = append(out, canonical.TestStep{
			ID:             stringField(step, "id"),
			Order:          order,
			Action:         stringField(step, "description"),
			ExpectedResult: stringField(step, "expectedResult"),
			Data:           stringField(step, "testData"),
		})
	}
	return out, nil
}

func (m TestCaseMapper) mapStepsFromCanonical(steps []canonical.TestStep) []any {
	out := make([]any, len(steps))
	for i, s := range steps {
		out[i] = map[string]any{
			"index":          s.Order,
			"description":    s.Action,
			"expectedResult": s.ExpectedResult,
			"testData":       s.Data,
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
			FileName:    stringField(a, "filename"),
			FileType:    stringField(a, "contentType"),
			Size:        int64(intField(a, "fileSize")),
			Description: stringField(a, "comment"),
		})
	}
	return out
}

// MapCustomFields normalizes Zephyr's flat custom-field map into the
// canonical list shape.
func (m TestCaseMapper) MapCustomFields(fields map[string]any, ctx *canonical.TransformationContext) []canonical.CustomField {
	out := make([]canonical.CustomField, 0, len(fields))
	for name, value := range fields {
		out = append(out, canonical.CustomField{
			Name:     name,
			Value:    value,
			Type:     determineFieldType(value),
			IsCustom: true,
		})
	}
	return out
}

var zephyrStatusToCanonical = map[string]canonical.TestCaseStatus{
	"DRAFT":      canonical.StatusDraft,
	"READY":      canonical.StatusReady,
	"APPROVED":   canonical.StatusApproved,
	"DEPRECATED": canonical.StatusDeprecated,
	"OBSOLETE":   canonical.StatusDeprecated,
	"ARCHIVED":   canonical.StatusArchived,
}

func (m TestCaseMapper) statusToCanonical(s string) canonical.TestCaseStatus {
	if status, ok := zephyrStatusToCanonical[upper(s)]; ok {
		return status
	}
	return canonical.StatusDraft
}

func (m TestCaseMapper) statusFromCanonical(s canonical.TestCaseStatus) string {
	switch s {
	case canonical.StatusDraft:
		return "DRAFT"
	case canonical.StatusReady:
		return "READY"
	case canonical.StatusApproved:
		return "APPROVED"
	case canonical.StatusDeprecated:
		return "DEPRECATED"
	case canonical.StatusArchived:
		return "ARCHIVED"
	default:
		return "DRAFT"
	}
}

var zephyrPriorityToCanonical = map[string]canonical.Priority{
	"LOW":      canonical.PriorityLow,
	"MEDIUM":   canonical.PriorityMedium,
	"HIGH":     canonical.PriorityHigh,
	"CRITICAL": canonical.PriorityCritical,
	"HIGHEST":  canonical.PriorityCritical,
}

func (m TestCaseMapper) priorityToCanonical(p string) canonical.Priority {
	if priority, ok := zephyrPriorityToCanonical[upper(p)]; ok {
		return priority
	}
	return canonical.PriorityMedium
}

func (m TestCaseMapper) priorityFromCanonical(p canonical.Priority) string {
	switch p {
	case canonical.PriorityLow:
		return "LOW"
	case canonical.PriorityMedium:
		return "MEDIUM"
	case canonical.PriorityHigh:
		return "HIGH"
	case canonical.PriorityCritical:
		return "CRITICAL"
	default:
		return "MEDIUM"
	}
}
