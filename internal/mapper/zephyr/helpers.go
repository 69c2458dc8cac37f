package zephyr

import (
	"time"

	"github.com/cedricziel/migrated/internal/canonical"
	"github.com/cedricziel/migrated/internal/mapper/mapcommon"
)

func stringField(source map[string]any, key string) string { return mapcommon.StringField(source, key) }
func intField(source map[string]any, key string) int        { return mapcommon.IntField(source, key) }
func toInt(v any) (int, bool)                                { return mapcommon.ToInt(v) }
func upper(s string) string                                  { return mapcommon.Upper(s) }
func parseTime(v any) time.Time                               { return mapcommon.ParseTime(v) }
func determineFieldType(v any) canonical.CustomFieldType      { return mapcommon.DetermineFieldType(v) }
