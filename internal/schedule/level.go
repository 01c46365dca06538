package schedule

import "strings"

// SkillLevel is the closed set of recognized class levels. Unrecognized
// input is preserved verbatim under LevelOther and renders with the default
// color.
type SkillLevel struct {
	kind string
	raw  string
}

var (
	LevelFundamentals = SkillLevel{kind: "fundamentals"}
	LevelBeginner     = SkillLevel{kind: "beginner"}
	LevelIntermediate = SkillLevel{kind: "intermediate"}
	LevelAdvanced     = SkillLevel{kind: "advanced"}
)

// LevelOther wraps an unrecognized level string.
func LevelOther(raw string) SkillLevel {
	return SkillLevel{kind: "other", raw: raw}
}

// levelColors maps level kinds to calendar colors. The zero entry doubles as
// the fallback so Color is total over every input.
var levelColors = map[string]string{
	"fundamentals": "#22c55e",
	"beginner":     "#22c55e",
	"intermediate": "#f59e0b",
	"advanced":     "#ef4444",
	"other":        "#3b82f6",
}

const defaultColor = "#3b82f6"

// ParseSkillLevel resolves a free-form level string once, at input-parsing
// time. Matching is a case-insensitive substring check, so "Advanced Teens"
// resolves to LevelAdvanced.
func ParseSkillLevel(raw string) SkillLevel {
	lowered := strings.ToLower(raw)
	switch {
	case strings.Contains(lowered, "fundamentals"):
		return LevelFundamentals
	case strings.Contains(lowered, "beginner"):
		return LevelBeginner
	case strings.Contains(lowered, "intermediate"):
		return LevelIntermediate
	case strings.Contains(lowered, "advanced"):
		return LevelAdvanced
	default:
		return LevelOther(raw)
	}
}

// Color returns the calendar color for the level. Never empty.
func (l SkillLevel) Color() string {
	if c, ok := levelColors[l.kind]; ok && c != "" {
		return c
	}
	return defaultColor
}

// String renders the level for display and storage.
func (l SkillLevel) String() string {
	switch l.kind {
	case "fundamentals":
		return "Fundamentals"
	case "beginner":
		return "Beginner"
	case "intermediate":
		return "Intermediate"
	case "advanced":
		return "Advanced"
	case "other":
		return l.raw
	default:
		return ""
	}
}
