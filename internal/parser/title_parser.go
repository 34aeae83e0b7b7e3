package parser

import (
	"regexp"
	"strings"
	"time"
)

var (
	tagRegex      = regexp.MustCompile(`#([a-zA-Z0-9_,-]+)`)
	projectRegex  = regexp.MustCompile(`@([a-zA-Z0-9_-]+)`)
	priorityRegex = regexp.MustCompile(`\+([a-zA-Z0-9]+)`)
	dueRegex      = regexp.MustCompile(`due:([^\s]+)`)
)

// ParsedTask represents a task parsed from natural language
type ParsedTask struct {
	Title    string
	Project  string
	Tags     []string
	Priority string // normalized to low/medium/high, empty when not given
	DueDate  *time.Time
	Errors   []string
}

// ParseTitle extracts metadata from a task title using natural syntax
// Syntax: "Task title #tag1,tag2 @project +priority due:3days"
func ParseTitle(input string) ParsedTask {
	return ParseTitleAt(input, time.Now())
}

// ParseTitleAt is ParseTitle with relative due dates computed from now
func ParseTitleAt(input string, now time.Time) ParsedTask {
	result := ParsedTask{
		Title:  input,
		Tags:   []string{},
		Errors: []string{},
	}

	// Extract tags (#tag1,tag2 or #tag1 #tag2)
	for _, match := range tagRegex.FindAllStringSubmatch(input, -1) {
		if len(match) > 1 {
			// Split by comma in case of #tag1,tag2
			for _, tag := range strings.Split(match[1], ",") {
				tag = strings.TrimSpace(tag)
				if tag != "" {
					result.Tags = append(result.Tags, tag)
				}
			}
		}
	}
	input = tagRegex.ReplaceAllString(input, "")

	// Extract project (@project-name)
	if m := projectRegex.FindStringSubmatch(input); len(m) > 1 {
		result.Project = m[1]
		input = projectRegex.ReplaceAllString(input, "")
	}

	// Extract priority (+high, +3, +med, etc.)
	if m := priorityRegex.FindStringSubmatch(input); len(m) > 1 {
		priority := strings.ToLower(m[1])
		if isValidPriority(priority) {
			result.Priority = NormalizePriority(priority)
		} else {
			result.Errors = append(result.Errors, "Invalid priority '"+m[1]+"'. Use: low, medium, high, 1, 2, or 3")
		}
		input = priorityRegex.ReplaceAllString(input, "")
	}

	// Extract due date (due:3days, due:15/12/2024, etc.)
	if m := dueRegex.FindStringSubmatch(input); len(m) > 1 {
		dueDate, err := ParseDueDateAt(expandCompactRelative(m[1]), now)
		if err != nil {
			result.Errors = append(result.Errors, "Invalid due date '"+m[1]+"': "+err.Error())
		} else {
			result.DueDate = dueDate
		}
		input = dueRegex.ReplaceAllString(input, "")
	}

	// Clean up the title (remove extra spaces)
	result.Title = strings.Join(strings.Fields(input), " ")

	return result
}

var compactRelative = regexp.MustCompile(`^(\d+)([a-zA-Z]+)$`)

// expandCompactRelative turns "3days" into "3 days"
func expandCompactRelative(s string) string {
	if m := compactRelative.FindStringSubmatch(s); len(m) == 3 {
		return m[1] + " " + m[2]
	}
	return s
}

// isValidPriority checks if a priority value is valid
func isValidPriority(priority string) bool {
	validPriorities := map[string]bool{
		"low":    true,
		"medium": true,
		"med":    true,
		"high":   true,
		"1":      true,
		"2":      true,
		"3":      true,
	}
	return validPriorities[priority]
}

// NormalizePriority converts priority to standard form
func NormalizePriority(priority string) string {
	priority = strings.ToLower(strings.TrimSpace(priority))
	switch priority {
	case "1", "low":
		return "low"
	case "2", "medium", "med":
		return "medium"
	case "3", "high":
		return "high"
	default:
		return ""
	}
}
