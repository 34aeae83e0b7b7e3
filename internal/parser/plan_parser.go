package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedPlan is returned when a generated plan is not valid JSON or lacks required fields
var ErrMalformedPlan = errors.New("malformed plan")

// Plan is a project roadmap produced by the text generator
type Plan struct {
	ProjectName        string
	ProjectDescription string
	MiniProjects       []TaskGroup
	MajorProjects      []TaskGroup
	Tasks              []TaskSpec // flat list, used only when the groups are absent
}

// TaskGroup is a named batch of tasks (a mini or major project)
type TaskGroup struct {
	Title       string
	Description string
	Tasks       []TaskSpec
}

// TaskSpec describes one task to create
type TaskSpec struct {
	Title            string
	Description      string
	Day              int  // 1-based, always >= 1 after parsing
	EstimatedMinutes *int // nil when the plan gave no estimate
	Resources        []Resource
}

// Resource is a named link attached to a task
type Resource struct {
	Name string
	Link string
}

// HasGroups reports whether the plan uses mini/major groups rather than a flat list
func (p *Plan) HasGroups() bool {
	return p.MiniProjects != nil && p.MajorProjects != nil
}

// Flatten returns every task in creation order: all mini project tasks in group order,
// then all major project tasks. A flat plan returns its task list as is.
func (p *Plan) Flatten() []TaskSpec {
	if !p.HasGroups() {
		return p.Tasks
	}

	var tasks []TaskSpec
	for _, g := range p.MiniProjects {
		tasks = append(tasks, g.Tasks...)
	}
	for _, g := range p.MajorProjects {
		tasks = append(tasks, g.Tasks...)
	}
	return tasks
}

// StripCodeFences trims whitespace and removes markdown code fence markers
func StripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// DueDateForDay returns midnight UTC of today + (day - 1) days.
// Days below 1 count as day 1.
func DueDateForDay(today time.Time, day int) time.Time {
	if day < 1 {
		day = 1
	}
	t := today.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, day-1)
}

// ParsePlan strictly decodes a generated plan document. Fenced and unfenced
// documents parse identically. Every error wraps ErrMalformedPlan.
func ParsePlan(raw string) (*Plan, error) {
	doc, err := decodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPlan, err)
	}

	plan, err := planFromDoc(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPlan, err)
	}
	return plan, nil
}

// decodeObject strips fences and decodes exactly one JSON object
func decodeObject(raw string) (map[string]any, error) {
	cleaned := StripCodeFences(raw)
	if cleaned == "" {
		return nil, errors.New("empty document")
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("document is not an object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after document")
	}
	return doc, nil
}

func planFromDoc(doc map[string]any) (*Plan, error) {
	name, err := requiredString(doc, "project_name", "project_name")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("project_name must not be empty")
	}

	desc, err := requiredString(doc, "project_description", "project_description")
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		ProjectName:        strings.TrimSpace(name),
		ProjectDescription: strings.TrimSpace(desc),
	}

	_, hasMini := doc["mini_projects"]
	_, hasMajor := doc["major_projects"]
	rawTasks, hasTasks := doc["tasks"]

	switch {
	case hasMini && hasMajor:
		if plan.MiniProjects, err = parseGroups(doc["mini_projects"], "mini_projects"); err != nil {
			return nil, err
		}
		if plan.MajorProjects, err = parseGroups(doc["major_projects"], "major_projects"); err != nil {
			return nil, err
		}
	case hasTasks:
		if plan.Tasks, err = parseTasks(rawTasks, "tasks"); err != nil {
			return nil, err
		}
	case hasMini || hasMajor:
		return nil, errors.New("mini_projects and major_projects must both be present")
	default:
		return nil, errors.New("missing task groups: expected mini_projects and major_projects, or tasks")
	}

	return plan, nil
}

func parseGroups(v any, path string) ([]TaskGroup, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array", path)
	}

	groups := make([]TaskGroup, 0, len(items))
	for i, item := range items {
		at := fmt.Sprintf("%s[%d]", path, i)
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s must be an object", at)
		}

		title, err := optionalString(obj, "title", at+".title")
		if err != nil {
			return nil, err
		}
		desc, err := optionalString(obj, "description", at+".description")
		if err != nil {
			return nil, err
		}

		rawTasks, ok := obj["tasks"]
		if !ok {
			return nil, fmt.Errorf("%s.tasks is required", at)
		}
		tasks, err := parseTasks(rawTasks, at+".tasks")
		if err != nil {
			return nil, err
		}

		groups = append(groups, TaskGroup{Title: title, Description: desc, Tasks: tasks})
	}
	return groups, nil
}

func parseTasks(v any, path string) ([]TaskSpec, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array", path)
	}

	tasks := make([]TaskSpec, 0, len(items))
	for i, item := range items {
		task, err := parseTask(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func parseTask(v any, at string) (TaskSpec, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return TaskSpec{}, fmt.Errorf("%s must be an object", at)
	}

	title, err := requiredString(obj, "title", at+".title")
	if err != nil {
		return TaskSpec{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return TaskSpec{}, fmt.Errorf("%s.title must not be empty", at)
	}

	desc, err := optionalString(obj, "description", at+".description")
	if err != nil {
		return TaskSpec{}, err
	}

	task := TaskSpec{Title: title, Description: strings.TrimSpace(desc), Day: 1}

	if raw, ok := obj["day"]; ok && raw != nil {
		day, err := flexibleInt(raw)
		if err != nil {
			return TaskSpec{}, fmt.Errorf("%s.day: %v", at, err)
		}
		if day > 0 {
			task.Day = day
		}
	}

	if raw, ok := obj["estimated_duration_minutes"]; ok && raw != nil {
		minutes, err := flexibleInt(raw)
		if err != nil {
			return TaskSpec{}, fmt.Errorf("%s.estimated_duration_minutes: %v", at, err)
		}
		if minutes < 0 {
			return TaskSpec{}, fmt.Errorf("%s.estimated_duration_minutes must not be negative", at)
		}
		task.EstimatedMinutes = &minutes
	}

	if raw, ok := obj["resources"]; ok && raw != nil {
		task.Resources, err = parseResources(raw, at+".resources")
		if err != nil {
			return TaskSpec{}, err
		}
	}

	return task, nil
}

func parseResources(v any, path string) ([]Resource, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array", path)
	}

	resources := make([]Resource, 0, len(items))
	for i, item := range items {
		at := fmt.Sprintf("%s[%d]", path, i)
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s must be an object", at)
		}
		name, err := optionalString(obj, "name", at+".name")
		if err != nil {
			return nil, err
		}
		link, err := optionalString(obj, "link", at+".link")
		if err != nil {
			return nil, err
		}
		resources = append(resources, Resource{Name: strings.TrimSpace(name), Link: strings.TrimSpace(link)})
	}
	return resources, nil
}

func requiredString(obj map[string]any, key, path string) (string, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return "", fmt.Errorf("%s is required", path)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", path)
	}
	return s, nil
}

func optionalString(obj map[string]any, key, path string) (string, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", path)
	}
	return s, nil
}

// flexibleInt accepts JSON integers, integral floats, and numeric strings
func flexibleInt(v any) (int, error) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return integral(float64(i))
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", n)
		}
		return integral(f)
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil {
			return integral(float64(i))
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", n)
		}
		return integral(f)
	}
	return 0, fmt.Errorf("expected an integer, got %T", v)
}

func integral(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not a whole number", f)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%v is out of range", f)
	}
	return int(f), nil
}
