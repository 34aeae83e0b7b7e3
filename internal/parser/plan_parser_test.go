package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const groupedPlan = `{
  "project_name": "Backend Path",
  "project_description": "Learn to build services",
  "mini_projects": [
    {"title": "Basics", "tasks": [
      {"title": "A", "description": "first", "day": 1, "estimated_duration_minutes": 60,
       "resources": [{"name": "Tour", "link": "https://go.dev/tour"}]},
      {"title": "B", "day": 2}
    ]},
    {"title": "HTTP", "tasks": [{"title": "C", "day": 3}]}
  ],
  "major_projects": [
    {"title": "Capstone", "tasks": [{"title": "D", "day": 20, "estimated_duration_minutes": null}]}
  ]
}`

func titles(tasks []TaskSpec) []string {
	var out []string
	for _, task := range tasks {
		out = append(out, task.Title)
	}
	return out
}

func TestParsePlanGrouped(t *testing.T) {
	plan, err := ParsePlan(groupedPlan)
	require.NoError(t, err)

	assert.Equal(t, "Backend Path", plan.ProjectName)
	assert.Equal(t, "Learn to build services", plan.ProjectDescription)
	assert.True(t, plan.HasGroups())

	tasks := plan.Flatten()
	assert.Equal(t, []string{"A", "B", "C", "D"}, titles(tasks))

	require.NotNil(t, tasks[0].EstimatedMinutes)
	assert.Equal(t, 60, *tasks[0].EstimatedMinutes)
	assert.Equal(t, []Resource{{Name: "Tour", Link: "https://go.dev/tour"}}, tasks[0].Resources)
	assert.Nil(t, tasks[3].EstimatedMinutes)
	assert.Equal(t, 20, tasks[3].Day)
}

func TestParsePlanFencedMatchesUnfenced(t *testing.T) {
	plain, err := ParsePlan(groupedPlan)
	require.NoError(t, err)

	for _, raw := range []string{
		"```json\n" + groupedPlan + "\n```",
		"  \n```\n" + groupedPlan + "```\n\n",
	} {
		fenced, err := ParsePlan(raw)
		require.NoError(t, err)
		assert.Equal(t, plain, fenced)
	}
}

func TestParsePlanFlatTasks(t *testing.T) {
	plan, err := ParsePlan(`{"project_name": "P", "project_description": "", "tasks": [{"title": "only"}]}`)
	require.NoError(t, err)

	assert.False(t, plan.HasGroups())
	tasks := plan.Flatten()
	require.Len(t, tasks, 1)
	assert.Equal(t, 1, tasks[0].Day, "missing day defaults to 1")
}

func TestParsePlanGroupsWinOverTasks(t *testing.T) {
	plan, err := ParsePlan(`{"project_name": "P", "project_description": "d",
		"mini_projects": [{"tasks": [{"title": "group"}]}], "major_projects": [],
		"tasks": [{"title": "flat"}]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"group"}, titles(plan.Flatten()))
}

func TestParsePlanDay(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`5`, 5},
		{`5.0`, 5},
		{`"7"`, 7},
		{`0`, 1},
		{`-3`, 1},
		{`null`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			plan, err := ParsePlan(`{"project_name": "P", "project_description": "d", "tasks": [{"title": "t", "day": ` + tt.raw + `}]}`)
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan.Tasks[0].Day)
		})
	}
}

func TestParsePlanMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", "   "},
		{"not json", "Here is your plan!"},
		{"truncated", `{"project_name": "P"`},
		{"array", `[{"project_name": "P"}]`},
		{"null", `null`},
		{"trailing data", `{"project_name": "P", "project_description": "", "tasks": []} extra`},
		{"missing project_name", `{"project_description": "d", "tasks": []}`},
		{"empty project_name", `{"project_name": "  ", "project_description": "d", "tasks": []}`},
		{"numeric project_name", `{"project_name": 5, "project_description": "d", "tasks": []}`},
		{"missing description", `{"project_name": "P", "tasks": []}`},
		{"missing task groups", `{"project_name": "P", "project_description": "d"}`},
		{"only mini projects", `{"project_name": "P", "project_description": "d", "mini_projects": []}`},
		{"group without tasks", `{"project_name": "P", "project_description": "d", "mini_projects": [{"title": "x"}], "major_projects": []}`},
		{"groups not array", `{"project_name": "P", "project_description": "d", "mini_projects": {}, "major_projects": []}`},
		{"task without title", `{"project_name": "P", "project_description": "d", "tasks": [{"day": 1}]}`},
		{"task blank title", `{"project_name": "P", "project_description": "d", "tasks": [{"title": " "}]}`},
		{"fractional day", `{"project_name": "P", "project_description": "d", "tasks": [{"title": "t", "day": 1.5}]}`},
		{"word day", `{"project_name": "P", "project_description": "d", "tasks": [{"title": "t", "day": "soon"}]}`},
		{"negative estimate", `{"project_name": "P", "project_description": "d", "tasks": [{"title": "t", "estimated_duration_minutes": -10}]}`},
		{"resources not array", `{"project_name": "P", "project_description": "d", "tasks": [{"title": "t", "resources": "link"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := ParsePlan(tt.raw)
			assert.ErrorIs(t, err, ErrMalformedPlan)
			assert.Nil(t, plan)
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences("  {\"a\":1}  "))
	assert.Equal(t, `{"a":1}`, StripCodeFences("```{\"a\":1}```"))
}

func TestDueDateForDay(t *testing.T) {
	today := time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC), DueDateForDay(today, 5))
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), DueDateForDay(today, 1))
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), DueDateForDay(today, 0))
	assert.Equal(t, time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC), DueDateForDay(today, 31))

	// The UTC calendar date decides "today"
	tokyo := time.FixedZone("JST", 9*3600)
	lateNight := time.Date(2024, 1, 11, 2, 0, 0, 0, tokyo) // 2024-01-10 17:00 UTC
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), DueDateForDay(lateNight, 1))
}
