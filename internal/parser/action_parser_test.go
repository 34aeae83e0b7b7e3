package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAgentAction(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want AgentAction
	}{
		{"answer", `{"action": "answer", "response": "Start with task 3."}`, AgentAction{Action: ActionAnswer, Response: "Start with task 3."}},
		{"create", "```json\n{\"action\": \"create_project\", \"goal\": \"Learn Rust\"}\n```", AgentAction{Action: ActionCreateProject, Goal: "Learn Rust"}},
		{"add task", `{"action": "ADD_TASK", "title": " Write tests "}`, AgentAction{Action: ActionAddTask, Title: "Write tests"}},
		{"unknown kept", `{"action": "dance"}`, AgentAction{Action: "dance"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAgentAction(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseAgentActionMalformed(t *testing.T) {
	for _, raw := range []string{
		"sure, I can help",
		`{"response": "no action"}`,
		`{"action": 3}`,
		`{"action": "answer", "response": ["a"]}`,
	} {
		_, err := ParseAgentAction(raw)
		assert.ErrorIs(t, err, ErrMalformedAction, raw)
	}
}
