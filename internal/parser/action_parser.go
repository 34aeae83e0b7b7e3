package parser

import (
	"errors"
	"fmt"
	"strings"
)

// Agent actions the model may choose
const (
	ActionAnswer        = "answer"
	ActionCreateProject = "create_project"
	ActionAddTask       = "add_task"
)

// ErrMalformedAction is returned when the agent's reply cannot be decoded
var ErrMalformedAction = errors.New("malformed agent action")

// AgentAction is the model's decision about a chat message
type AgentAction struct {
	Action   string
	Response string // for answer
	Goal     string // for create_project
	Title    string // for add_task
}

// ParseAgentAction decodes the agent's JSON reply. Only action is required;
// unknown actions are returned as is for the caller to reject.
func ParseAgentAction(raw string) (*AgentAction, error) {
	doc, err := decodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAction, err)
	}

	action, err := requiredString(doc, "action", "action")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAction, err)
	}

	result := &AgentAction{Action: strings.ToLower(strings.TrimSpace(action))}
	for key, dst := range map[string]*string{
		"response": &result.Response,
		"goal":     &result.Goal,
		"title":    &result.Title,
	} {
		s, err := optionalString(doc, key, key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAction, err)
		}
		*dst = strings.TrimSpace(s)
	}

	return result, nil
}
