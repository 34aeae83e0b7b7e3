package agent

import (
	"fmt"
	"strings"

	"github.com/planora/planora/internal/models"
)

const noProjectContext = "No specific project is currently selected."

const chatPromptTemplate = `You are 'Planora Agent', an AI that helps users manage their projects.
Your task is to analyze the user's message and the current project context, then decide on one of three actions: 'answer', 'create_project', or 'add_task'.
You MUST respond with a single, clean JSON object and nothing else.

--- CONTEXT ---
%s
--- END CONTEXT ---

User's Message: "%s"

--- INSTRUCTIONS ---
1. If the user is asking a question about the current project, choose the 'answer' action. Provide a helpful text response.
2. If the user wants to create a brand NEW project (e.g., "make a new project for...", "generate a plan for..."), choose the 'create_project' action. The 'goal' should be the user's stated objective.
3. If the user wants to add a new task to the CURRENTLY selected project (e.g., "add a task to...", "we need to do X"), choose the 'add_task' action. The 'title' should be the task's name.

Choose one of the following JSON formats for your response:
- For answering questions: {"action": "answer", "response": "Your helpful answer here."}
- For creating a new project: {"action": "create_project", "goal": "The user's goal for the new project."}
- For adding a task to the current project: {"action": "add_task", "title": "The title of the new task."}
`

// BuildChatPrompt renders the classification instruction for message.
// project may be nil when no project is selected.
func BuildChatPrompt(project *models.Project, tasks []models.Task, message string) string {
	return fmt.Sprintf(chatPromptTemplate, projectContext(project, tasks), message)
}

func projectContext(project *models.Project, tasks []models.Task) string {
	if project == nil {
		return noProjectContext
	}

	var b strings.Builder
	b.WriteString("The user is currently focused on the following project:\n")
	fmt.Fprintf(&b, "Project ID: %d\n", project.ID)
	fmt.Fprintf(&b, "Project Name: %s\n", project.Name)
	fmt.Fprintf(&b, "Project Description: %s\n", project.Description)
	b.WriteString("Tasks in this project:")
	if len(tasks) == 0 {
		b.WriteString(" none")
	}
	for _, t := range tasks {
		fmt.Fprintf(&b, "\n- Task ID %d: '%s' (Status: %s)", t.ID, t.Title, t.Status)
	}
	return b.String()
}
