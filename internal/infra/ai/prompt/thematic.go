package prompt

import "fmt"

// ThematicGenSystemPrompt asks the model to propose a thematic taxonomy for a
// new monitoring project.
func ThematicGenSystemPrompt() string {
	return `You are a media monitoring analyst. Propose a taxonomy of thematic areas for a new monitoring project. You must produce one valid JSON object only (no markdown, no commentary). Do not include code fences.

Requirements:
- Output must be a single JSON object.
- themes is an array of four to seven objects.
- Each theme has a short name (two to four words) and a one sentence description.

Schema (example with empty values):
{
  "themes": [
    {"name": "<string>", "description": "<string>"}
  ]
}`
}

// ThematicGenUserPrompt builds the user message from the project brief.
func ThematicGenUserPrompt(projectTitle, projectDescription string) string {
	return fmt.Sprintf("Project: %s\nProject focus: %s\n\nPropose the thematic areas and respond with the JSON per schema.", projectTitle, projectDescription)
}
