package prompt

import (
	"fmt"
	"strings"
)

// ExtractSystemPrompt provides strict directions and schema for structured
// field extraction from an article.
func ExtractSystemPrompt() string {
	return `You are a media monitoring analyst. Extract structured fields from a news article. You must produce one valid JSON object only (no markdown, no commentary). Do not include code fences.

Requirements:
- Output must be a single JSON object with exactly the keys in the schema.
- stakeholders is an array of strings naming people or organizations involved.
- Use an empty string or empty array when the article gives no answer for a field. Never omit a key.

Schema (example with empty values):
{
  "industry_name": "<string>",
  "industry_tactic": "<string>",
  "stakeholders": [],
  "targeted_policy": "<string>",
  "geographical_focus": "<string>",
  "outcome_impact": "<string>"
}`
}

// ExtractUserPrompt builds the user message around the article text.
func ExtractUserPrompt(articleTitle, articleBody string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Article title: %s\n", articleTitle)
	fmt.Fprintf(&b, "Article body:\n%s\n", articleBody)
	b.WriteString("\nExtract the fields and respond with the JSON per schema.")
	return b.String()
}
