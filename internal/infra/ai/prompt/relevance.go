package prompt

import (
	"fmt"
	"strings"
)

// RelevanceSystemPrompt provides strict directions and schema for the
// relevance verdict JSON output.
func RelevanceSystemPrompt() string {
	return `You are a media monitoring analyst. Decide whether a news article is relevant to a monitoring project. You must produce one valid JSON object only (no markdown, no commentary). Do not include code fences.

Requirements:
- Output must be a single JSON object.
- relevant is a boolean.
- confidence is an integer between 0 and 100.
- reason is one or two short sentences explaining the verdict.
- summary is a two or three sentence neutral summary of the article.

Schema (example with empty values):
{
  "relevant": false,
  "confidence": 0,
  "reason": "<string>",
  "summary": "<string>"
}`
}

// RelevanceUserPrompt builds the user message from the project brief and the
// article. The body is truncated to previewChars to keep the request compact.
func RelevanceUserPrompt(projectTitle, projectDescription, articleTitle, articleBody string, previewChars int) string {
	body := truncate(articleBody, previewChars)
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n", projectTitle)
	if projectDescription != "" {
		fmt.Fprintf(&b, "Project focus: %s\n", projectDescription)
	}
	fmt.Fprintf(&b, "\nArticle title: %s\n", articleTitle)
	fmt.Fprintf(&b, "Article body:\n%s\n", body)
	b.WriteString("\nIs this article relevant to the project? Respond with the JSON per schema.")
	return b.String()
}
