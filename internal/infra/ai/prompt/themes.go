package prompt

import (
	"fmt"
	"strings"
)

// Theme is one taxonomy entry offered to the classifier.
type Theme struct {
	ID          string
	Name        string
	Description string
}

// ThemesSystemPrompt instructs the model to pick matching theme ids only from
// the supplied taxonomy.
func ThemesSystemPrompt() string {
	return `You are a media monitoring analyst. Classify a news article against a fixed taxonomy of thematic areas. You must produce one valid JSON object only (no markdown, no commentary). Do not include code fences.

Requirements:
- Output must be a single JSON object.
- theme_ids is an array of strings.
- Every entry in theme_ids must be an id copied verbatim from the taxonomy given in the user message.
- Never invent ids. If no theme applies, return an empty array.

Schema (example with empty values):
{
  "theme_ids": []
}`
}

// ThemesUserPrompt lists the taxonomy and the article to classify.
func ThemesUserPrompt(themes []Theme, articleTitle, articleBody string, previewChars int) string {
	body := truncate(articleBody, previewChars)
	var b strings.Builder
	b.WriteString("Taxonomy:\n")
	for _, t := range themes {
		fmt.Fprintf(&b, "- id: %s | name: %s", t.ID, t.Name)
		if t.Description != "" {
			fmt.Fprintf(&b, " | description: %s", t.Description)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\nArticle title: %s\n", articleTitle)
	fmt.Fprintf(&b, "Article body:\n%s\n", body)
	b.WriteString("\nWhich theme ids apply? Respond with the JSON per schema.")
	return b.String()
}
