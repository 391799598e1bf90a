package prompt

import (
	"fmt"
	"strings"
)

// Article is one relevant article offered to the insight synthesizer.
type Article struct {
	Title string
	URL   string
	Body  string
}

// InsightSystemPrompt provides strict directions and schema for the project
// insight snapshot.
func InsightSystemPrompt() string {
	return `You are a senior media monitoring analyst. Synthesize an insight report from a set of news articles that were all judged relevant to one monitoring project. You must produce one valid JSON object only (no markdown, no commentary). Do not include code fences.

Requirements:
- Output must be a single JSON object with exactly the keys in the schema.
- executive_summary is three to five sentences.
- topic_clusters and subthemes are arrays of short phrases.
- sentiment counts articles; positive + negative + neutral should equal the number of articles given.
- entities groups named people, organizations and locations mentioned across the articles.
- risks and opportunities are arrays of short statements.
- recommendations is a single paragraph of concrete next steps.
- article_links lists the URLs of the articles that most informed the summary.
- highlights is an array of notable quotes or facts, each with its source URL appended in parentheses.

Schema (example with empty values):
{
  "executive_summary": "<string>",
  "topic_clusters": [],
  "subthemes": [],
  "sentiment": {"positive": 0, "negative": 0, "neutral": 0},
  "entities": {"people": [], "organizations": [], "locations": []},
  "risks": [],
  "opportunities": [],
  "recommendations": "<string>",
  "article_links": [],
  "highlights": []
}`
}

// InsightUserPrompt lists the project brief and every article excerpt. Bodies
// are truncated to excerptChars each so large batches stay within limits.
func InsightUserPrompt(projectTitle, projectDescription string, articles []Article, excerptChars int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n", projectTitle)
	if projectDescription != "" {
		fmt.Fprintf(&b, "Project focus: %s\n", projectDescription)
	}
	fmt.Fprintf(&b, "\nArticles (%d):\n", len(articles))
	for i, a := range articles {
		fmt.Fprintf(&b, "\n[%d] %s\nURL: %s\n%s\n", i+1, a.Title, a.URL, truncate(a.Body, excerptChars))
	}
	b.WriteString("\nProduce the insight report and respond with the JSON per schema.")
	return b.String()
}
