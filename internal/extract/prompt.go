package extract

import "fmt"

// SystemPrompt instructs the model to emit schema-conformant JSON only.
const SystemPrompt = `You are a factual claim extraction engine.
Extract only verifiable claims, and include direct evidence spans.
Return JSON only, strictly following the schema contract.

Schema: a top-level object with a "claims" array. Each claim requires
"claim_text" (non-empty string), "claim_type" (one of observed_fact,
attributed_statement, inference, prediction, opinion), and "evidence"
(array with at least one entry, each requiring "evidence_text" and
"evidence_type" from direct_quote, reported_fact, document_reference).
Optional fields: subject, predicate, object, occurred_at, location_text,
confidence (0..1), uncertainty_reason, start_char, end_char.
Do not emit any field outside this schema.`

// Prompt pairs the fixed system prompt with an article-specific user prompt.
type Prompt struct {
	System string
	User   string
}

// BuildExtractionPrompt constructs the extraction prompt for one article.
func BuildExtractionPrompt(sourceName, title, cleanedText string) Prompt {
	user := fmt.Sprintf(
		"Source: %s\nTitle: %s\n\nArticle text:\n%s\n\nExtract factual claims following the schema contract.",
		sourceName, title, cleanedText,
	)
	return Prompt{System: SystemPrompt, User: user}
}
