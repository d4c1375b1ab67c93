package scoring

import (
	"fmt"
	"strings"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/knowledge"
)

const systemPrompt = "You are a strict quality auditor for in-person sales conversations. " +
	"You score calls against a fixed rubric and never invent evidence. " +
	"Always respond with valid JSON."

// PromptBuilder renders the evaluator prompt for one call. The same rubric,
// transcript and knowledge snapshot always produce the same prompt, so
// consensus attempts differ only by sampling.
type PromptBuilder struct {
	sanitizer  *TranscriptSanitizer
	knowledge  *knowledge.Store
	silenceGap float64
}

// NewPromptBuilder takes the silence threshold in seconds; gaps at least
// this long are annotated in the rendered transcript so the evaluator can
// see hesitation around key moments.
func NewPromptBuilder(kb *knowledge.Store, silenceGap float64) *PromptBuilder {
	if silenceGap <= 0 {
		silenceGap = 2.5
	}
	return &PromptBuilder{
		sanitizer:  NewTranscriptSanitizer(),
		knowledge:  kb,
		silenceGap: silenceGap,
	}
}

func (b *PromptBuilder) SystemPrompt() string {
	return systemPrompt
}

// Build renders the user prompt: the diarized transcript, the rubric
// parameters with their point values, the ground-truth facts for
// knowledge-checked parameters, and the required response shape.
func (b *PromptBuilder) Build(rubric *domain.Rubric, transcript *domain.Transcript) string {
	var sb strings.Builder

	sb.WriteString("Score this sales call transcript against the rubric below.\n\n")
	sb.WriteString("=== TRANSCRIPT ===\n")

	segments := b.sanitizer.PrepareSegments(transcript.Segments)
	if len(segments) == 0 {
		sb.WriteString(b.sanitizer.TruncateSegment(b.sanitizer.Sanitize(transcript.FullText())))
		sb.WriteString("\n")
	}
	for i, seg := range segments {
		if i > 0 {
			if gap := seg.StartTime - segments[i-1].EndTime; gap >= b.silenceGap {
				sb.WriteString(fmt.Sprintf("[silence %.1fs]\n", gap))
			}
		}
		sb.WriteString(fmt.Sprintf("[%.1fs-%.1fs] %s: %s\n",
			seg.StartTime, seg.EndTime, strings.ToUpper(string(seg.Speaker)), seg.Text))
	}

	sb.WriteString("\n=== RUBRIC: ")
	sb.WriteString(rubric.Title)
	sb.WriteString(" ===\n")

	for _, cat := range rubric.Categories {
		sb.WriteString(fmt.Sprintf("\nCategory: %s (%d points)\n", cat.Name, cat.MaxPoints))
		for _, p := range cat.Parameters {
			sb.WriteString(fmt.Sprintf("- id=%q (%d points): %s. %s\n", p.ID, p.MaxPoints, p.Name, p.Description))
			if p.Fatal {
				sb.WriteString("  FATAL: scoring 0 on this parameter fails the entire call.\n")
			}
			if p.AllowsNA {
				sb.WriteString("  May be marked \"na\" when the situation never arose in this call.\n")
			}
			b.writeFacts(&sb, rubric.Project, p)
		}
	}

	sb.WriteString(`
=== SCORING RULES ===
1. Score every parameter listed above exactly once, using its id.
2. Award integer points between 0 and the parameter's maximum.
3. Every score above 0 must include at least one evidence quote copied
   verbatim from the transcript, with the speaker and timestamps.
4. Use status "na" only where the rubric allows it and the situation
   genuinely never arose. Set points to -1 for "na".
5. For parameters with ground-truth facts, report every factual claim the
   agent made about those facts in "claims", quoting the agent's stated value.
6. Be conservative: missing evidence means a lower score, not a guessed one.

Respond with JSON:
{
  "parameters": [
    {
      "id": "<parameter id>",
      "status": "scored" or "na",
      "points": <int>,
      "rationale": "<one or two sentences>",
      "evidence": [{"quote": "...", "speaker": "agent|customer", "start_time": <float>, "end_time": <float>}],
      "claims": [{"key": "<fact key>", "value": "<value the agent stated>"}]
    }
  ]
}`)

	return sb.String()
}

func (b *PromptBuilder) writeFacts(sb *strings.Builder, project string, p domain.Parameter) {
	if b.knowledge == nil {
		return
	}
	for _, key := range p.KnowledgeKeys {
		fact, ok := b.knowledge.Lookup(project, key)
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("  Ground truth %q: %s\n", key, fact.Value))
	}
}
