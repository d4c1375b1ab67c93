package scoring

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/knowledge"
)

// EvaluatorResponse is the wire shape one evaluator attempt must produce.
type EvaluatorResponse struct {
	Parameters []ParameterResult `json:"parameters"`
}

// ParameterResult is one parameter's raw result before validation.
type ParameterResult struct {
	ID        string                  `json:"id"`
	Status    string                  `json:"status"`
	Points    int                     `json:"points"`
	Rationale string                  `json:"rationale"`
	Evidence  []domain.Evidence       `json:"evidence,omitempty"`
	Claims    []domain.KnowledgeClaim `json:"claims,omitempty"`
}

// Validator turns a raw evaluator response into a trusted set of parameter
// scores. Structural problems abort the attempt; per-parameter problems are
// recovered by zeroing the parameter, never by guessing a score.
type Validator struct {
	knowledge           *knowledge.Store
	similarityThreshold float64
}

func NewValidator(kb *knowledge.Store, similarityThreshold float64) *Validator {
	if similarityThreshold <= 0 || similarityThreshold > 1 {
		similarityThreshold = 0.8
	}
	return &Validator{knowledge: kb, similarityThreshold: similarityThreshold}
}

// Parse decodes the evaluator's JSON output. Markdown code fences around the
// JSON body are tolerated, anything else structural is a SchemaError.
func (v *Validator) Parse(content string) (*EvaluatorResponse, error) {
	content = stripCodeFence(content)

	var resp EvaluatorResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, domain.NewSchemaError("evaluator response", "invalid JSON: %v", err)
	}
	if len(resp.Parameters) == 0 {
		return nil, domain.NewSchemaError("evaluator response", "no parameters in response")
	}
	return &resp, nil
}

func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// Validate checks one attempt against the rubric and transcript and returns
// the scores in rubric order. Missing parameters are a CoverageError,
// duplicates a SchemaError. Unknown ids are dropped.
//
// Re-validating an already validated attempt changes no points and no
// statuses.
func (v *Validator) Validate(rubric *domain.Rubric, transcript *domain.Transcript, resp *EvaluatorResponse) ([]domain.ParameterScore, error) {
	byID := make(map[string]ParameterResult, len(resp.Parameters))
	for _, pr := range resp.Parameters {
		if _, dup := byID[pr.ID]; dup {
			return nil, domain.NewSchemaError("evaluator response", "parameter %q scored twice", pr.ID)
		}
		byID[pr.ID] = pr
	}

	params := rubric.Parameters()
	var missing []string
	for _, p := range params {
		if _, ok := byID[p.ID]; !ok {
			missing = append(missing, p.ID)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.CoverageError{MissingParameterIDs: missing}
	}

	fullText := normalizeText(transcript.FullText())

	scores := make([]domain.ParameterScore, 0, len(params))
	for _, p := range params {
		scores = append(scores, v.validateParameter(rubric.Project, p, byID[p.ID], fullText))
	}
	return scores, nil
}

func (v *Validator) validateParameter(project string, p domain.Parameter, pr ParameterResult, fullText string) domain.ParameterScore {
	score := domain.ParameterScore{
		ParameterID: p.ID,
		Rationale:   pr.Rationale,
		Evidence:    pr.Evidence,
		Claims:      pr.Claims,
	}

	var notes []string

	switch pr.Status {
	case string(domain.StatusNA), "not_applicable":
		if !p.AllowsNA {
			notes = append(notes, "na not allowed for this parameter, downgraded to 0")
			score.Status = domain.StatusScored
			score.PointsAwarded = 0
		} else {
			score.Status = domain.StatusNA
			score.PointsAwarded = domain.PointsNA
		}
	case string(domain.StatusFatalFailed):
		// fatal_failed is a claim of failure; any points reported with it
		// are discarded.
		score.Status = domain.StatusScored
		score.PointsAwarded = 0
		if pr.Points != 0 {
			notes = append(notes, fmt.Sprintf("status fatal_failed forces 0 points, %d discarded", pr.Points))
		}
	case string(domain.StatusScored), "":
		score.Status = domain.StatusScored
		score.PointsAwarded = clamp(pr.Points, 0, p.MaxPoints)
		if score.PointsAwarded != pr.Points {
			notes = append(notes, fmt.Sprintf("points %d clamped to [0,%d]", pr.Points, p.MaxPoints))
		}
	default:
		notes = append(notes, fmt.Sprintf("unknown status %q, downgraded to 0", pr.Status))
		score.Status = domain.StatusScored
		score.PointsAwarded = 0
	}

	// Positive scores must be backed by at least one quote that actually
	// occurs in the transcript.
	if score.Status == domain.StatusScored && score.PointsAwarded > 0 {
		if !v.hasLocatableEvidence(pr.Evidence, fullText) {
			notes = append(notes, (&domain.ValidationRejection{
				ParameterID: p.ID,
				Reason:      "no evidence quote could be located in the transcript",
			}).Error())
			score.PointsAwarded = 0
			score.Evidence = nil
		}
	}

	// Factual claims are checked against the knowledge base. A contradicted
	// claim zeroes the parameter.
	if score.Status == domain.StatusScored && v.knowledge != nil {
		if reason := v.checkClaims(project, p, pr.Claims); reason != "" {
			notes = append(notes, (&domain.ValidationRejection{ParameterID: p.ID, Reason: reason}).Error())
			score.PointsAwarded = 0
		}
	}

	if p.Fatal && score.Status == domain.StatusScored && score.PointsAwarded == 0 {
		score.Status = domain.StatusFatalFailed
	}

	score.ValidationNotes = strings.Join(notes, "; ")
	return score
}

func (v *Validator) checkClaims(project string, p domain.Parameter, claims []domain.KnowledgeClaim) string {
	allowed := make(map[string]bool, len(p.KnowledgeKeys))
	for _, k := range p.KnowledgeKeys {
		allowed[k] = true
	}

	for _, claim := range claims {
		if !allowed[claim.Key] {
			continue
		}
		fact, ok := v.knowledge.Lookup(project, claim.Key)
		if !ok {
			continue
		}
		if !fact.Matches(claim.Value) {
			return fmt.Sprintf("claimed %q for fact %q, expected %q", claim.Value, claim.Key, fact.Value)
		}
	}
	return ""
}

func (v *Validator) hasLocatableEvidence(evidence []domain.Evidence, fullText string) bool {
	for _, ev := range evidence {
		if v.locateQuote(ev.Quote, fullText) {
			return true
		}
	}
	return false
}

// locateQuote finds a quote in the transcript. Exact normalized substring
// match first, then a sliding word window compared by edit-distance
// similarity, which tolerates transcription drift in the quote.
func (v *Validator) locateQuote(quote, fullText string) bool {
	q := normalizeText(quote)
	if q == "" || fullText == "" {
		return false
	}
	if strings.Contains(fullText, q) {
		return true
	}

	quoteWords := strings.Fields(q)
	textWords := strings.Fields(fullText)
	n := len(quoteWords)
	if n == 0 || n > len(textWords) {
		return false
	}

	for i := 0; i+n <= len(textWords); i++ {
		window := strings.Join(textWords[i:i+n], " ")
		if similarity(q, window) >= v.similarityThreshold {
			return true
		}
	}
	return false
}

func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// normalizeText lowercases, strips punctuation and collapses whitespace so
// quote matching ignores formatting differences.
func normalizeText(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r > 127:
			// Keep non-ASCII letters, transcripts are not always English.
			sb.WriteRune(r)
		default:
			sb.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
