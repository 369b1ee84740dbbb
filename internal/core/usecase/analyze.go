package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/regdesk/regdesk/internal/core/domain"
	"github.com/regdesk/regdesk/internal/core/ports"
)

// AnalysisPolicy bounds what is sent to the model provider.
type AnalysisPolicy struct {
	// MaxChars caps the document text included in the prompt.
	MaxChars int
	// SampleMaxChars caps the verbatim opening sample quoted separately,
	// which anchors the model on letterhead and reference lines.
	SampleMaxChars int
}

func DefaultAnalysisPolicy() AnalysisPolicy {
	return AnalysisPolicy{MaxChars: 8000, SampleMaxChars: 1000}
}

// stubMarkers flag canned replies from keyless or broken deployments.
// Analysis built on stub content would fabricate compliance obligations, so
// it is refused outright.
var stubMarkers = []string{"stub on error", "development stub", "dev stub"}

const analysisSystemPrompt = `You are a regulatory compliance analyst for a bank.
Analyze the circular and respond with a single JSON object, no prose around it, shaped as:
{
  "meta": {
    "regulator": string,
    "reference": string,
    "issued_on": string,
    "bank_context": {"applicable": true|false|null, "entity_type": string, "rationale": string}
  },
  "summary": string,
  "key_points": [string],
  "actions": [{"title": string, "description": string, "priority": "high"|"medium"|"low",
               "department": string, "due_in_days": number, "owner_role": string,
               "confidence": number, "citation": string}]
}
Set "applicable" to null when the circular does not give enough information to decide.`

type AnalyzeCircularUseCase struct {
	chat   ports.ChatCompleter
	policy AnalysisPolicy
}

func NewAnalyzeCircularUseCase(chat ports.ChatCompleter, policy AnalysisPolicy) *AnalyzeCircularUseCase {
	if policy.MaxChars <= 0 || policy.SampleMaxChars <= 0 {
		policy = DefaultAnalysisPolicy()
	}
	return &AnalyzeCircularUseCase{chat: chat, policy: policy}
}

// Analyze sends the circular text for structured analysis. A reply that
// parses as the expected JSON becomes a structured Analysis; anything else
// is preserved as a FallbackAnalysis with a best-effort section split.
func (uc *AnalyzeCircularUseCase) Analyze(ctx context.Context, text string) (domain.AnalysisResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.AnalysisResult{}, domain.WrapError(domain.ErrInvalidInput, "analyze circular",
			errors.New("empty document text"))
	}

	resp, err := uc.chat.Complete(ctx, domain.ChatRequest{
		Messages: []domain.ChatMessage{
			{Role: "system", Content: analysisSystemPrompt},
			{Role: "user", Content: uc.buildUserPrompt(text)},
		},
	})
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	content := strings.TrimSpace(resp.Message.Content)
	if marker := matchStubMarker(content); marker != "" {
		return domain.AnalysisResult{}, domain.WrapError(domain.ErrStubContent, "analyze circular",
			fmt.Errorf("reply contains marker %q", marker))
	}

	if analysis, ok := parseStructuredAnalysis(content); ok {
		return domain.AnalysisResult{Structured: analysis}, nil
	}
	return domain.AnalysisResult{Fallback: splitFallback(content)}, nil
}

func (uc *AnalyzeCircularUseCase) buildUserPrompt(text string) string {
	truncated := truncateChars(text, uc.policy.MaxChars)
	sample := truncateChars(text, uc.policy.SampleMaxChars)

	var b strings.Builder
	b.WriteString("Analyze this regulatory circular.\n\n")
	b.WriteString("Opening sample (verbatim):\n")
	b.WriteString(sample)
	b.WriteString("\n\nFull text (truncated):\n")
	b.WriteString(truncated)
	return b.String()
}

func truncateChars(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func matchStubMarker(content string) string {
	lowered := strings.ToLower(content)
	for _, marker := range stubMarkers {
		if strings.Contains(lowered, marker) {
			return marker
		}
	}
	return ""
}

// parseStructuredAnalysis accepts the reply only when it is a JSON object
// with at least a summary, key points, or actions. Markdown code fences are
// stripped first; some models wrap JSON in them regardless of instructions.
func parseStructuredAnalysis(content string) (*domain.Analysis, bool) {
	raw := stripCodeFence(content)
	if !strings.HasPrefix(raw, "{") {
		return nil, false
	}

	var analysis domain.Analysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, false
	}
	if analysis.Summary == "" && len(analysis.KeyPoints) == 0 && len(analysis.Actions) == 0 {
		return nil, false
	}
	return &analysis, true
}

func stripCodeFence(content string) string {
	raw := strings.TrimSpace(content)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}

// splitFallback carves a free-text reply into summary, key points, and
// action points using the headings the model usually emits. The raw reply
// is always preserved; the split only feeds display.
func splitFallback(content string) *domain.FallbackAnalysis {
	fallback := &domain.FallbackAnalysis{Raw: content}

	lowered := strings.ToLower(content)
	keyIdx := strings.Index(lowered, "key points:")
	actionIdx := strings.Index(lowered, "action points:")

	// The headings can appear in either order; each section ends where the
	// other one starts.
	summaryEnd := len(content)
	if keyIdx >= 0 && keyIdx < summaryEnd {
		summaryEnd = keyIdx
	}
	if actionIdx >= 0 && actionIdx < summaryEnd {
		summaryEnd = actionIdx
	}
	fallback.Summary = strings.TrimSpace(content[:summaryEnd])

	if keyIdx >= 0 {
		keyEnd := len(content)
		if actionIdx > keyIdx {
			keyEnd = actionIdx
		}
		fallback.KeyPoints = splitBullets(content[keyIdx+len("key points:") : keyEnd])
	}
	if actionIdx >= 0 {
		actionEnd := len(content)
		if keyIdx > actionIdx {
			actionEnd = keyIdx
		}
		fallback.ActionPoints = splitBullets(content[actionIdx+len("action points:") : actionEnd])
	}
	return fallback
}

func splitBullets(section string) []string {
	var out []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• \t")
		line = strings.TrimSpace(trimOrdinal(line))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// trimOrdinal drops a leading "1." / "2)" style list marker.
func trimOrdinal(line string) string {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) && (line[i] == '.' || line[i] == ')') {
		return line[i+1:]
	}
	return line
}
