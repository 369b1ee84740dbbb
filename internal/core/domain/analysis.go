package domain

// ChatMessage is one turn of a provider chat exchange.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is forwarded verbatim to the model provider.
type ChatRequest struct {
	Messages    []ChatMessage `json:"messages"`
	Model       string        `json:"model,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

// ChatUsage mirrors the provider token accounting.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the proxied provider reply.
type ChatResponse struct {
	ID      string      `json:"id"`
	Message ChatMessage `json:"message"`
	Usage   ChatUsage   `json:"usage"`
}

// BankContext carries the applicability verdict for the registered entity.
// Applicable is tri-state: nil means the model could not decide.
type BankContext struct {
	Applicable *bool  `json:"applicable"`
	EntityType string `json:"entity_type,omitempty"`
	Rationale  string `json:"rationale,omitempty"`
}

type AnalysisMeta struct {
	Regulator   string      `json:"regulator,omitempty"`
	Reference   string      `json:"reference,omitempty"`
	IssuedOn    string      `json:"issued_on,omitempty"`
	BankContext BankContext `json:"bank_context"`
}

// Action is one proposed compliance task. It is not a persisted task until a
// maker explicitly materializes it.
type Action struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Priority    string  `json:"priority,omitempty"`
	Department  string  `json:"department,omitempty"`
	DueInDays   int     `json:"due_in_days,omitempty"`
	OwnerRole   string  `json:"owner_role,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
	Citation    string  `json:"citation,omitempty"`
}

// Analysis is the structured result of a successful strict-JSON parse.
type Analysis struct {
	Meta      AnalysisMeta `json:"meta"`
	Summary   string       `json:"summary"`
	KeyPoints []string     `json:"key_points"`
	Actions   []Action     `json:"actions"`
}

// FallbackAnalysis holds a non-JSON model reply plus a best-effort section
// split for display. It is a distinct type on purpose: task creation accepts
// only the structured Analysis.
type FallbackAnalysis struct {
	Raw          string   `json:"raw"`
	Summary      string   `json:"summary,omitempty"`
	KeyPoints    []string `json:"key_points,omitempty"`
	ActionPoints []string `json:"action_points,omitempty"`
}

// AnalysisResult is either Structured or Fallback, never both.
type AnalysisResult struct {
	Structured *Analysis         `json:"structured,omitempty"`
	Fallback   *FallbackAnalysis `json:"fallback,omitempty"`
}
