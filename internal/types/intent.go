package types

// SearchConfidenceThreshold is the confidence a job-search decision must exceed to trigger a search
const SearchConfidenceThreshold = 0.6

// HistoryWindow is the number of prior turns passed to the conversational responder
const HistoryWindow = 6

// DecisionSource records which path produced an IntentDecision
type DecisionSource string

// Decision sources
const (
	SourceModel                DecisionSource = "model"
	SourceKeyword              DecisionSource = "keyword"
	SourceKeywordParseFallback DecisionSource = "keyword_fallback_parse"
	SourceKeywordErrorFallback DecisionSource = "keyword_fallback_error"
)

// IntentDecision is the router's classification of a single message
type IntentDecision struct {
	IsJobSearch bool           `json:"is_job_search"`
	Confidence  float64        `json:"confidence"`
	Reasoning   string         `json:"reasoning"`
	Source      DecisionSource `json:"source,omitempty"`
}

// Clamp keeps the confidence inside [0,1].
func (d IntentDecision) Clamp() IntentDecision {
	if d.Confidence < 0 {
		d.Confidence = 0
	}
	if d.Confidence > 1 {
		d.Confidence = 1
	}
	return d
}

// ShouldSearch reports whether the decision routes to the search path.
func (d IntentDecision) ShouldSearch() bool {
	return d.IsJobSearch && d.Confidence > SearchConfidenceThreshold
}

// ConversationTurn is a single prior message in a chat
type ConversationTurn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content"`
}

// WindowHistory returns at most the last HistoryWindow turns.
func WindowHistory(history []ConversationTurn) []ConversationTurn {
	if len(history) <= HistoryWindow {
		return history
	}
	return history[len(history)-HistoryWindow:]
}

// RouteType names the path chosen for a message
type RouteType string

// Route types
const (
	RouteJobSearch    RouteType = "job_search"
	RouteConversation RouteType = "conversation"
)

// RouteResult is the routing contract exposed to front ends.
// Response is nil when the message should be searched.
type RouteResult struct {
	Type         RouteType `json:"type"`
	Response     *string   `json:"response"`
	ShouldSearch bool      `json:"should_search"`
	Reasoning    string    `json:"reasoning"`
}

// ProfileContext is the acknowledgment produced for a supplied profile reference
type ProfileContext struct {
	ProfileProvided bool   `json:"profile_provided"`
	Message         string `json:"message"`
	Guidance        string `json:"guidance"`
}

// Prompt renders the context as extra input for downstream generation stages.
func (p *ProfileContext) Prompt() string {
	if p == nil || !p.ProfileProvided {
		return ""
	}
	out := "Candidate profile context: " + p.Message
	if p.Guidance != "" {
		out += "\nGuidance: " + p.Guidance
	}
	return out
}
