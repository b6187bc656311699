package types

// PriorResponse is a response the bot already sent, kept on a short horizon
// purely so the detector can recognize "what did you just say" style
// questions. Never mutated after insert.
type PriorResponse struct {
	ID                string       `json:"id" db:"id"`
	OwnerID           string       `json:"owner_id" db:"owner_id"`
	ScopeID           string       `json:"scope_id" db:"scope_id"`
	ResponseText      string       `json:"response_text" db:"response_text"`
	SourceQuestion    string       `json:"source_question" db:"source_question"`
	ResponseKind      ResponseKind `json:"response_kind" db:"response_kind"`
	Confidence        int          `json:"confidence" db:"confidence"`
	WasDirectQuestion bool         `json:"was_direct_question" db:"was_direct_question"`
	CreatedAt         int64        `json:"created_at" db:"created_at"`
	ExpiresAt         int64        `json:"expires_at" db:"expires_at"`
}

type ResponseKind string

const (
	RESPONSE_KIND_FACTUAL     ResponseKind = "factual"
	RESPONSE_KIND_PERSONALITY ResponseKind = "personality"
	RESPONSE_KIND_CONTEXTUAL  ResponseKind = "contextual"
)

func (k ResponseKind) Valid() bool {
	switch k {
	case RESPONSE_KIND_FACTUAL, RESPONSE_KIND_PERSONALITY, RESPONSE_KIND_CONTEXTUAL:
		return true
	}
	return false
}

type ListPriorResponseOptions struct {
	OwnerID  string
	ScopeID  string
	Since    int64
	ActiveAt int64
}
