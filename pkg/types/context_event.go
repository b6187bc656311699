package types

import (
	"github.com/lib/pq"
)

// ContextEvent is one remembered conversational event, scoped to the owner
// (and optionally a chat room / guild). Rows live for CONTEXT_EVENT_TTL and
// are removed by the expiry sweep, not by count.
type ContextEvent struct {
	ID           string         `json:"id" db:"id"`
	OwnerID      string         `json:"owner_id" db:"owner_id"`
	ScopeID      string         `json:"scope_id" db:"scope_id"`
	EventType    EventType      `json:"event_type" db:"event_type"`
	Payload      EventPayload   `json:"payload" db:"payload"`
	Summary      string         `json:"summary" db:"summary"`
	OriginalText string         `json:"original_text" db:"original_text"`
	ResponseText string         `json:"response_text" db:"response_text"`
	Importance   int            `json:"importance" db:"importance"`
	Participants pq.StringArray `json:"participants" db:"participants"`
	CreatedAt    int64          `json:"created_at" db:"created_at"`
	ExpiresAt    int64          `json:"expires_at" db:"expires_at"`
}

type EventType string

const (
	EVENT_TYPE_MESSAGE         EventType = "message"
	EVENT_TYPE_JOIN            EventType = "join"
	EVENT_TYPE_REACTION        EventType = "reaction"
	EVENT_TYPE_VOICE_UTTERANCE EventType = "voice_utterance"
	EVENT_TYPE_SUBSCRIPTION    EventType = "subscription"
	EVENT_TYPE_DONATION        EventType = "donation"
	EVENT_TYPE_RAID            EventType = "raid"
)

func (t EventType) Valid() bool {
	switch t {
	case EVENT_TYPE_MESSAGE, EVENT_TYPE_JOIN, EVENT_TYPE_REACTION,
		EVENT_TYPE_VOICE_UTTERANCE, EVENT_TYPE_SUBSCRIPTION,
		EVENT_TYPE_DONATION, EVENT_TYPE_RAID:
		return true
	}
	return false
}

// HighValue reports whether the kind always warrants context injection.
func (t EventType) HighValue() bool {
	switch t {
	case EVENT_TYPE_SUBSCRIPTION, EVENT_TYPE_DONATION, EVENT_TYPE_RAID:
		return true
	}
	return false
}

// ClampImportance forces importance into the 1..10 band.
func ClampImportance(importance int) int {
	if importance < IMPORTANCE_MIN {
		return IMPORTANCE_MIN
	}
	if importance > IMPORTANCE_MAX {
		return IMPORTANCE_MAX
	}
	return importance
}

type ListContextEventOptions struct {
	OwnerID   string
	ScopeID   string
	EventType EventType
	Since     int64
	ActiveAt  int64 // exclude rows whose expires_at <= ActiveAt
}
