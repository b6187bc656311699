package types

const (
	NO_PAGING     uint64 = 0
	NO_PAGINATION uint64 = 0
)

// RecordOutcome tells a caller what happened to a best-effort write. Callers
// that don't care may discard it; tests and handlers inspect it.
type RecordOutcome int8

const (
	RECORD_STORED RecordOutcome = iota + 1
	RECORD_STORAGE_UNAVAILABLE
	RECORD_VALIDATION_FAILED
)

func (o RecordOutcome) String() string {
	switch o {
	case RECORD_STORED:
		return "stored"
	case RECORD_STORAGE_UNAVAILABLE:
		return "storage_unavailable"
	case RECORD_VALIDATION_FAILED:
		return "validation_failed"
	}
	return "unknown"
}

// RecordResult is what EventRecorder.Record hands back. EventID is empty
// unless Outcome is RECORD_STORED.
type RecordResult struct {
	Outcome RecordOutcome `json:"outcome"`
	EventID string        `json:"event_id,omitempty"`
}

// MemoryStats is the cheap per-owner view served to the dashboard glue.
type MemoryStats struct {
	OwnerID        string `json:"owner_id"`
	LiveEvents     int64  `json:"live_events"`
	LiveResponses  int64  `json:"live_responses"`
	CollectedUnixS int64  `json:"collected_at"`
}
