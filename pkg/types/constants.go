package types

import "time"

// Retention windows. Context events feed generation for three days;
// prior responses only need to cover short-horizon self reference.
const (
	CONTEXT_EVENT_TTL  = time.Hour * 72
	PRIOR_RESPONSE_TTL = time.Hour * 24
)

const (
	IMPORTANCE_MIN = 1
	IMPORTANCE_MAX = 10

	CONFIDENCE_MIN = 0
	CONFIDENCE_MAX = 10
)

// Retrieval bounds.
const (
	CONTEXT_LOAD_LIMIT          = 50
	CONTEXT_RECENT_KEEP         = 4
	CONTEXT_SAME_TYPE_KEEP      = 2
	CONTEXT_FORMAT_MAX_ITEMS    = 3
	CONTEXT_ITEM_MAX_CHARS      = 100
	CONTEXT_EXAMPLE_MAX_CHARS   = 80
	CONTEXT_MIN_TEXT_LEN        = 5
	DETECTION_RESPONSE_LIMIT    = 10
	DETECTION_EVENT_LIMIT       = 5
	DETECTION_LOOKBACK          = time.Hour * 2
	CLASSIFY_CACHE_TTL          = time.Minute * 5
	ADVISORY_DEFAULT_TIMEOUT_MS = 3000
)

// Probabilistic policy knobs (percentages).
const (
	SWEEP_ON_WRITE_PERCENT      = 10
	CONTEXT_USE_DEFAULT_PERCENT = 80
	CONTEXT_USE_CHAT_PERCENT    = 60
	CONTEXT_USE_CHAT_BOOSTED    = 80
	CONTEXT_EXAMPLE_PERCENT     = 20
)

// Direct question score fusion.
const (
	SCORE_PATTERN_MATCH      = 4
	SCORE_RELATED_RESPONSE   = 3
	SCORE_ADVISORY_AGREE     = 3
	SCORE_SPECIFIC_REFERENCE = 2
	SCORE_ADVISORY_DISAGREE  = -2
	SCORE_TEMPORAL_INDICATOR = 1
	SCORE_QUESTION_FORMAT    = 1

	DIRECT_QUESTION_THRESHOLD = 5
	ALWAYS_RESPOND_THRESHOLD  = 7
)
