package v1

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/rowdybard/banterbox/app/core"
	"github.com/rowdybard/banterbox/app/store"
	"github.com/rowdybard/banterbox/pkg/ai"
	"github.com/rowdybard/banterbox/pkg/cache"
	"github.com/rowdybard/banterbox/pkg/types"
	"github.com/rowdybard/banterbox/pkg/utils"
)

// DetectionResult is the full classification verdict for one incoming message.
type DetectionResult struct {
	IsDirectQuestion    bool                   `json:"is_direct_question"`
	Confidence          int                    `json:"confidence"`
	Reasoning           []string               `json:"reasoning"`
	RelatedResponses    []*types.PriorResponse `json:"related_responses"`
	ShouldAlwaysRespond bool                   `json:"should_always_respond"`
}

// Patterns that address the bot about something it previously said. Matched
// case-insensitively against the raw message.
var directQuestionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bwhat\s+(did|do)\s+you\s+(say|just\s+say|mean|respond|answer|mention)\b`),
	regexp.MustCompile(`(?i)\byour\s+(last|previous|earlier)\s+(response|answer|reply|message)\b`),
	regexp.MustCompile(`(?i)\b(you\s+(said|mentioned|told|discussed|brought\s+up))\b`),
	regexp.MustCompile(`(?i)\bwhat\s+(just\s+happened|was\s+that\s+about|were\s+(you|we)\s+talking\s+about)\b`),
	regexp.MustCompile(`(?i)\b(can|could)\s+you\s+(repeat|explain|clarify)\b`),
	regexp.MustCompile(`(?i)\b(say|repeat)\s+(that|it)\s+again\b`),
	regexp.MustCompile(`(?i)\bwhat\s+(\w+\s+)?(was|is)\s+i\s+(thinking|talking)\s+about\b`),
}

var temporalIndicators = []string{"just", "recently", "before", "earlier", "last", "previous", "a moment ago"}

// DirectQuestionDetectorLogic scores incoming messages for whether they are
// direct questions about something the bot previously said. Scoring is
// additive over independent signals and clamped to [0,10]; storage failures
// drop the history-dependent signals instead of failing the call.
type DirectQuestionDetectorLogic struct {
	ctx             context.Context
	events          store.ContextEventStore
	responses       store.PriorResponseStore
	classifier      ai.Classifier
	classifyTimeout time.Duration
	cache           types.Cache
	metrics         *core.Metrics
	now             func() time.Time
}

func NewDirectQuestionDetectorLogic(ctx context.Context, core *core.Core) *DirectQuestionDetectorLogic {
	return &DirectQuestionDetectorLogic{
		ctx:             ctx,
		events:          core.Store().ContextEventStore(),
		responses:       core.Store().PriorResponseStore(),
		classifier:      core.Srv().Classifier(),
		classifyTimeout: core.Srv().ClassifyTimeout(),
		cache:           core.Srv().Cache(),
		metrics:         core.Metrics(),
		now:             time.Now,
	}
}

func NewDirectQuestionDetectorWithDeps(ctx context.Context, events store.ContextEventStore, responses store.PriorResponseStore, classifier ai.Classifier, now func() time.Time) *DirectQuestionDetectorLogic {
	return &DirectQuestionDetectorLogic{
		ctx:             ctx,
		events:          events,
		responses:       responses,
		classifier:      classifier,
		classifyTimeout: time.Millisecond * types.ADVISORY_DEFAULT_TIMEOUT_MS,
		cache:           &cache.EmptyCache{},
		now:             now,
	}
}

// Classify scores currentMessage against the owner's recent responses and
// events. It never returns an error; degraded modes are reflected in the
// reasoning trail.
func (l *DirectQuestionDetectorLogic) Classify(ownerID, scopeID, currentMessage string) *DetectionResult {
	res := &DetectionResult{}
	score := 0

	for _, re := range directQuestionPatterns {
		if re.MatchString(currentMessage) {
			score += types.SCORE_PATTERN_MATCH
			res.Reasoning = append(res.Reasoning, fmt.Sprintf("matches direct question pattern %q", re.String()))
			break
		}
	}

	recent, storageOK := l.recentResponses(ownerID, scopeID)
	if storageOK {
		related := l.filterRelated(currentMessage, recent)
		if len(related) > 0 {
			score += types.SCORE_RELATED_RESPONSE
			res.Reasoning = append(res.Reasoning, fmt.Sprintf("found %d related recent responses", len(related)))
			res.RelatedResponses = related
		}
		// the reference scan covers the whole recent window, not just the
		// responses that cleared the relevance floor
		if l.hasSpecificReference(ownerID, scopeID, currentMessage, recent) {
			score += types.SCORE_SPECIFIC_REFERENCE
			res.Reasoning = append(res.Reasoning, "references specific recent content")
		}
	} else {
		res.Reasoning = append(res.Reasoning, "history unavailable, scored on message signals only")
	}

	lower := strings.ToLower(currentMessage)
	if lo.SomeBy(temporalIndicators, func(word string) bool {
		return strings.Contains(lower, word)
	}) {
		score += types.SCORE_TEMPORAL_INDICATOR
		res.Reasoning = append(res.Reasoning, "contains temporal indicator")
	}

	if strings.HasSuffix(strings.TrimSpace(currentMessage), "?") {
		score += types.SCORE_QUESTION_FORMAT
		res.Reasoning = append(res.Reasoning, "question format")
	}

	// in fallback mode only the message-level signals count; the advisory
	// call is skipped along with the history terms
	if storageOK {
		if delta, note, ok := l.advisoryAdjustment(ownerID, scopeID, currentMessage, res.RelatedResponses); ok {
			score += delta
			res.Reasoning = append(res.Reasoning, note)
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}

	res.Confidence = score
	res.IsDirectQuestion = score >= types.DIRECT_QUESTION_THRESHOLD
	// a positive classification always forces a response, regardless of how
	// far past the threshold the score landed
	res.ShouldAlwaysRespond = res.IsDirectQuestion || score > types.ALWAYS_RESPOND_THRESHOLD

	if l.metrics != nil {
		l.metrics.DetectorScoreObserve(float64(score))
	}
	return res
}

// recentResponses loads the detection window of prior responses.
func (l *DirectQuestionDetectorLogic) recentResponses(ownerID, scopeID string) ([]*types.PriorResponse, bool) {
	since := l.now().Add(-types.DETECTION_LOOKBACK).Unix()
	recent, err := l.responses.ListRecent(l.ctx, types.ListPriorResponseOptions{
		OwnerID:  ownerID,
		ScopeID:  scopeID,
		Since:    since,
		ActiveAt: l.now().Unix(),
	}, types.DETECTION_RESPONSE_LIMIT)
	if err != nil {
		slog.Warn("detector degraded, prior responses unavailable",
			slog.String("owner_id", ownerID), slog.Any("error", err))
		return nil, false
	}
	return recent, true
}

// filterRelated keeps responses whose relevance to the message clears the
// floor, ordered newest first.
func (l *DirectQuestionDetectorLogic) filterRelated(currentMessage string, recent []*types.PriorResponse) []*types.PriorResponse {
	type scored struct {
		resp  *types.PriorResponse
		score float64
	}
	var kept []scored
	for _, resp := range recent {
		s := l.relevance(currentMessage, resp)
		if s >= 1 {
			kept = append(kept, scored{resp: resp, score: s})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].resp.CreatedAt > kept[j].resp.CreatedAt
	})
	return lo.Map(kept, func(item scored, _ int) *types.PriorResponse {
		return item.resp
	})
}

// relevance measures lexical and temporal affinity between the incoming
// message and one prior response.
func (l *DirectQuestionDetectorLogic) relevance(currentMessage string, resp *types.PriorResponse) float64 {
	msgWords := utils.LongWords(currentMessage, 3)
	respWords := utils.LongWords(resp.ResponseText, 3)

	var score float64
	shared := lo.Intersect(msgWords, respWords)
	score += 0.5 * float64(len(shared))

	// key phrases come from the stored response and are hunted in the
	// incoming message
	msgLower := strings.ToLower(currentMessage)
	for _, phrase := range keyPhrases(resp.ResponseText) {
		if strings.Contains(msgLower, phrase) {
			score += 2
		}
	}

	if resp.WasDirectQuestion {
		score += 1
	}

	age := l.now().Sub(time.Unix(resp.CreatedAt, 0))
	switch {
	case age < time.Minute*30:
		score += 2
	case age < time.Hour:
		score += 1
	}
	return score
}

// keyPhrases extracts sliding 3-word windows longer than 10 chars, lowercased.
func keyPhrases(text string) []string {
	words := strings.Fields(strings.ToLower(text))
	var phrases []string
	for i := 0; i+3 <= len(words); i++ {
		phrase := strings.Join(words[i:i+3], " ")
		if len(phrase) > 10 {
			phrases = append(phrases, phrase)
		}
	}
	return phrases
}

// hasSpecificReference reports whether the message verbatim contains a
// distinctive word from any recent response or event text.
func (l *DirectQuestionDetectorLogic) hasSpecificReference(ownerID, scopeID, currentMessage string, recent []*types.PriorResponse) bool {
	lower := strings.ToLower(currentMessage)

	sources := lo.Map(recent, func(item *types.PriorResponse, _ int) string {
		return item.ResponseText
	})

	events, err := l.events.ListRecent(l.ctx, types.ListContextEventOptions{
		OwnerID:  ownerID,
		ScopeID:  scopeID,
		Since:    l.now().Add(-types.DETECTION_LOOKBACK).Unix(),
		ActiveAt: l.now().Unix(),
	}, types.DETECTION_EVENT_LIMIT)
	if err == nil {
		for _, item := range events {
			if item.OriginalText != "" {
				sources = append(sources, item.OriginalText)
			}
		}
	}

	for _, text := range sources {
		for _, word := range utils.LongWords(text, 4) {
			if strings.Contains(lower, word) {
				return true
			}
		}
	}
	return false
}

// advisoryAdjustment asks the AI classifier for a second opinion. Agreement
// that the message is a direct question adds to the score, disagreement
// subtracts a smaller amount. Any failure skips the adjustment entirely.
func (l *DirectQuestionDetectorLogic) advisoryAdjustment(ownerID, scopeID, currentMessage string, related []*types.PriorResponse) (int, string, bool) {
	if l.classifier == nil {
		return 0, "", false
	}

	cacheKey := fmt.Sprintf("dq:%s", utils.MD5(ownerID+"|"+scopeID+"|"+currentMessage))
	if l.cache != nil {
		if cached, err := l.cache.Get(l.ctx, cacheKey); err == nil && cached != "" {
			if cached == "1" {
				return types.SCORE_ADVISORY_AGREE, "advisory classifier agrees (cached)", true
			}
			return types.SCORE_ADVISORY_DISAGREE, "advisory classifier disagrees (cached)", true
		}
	}

	ctx, cancel := context.WithTimeout(l.ctx, l.classifyTimeout)
	defer cancel()

	if l.metrics != nil {
		defer l.metrics.ClassifierTimer("direct_question").ObserveDuration()
	}

	judgment, err := l.classifier.IsDirectQuestion(ctx, currentMessage,
		ai.ResponseDigest(related, types.DETECTION_RESPONSE_LIMIT, types.CONTEXT_EXAMPLE_MAX_CHARS))
	if err != nil {
		slog.Debug("direct-question advisory unavailable", slog.Any("error", err))
		if l.metrics != nil {
			l.metrics.ClassifierCallInc("direct_question", "error")
		}
		return 0, "", false
	}
	if l.metrics != nil {
		l.metrics.ClassifierCallInc("direct_question", "ok")
	}

	if l.cache != nil {
		val := "0"
		if judgment.Verdict {
			val = "1"
		}
		_ = l.cache.SetEx(l.ctx, cacheKey, val, types.CLASSIFY_CACHE_TTL)
	}

	if judgment.Verdict {
		return types.SCORE_ADVISORY_AGREE, "advisory classifier agrees", true
	}
	return types.SCORE_ADVISORY_DISAGREE, "advisory classifier disagrees", true
}
