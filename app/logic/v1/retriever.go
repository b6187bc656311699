package v1

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
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

// The style line appended to every non-empty context block. The consuming
// generator must not parrot stale context back.
const contextStyleInstruction = "Use this context naturally if relevant, but do not repeat earlier responses word for word."

// ContextRetrieverLogic selects and formats recent events into a
// prompt-ready context string, and owns the should-context-be-used policy.
// Every failure degrades to "no context"; callers never see an error.
type ContextRetrieverLogic struct {
	ctx             context.Context
	events          store.ContextEventStore
	classifier      ai.Classifier
	classifyTimeout time.Duration
	cache           types.Cache
	metrics         *core.Metrics
	rng             *rand.Rand
	now             func() time.Time
}

func NewContextRetrieverLogic(ctx context.Context, core *core.Core) *ContextRetrieverLogic {
	return &ContextRetrieverLogic{
		ctx:             ctx,
		events:          core.Store().ContextEventStore(),
		classifier:      core.Srv().Classifier(),
		classifyTimeout: core.Srv().ClassifyTimeout(),
		cache:           core.Srv().Cache(),
		metrics:         core.Metrics(),
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
		now:             time.Now,
	}
}

func NewContextRetrieverWithDeps(ctx context.Context, events store.ContextEventStore, classifier ai.Classifier, rng *rand.Rand, now func() time.Time) *ContextRetrieverLogic {
	return &ContextRetrieverLogic{
		ctx:             ctx,
		events:          events,
		classifier:      classifier,
		classifyTimeout: time.Millisecond * types.ADVISORY_DEFAULT_TIMEOUT_MS,
		cache:           &cache.EmptyCache{},
		rng:             rng,
		now:             now,
	}
}

// ForGeneration returns the context block fed to the response generator, or
// an empty string when context should not (or cannot) be injected.
func (l *ContextRetrieverLogic) ForGeneration(ownerID string, eventType types.EventType, scopeID, currentText string) string {
	if l.metrics != nil {
		defer l.metrics.ContextBuildTimer("generation").ObserveDuration()
	}
	return l.build(ownerID, eventType, scopeID, currentText, false)
}

// ForDirectQuestion is the same selection with voice-sourced events moved to
// the front, since direct questions most often chase something said aloud.
func (l *ContextRetrieverLogic) ForDirectQuestion(ownerID string, eventType types.EventType, scopeID, currentText string) string {
	if l.metrics != nil {
		defer l.metrics.ContextBuildTimer("direct_question").ObserveDuration()
	}
	return l.build(ownerID, eventType, scopeID, currentText, true)
}

func (l *ContextRetrieverLogic) build(ownerID string, eventType types.EventType, scopeID, currentText string, voiceFirst bool) string {
	events, err := l.events.ListRecent(l.ctx, types.ListContextEventOptions{
		OwnerID:  ownerID,
		ActiveAt: l.now().Unix(),
	}, types.CONTEXT_LOAD_LIMIT)
	if err != nil {
		slog.Warn("context retrieval degraded to empty, store unavailable",
			slog.String("owner_id", ownerID), slog.Any("error", err))
		return ""
	}

	if voiceFirst {
		voice, rest := lo.FilterReject(events, func(item *types.ContextEvent, _ int) bool {
			return item.EventType == types.EVENT_TYPE_VOICE_UTTERANCE
		})
		events = append(voice, rest...)
	}

	if !l.shouldUseContext(ownerID, scopeID, eventType, currentText, events) {
		return ""
	}

	inScope := func(item *types.ContextEvent) bool {
		return item.ScopeID == "" || scopeID == "" || item.ScopeID == scopeID
	}

	recent := lo.Filter(events, func(item *types.ContextEvent, _ int) bool {
		return inScope(item)
	})
	if len(recent) > types.CONTEXT_RECENT_KEEP {
		recent = recent[:types.CONTEXT_RECENT_KEEP]
	}

	sameType := lo.Filter(events, func(item *types.ContextEvent, _ int) bool {
		return item.EventType == eventType && inScope(item)
	})
	if len(sameType) > types.CONTEXT_SAME_TYPE_KEEP {
		sameType = sameType[:types.CONTEXT_SAME_TYPE_KEEP]
	}

	var sb strings.Builder

	var lines []string
	for _, item := range recent {
		if len(item.OriginalText) <= types.CONTEXT_MIN_TEXT_LEN {
			continue
		}
		lines = append(lines, "- "+utils.TruncateRunes(item.OriginalText, types.CONTEXT_ITEM_MAX_CHARS))
		if len(lines) >= types.CONTEXT_FORMAT_MAX_ITEMS {
			break
		}
	}
	if len(lines) > 0 {
		sb.WriteString("Recent conversation:\n")
		sb.WriteString(strings.Join(lines, "\n"))
		sb.WriteString("\n")
	}

	if l.rng.Intn(100) < types.CONTEXT_EXAMPLE_PERCENT {
		for _, item := range sameType {
			if len(item.ResponseText) <= types.CONTEXT_MIN_TEXT_LEN {
				continue
			}
			sb.WriteString("Previous response example:\n")
			sb.WriteString("- " + utils.TruncateRunes(item.ResponseText, types.CONTEXT_EXAMPLE_MAX_CHARS))
			sb.WriteString("\n")
			break
		}
	}

	if sb.Len() == 0 {
		return ""
	}

	sb.WriteString(contextStyleInstruction)
	return sb.String()
}

// shouldUseContext asks the advisory classifier when there is a current
// message to judge; the static probability table is strictly the fallback.
func (l *ContextRetrieverLogic) shouldUseContext(ownerID, scopeID string, eventType types.EventType, currentText string, events []*types.ContextEvent) bool {
	if currentText != "" && l.classifier != nil {
		if verdict, ok := l.askClassifier(ownerID, scopeID, currentText, events); ok {
			return verdict
		}
	}

	if eventType.HighValue() {
		return true
	}

	p := types.CONTEXT_USE_DEFAULT_PERCENT
	if eventType == types.EVENT_TYPE_MESSAGE {
		p = types.CONTEXT_USE_CHAT_PERCENT
		if len(events) > 0 {
			p = types.CONTEXT_USE_CHAT_BOOSTED
		}
	}
	return l.rng.Intn(100) < p
}

func (l *ContextRetrieverLogic) askClassifier(ownerID, scopeID, currentText string, events []*types.ContextEvent) (bool, bool) {
	cacheKey := fmt.Sprintf("ctxneed:%s", utils.MD5(ownerID+"|"+scopeID+"|"+currentText))
	if l.cache != nil {
		if cached, err := l.cache.Get(l.ctx, cacheKey); err == nil && cached != "" {
			return cached == "1", true
		}
	}

	ctx, cancel := context.WithTimeout(l.ctx, l.classifyTimeout)
	defer cancel()

	if l.metrics != nil {
		defer l.metrics.ClassifierTimer("needs_context").ObserveDuration()
	}

	judgment, err := l.classifier.NeedsContext(ctx, currentText,
		ai.EventDigest(events, types.DETECTION_EVENT_LIMIT, types.CONTEXT_EXAMPLE_MAX_CHARS))
	if err != nil {
		slog.Debug("context-need advisory unavailable, using static policy", slog.Any("error", err))
		if l.metrics != nil {
			l.metrics.ClassifierCallInc("needs_context", "error")
		}
		return false, false
	}

	if l.metrics != nil {
		l.metrics.ClassifierCallInc("needs_context", "ok")
	}
	if l.cache != nil {
		val := "0"
		if judgment.Verdict {
			val = "1"
		}
		_ = l.cache.SetEx(l.ctx, cacheKey, val, types.CLASSIFY_CACHE_TTL)
	}
	return judgment.Verdict, true
}
