package v1_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	v1 "github.com/rowdybard/banterbox/app/logic/v1"
	"github.com/rowdybard/banterbox/app/store/memstore"
	"github.com/rowdybard/banterbox/pkg/ai"
	"github.com/rowdybard/banterbox/pkg/types"
)

// stubClassifier answers every judgment with a fixed verdict or error.
type stubClassifier struct {
	verdict bool
	err     error
	calls   int
}

func (s *stubClassifier) NeedsContext(ctx context.Context, message, recentDigest string) (ai.Judgment, error) {
	s.calls++
	return ai.Judgment{Verdict: s.verdict}, s.err
}

func (s *stubClassifier) IsDirectQuestion(ctx context.Context, message, recentDigest string) (ai.Judgment, error) {
	s.calls++
	return ai.Judgment{Verdict: s.verdict}, s.err
}

func TestContextAdvisoryAuthoritative(t *testing.T) {
	events := memstore.NewContextEventStore()
	seedEvent(t, events, "e1", types.EVENT_TYPE_MESSAGE, "twitch:chan1", "talking about the tournament", time.Minute)

	t.Run("classifier no suppresses context", func(t *testing.T) {
		classifier := &stubClassifier{verdict: false}
		logic := v1.NewContextRetrieverWithDeps(context.Background(), events, classifier, rand.New(rand.NewSource(1)), fixedNow)

		got := logic.ForGeneration("streamer-1", types.EVENT_TYPE_MESSAGE, "twitch:chan1", "totally unrelated message")
		assert.Empty(t, got)
		assert.Equal(t, 1, classifier.calls)
	})

	t.Run("classifier yes forces context", func(t *testing.T) {
		classifier := &stubClassifier{verdict: true}
		logic := v1.NewContextRetrieverWithDeps(context.Background(), events, classifier, rand.New(rand.NewSource(1)), fixedNow)

		got := logic.ForGeneration("streamer-1", types.EVENT_TYPE_MESSAGE, "twitch:chan1", "how is the tournament going")
		assert.Contains(t, got, "talking about the tournament")
	})

	t.Run("classifier error falls back to static policy", func(t *testing.T) {
		classifier := &stubClassifier{err: errors.New("model timeout")}
		logic := v1.NewContextRetrieverWithDeps(context.Background(), events, classifier, rand.New(rand.NewSource(1)), fixedNow)

		// high-value fallback path always uses context
		got := logic.ForGeneration("streamer-1", types.EVENT_TYPE_SUBSCRIPTION, "twitch:chan1", "thanks for the sub")
		assert.Contains(t, got, "talking about the tournament")
	})

	t.Run("no current text skips the classifier", func(t *testing.T) {
		classifier := &stubClassifier{verdict: false}
		logic := v1.NewContextRetrieverWithDeps(context.Background(), events, classifier, rand.New(rand.NewSource(1)), fixedNow)

		logic.ForGeneration("streamer-1", types.EVENT_TYPE_SUBSCRIPTION, "twitch:chan1", "")
		assert.Zero(t, classifier.calls)
	})
}

func TestClassifyAdvisoryAdjustment(t *testing.T) {
	events := memstore.NewContextEventStore()
	responses := memstore.NewPriorResponseStore()

	// pattern(4) + question(1) = 5 without advice
	const message = "What did you say?"

	t.Run("agreement raises the score", func(t *testing.T) {
		detector := v1.NewDirectQuestionDetectorWithDeps(context.Background(), events, responses, &stubClassifier{verdict: true}, fixedNow)
		result := detector.Classify("streamer-1", "twitch:chan1", message)
		assert.Equal(t, 5+types.SCORE_ADVISORY_AGREE, result.Confidence)
		assert.True(t, result.ShouldAlwaysRespond)
	})

	t.Run("disagreement drops below the threshold", func(t *testing.T) {
		detector := v1.NewDirectQuestionDetectorWithDeps(context.Background(), events, responses, &stubClassifier{verdict: false}, fixedNow)
		result := detector.Classify("streamer-1", "twitch:chan1", message)
		assert.Equal(t, 5+types.SCORE_ADVISORY_DISAGREE, result.Confidence)
		assert.False(t, result.IsDirectQuestion)
	})

	t.Run("classifier failure leaves the score untouched", func(t *testing.T) {
		detector := v1.NewDirectQuestionDetectorWithDeps(context.Background(), events, responses, &stubClassifier{err: errors.New("model down")}, fixedNow)
		result := detector.Classify("streamer-1", "twitch:chan1", message)
		assert.Equal(t, 5, result.Confidence)
		assert.True(t, result.IsDirectQuestion)
	})

	t.Run("storage outage skips the advisory call", func(t *testing.T) {
		downEvents := memstore.NewContextEventStore()
		downResponses := memstore.NewPriorResponseStore()
		downEvents.SetFailing(true)
		downResponses.SetFailing(true)

		classifier := &stubClassifier{verdict: true}
		detector := v1.NewDirectQuestionDetectorWithDeps(context.Background(), downEvents, downResponses, classifier, fixedNow)
		result := detector.Classify("streamer-1", "twitch:chan1", message)

		// fallback mode scores on message signals alone
		assert.Zero(t, classifier.calls)
		assert.Equal(t, 5, result.Confidence)
	})
}
