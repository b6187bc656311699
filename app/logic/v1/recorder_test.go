package v1_test

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/rowdybard/banterbox/app/logic/v1"
	"github.com/rowdybard/banterbox/app/store/memstore"
	"github.com/rowdybard/banterbox/pkg/types"
)

var testClock = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time {
	return testClock
}

func newRecorder(events *memstore.ContextEventStore, responses *memstore.PriorResponseStore, seed int64) *v1.EventRecorderLogic {
	return v1.NewEventRecorderWithDeps(context.Background(), events, responses, rand.New(rand.NewSource(seed)), fixedNow)
}

func TestRecordEvent(t *testing.T) {
	events := memstore.NewContextEventStore()
	responses := memstore.NewPriorResponseStore()
	logic := newRecorder(events, responses, 1)

	result := logic.Record(v1.RecordEventArgs{
		OwnerID:      "streamer-1",
		EventType:    types.EVENT_TYPE_MESSAGE,
		Payload:      json.RawMessage(`{"username":"viewer42","text":"hello bot"}`),
		ScopeID:      "twitch:chan1",
		Importance:   3,
		OriginalText: "hello bot",
	})
	require.Equal(t, types.RECORD_STORED, result.Outcome)
	require.NotEmpty(t, result.EventID)

	stored, err := events.GetOne(context.Background(), result.EventID)
	require.NoError(t, err)
	assert.Equal(t, "streamer-1", stored.OwnerID)
	assert.Equal(t, "twitch:chan1", stored.ScopeID)
	assert.Equal(t, 3, stored.Importance)
	assert.Equal(t, "hello bot", stored.OriginalText)
	assert.Equal(t, testClock.Unix(), stored.CreatedAt)
	assert.Equal(t, testClock.Add(types.CONTEXT_EVENT_TTL).Unix(), stored.ExpiresAt)
}

func TestRecordEventValidation(t *testing.T) {
	logic := newRecorder(memstore.NewContextEventStore(), memstore.NewPriorResponseStore(), 1)

	testCases := []struct {
		name string
		args v1.RecordEventArgs
	}{
		{name: "missing owner", args: v1.RecordEventArgs{EventType: types.EVENT_TYPE_MESSAGE}},
		{name: "unknown event type", args: v1.RecordEventArgs{OwnerID: "streamer-1", EventType: "poll_created"}},
		{name: "empty event type", args: v1.RecordEventArgs{OwnerID: "streamer-1"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := logic.Record(tc.args)
			assert.Equal(t, types.RECORD_VALIDATION_FAILED, result.Outcome)
			assert.Empty(t, result.EventID)
		})
	}
}

func TestRecordEventImportanceClamped(t *testing.T) {
	events := memstore.NewContextEventStore()
	logic := newRecorder(events, memstore.NewPriorResponseStore(), 1)

	testCases := []struct {
		name  string
		given int
		want  int
	}{
		{name: "below range", given: -5, want: types.IMPORTANCE_MIN},
		{name: "above range", given: 99, want: types.IMPORTANCE_MAX},
		{name: "unset defaults to floor", given: 0, want: types.IMPORTANCE_MIN},
		{name: "in range untouched", given: 7, want: 7},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := logic.Record(v1.RecordEventArgs{
				OwnerID:    "streamer-1",
				EventType:  types.EVENT_TYPE_DONATION,
				Payload:    json.RawMessage(`{"username":"patron","amount":5,"currency":"USD"}`),
				Importance: tc.given,
			})
			require.Equal(t, types.RECORD_STORED, result.Outcome)

			stored, err := events.GetOne(context.Background(), result.EventID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, stored.Importance)
		})
	}
}

func TestRecordEventMalformedPayloadTolerated(t *testing.T) {
	events := memstore.NewContextEventStore()
	logic := newRecorder(events, memstore.NewPriorResponseStore(), 1)

	result := logic.Record(v1.RecordEventArgs{
		OwnerID:      "streamer-1",
		EventType:    types.EVENT_TYPE_RAID,
		Payload:      json.RawMessage(`{"viewer_count":"not-a-number"`),
		OriginalText: "raid incoming",
	})
	require.Equal(t, types.RECORD_STORED, result.Outcome)

	stored, err := events.GetOne(context.Background(), result.EventID)
	require.NoError(t, err)
	assert.Equal(t, types.EVENT_TYPE_RAID, stored.Payload.Type)
	assert.Equal(t, "raid incoming", stored.OriginalText)
}

func TestRecordEventStorageUnavailable(t *testing.T) {
	events := memstore.NewContextEventStore()
	events.SetFailing(true)
	logic := newRecorder(events, memstore.NewPriorResponseStore(), 1)

	result := logic.Record(v1.RecordEventArgs{
		OwnerID:   "streamer-1",
		EventType: types.EVENT_TYPE_MESSAGE,
		Payload:   json.RawMessage(`{"username":"viewer42","text":"hi"}`),
	})
	assert.Equal(t, types.RECORD_STORAGE_UNAVAILABLE, result.Outcome)
	assert.Empty(t, result.EventID)
}

func TestRecordEventOriginalTextFallsBackToPayload(t *testing.T) {
	events := memstore.NewContextEventStore()
	logic := newRecorder(events, memstore.NewPriorResponseStore(), 1)

	result := logic.Record(v1.RecordEventArgs{
		OwnerID:   "streamer-1",
		EventType: types.EVENT_TYPE_MESSAGE,
		Payload:   json.RawMessage(`{"username":"viewer42","text":"did you see that clip"}`),
	})
	require.Equal(t, types.RECORD_STORED, result.Outcome)

	stored, err := events.GetOne(context.Background(), result.EventID)
	require.NoError(t, err)
	assert.Equal(t, "did you see that clip", stored.OriginalText)
}
