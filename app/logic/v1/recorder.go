package v1

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"time"

	"github.com/rowdybard/banterbox/app/core"
	"github.com/rowdybard/banterbox/app/store"
	"github.com/rowdybard/banterbox/pkg/safe"
	"github.com/rowdybard/banterbox/pkg/types"
	"github.com/rowdybard/banterbox/pkg/utils"
)

// EventRecorderLogic normalizes inbound platform events into stored context
// records. Recording is best-effort: the event source never depends on
// memory for correctness, so failures are logged and reported through the
// RecordOutcome, never raised.
type EventRecorderLogic struct {
	ctx       context.Context
	events    store.ContextEventStore
	responses store.PriorResponseStore
	metrics   *core.Metrics
	rng       *rand.Rand
	now       func() time.Time
}

func NewEventRecorderLogic(ctx context.Context, core *core.Core) *EventRecorderLogic {
	return &EventRecorderLogic{
		ctx:       ctx,
		events:    core.Store().ContextEventStore(),
		responses: core.Store().PriorResponseStore(),
		metrics:   core.Metrics(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
	}
}

// NewEventRecorderWithDeps builds a recorder with explicit dependencies so
// tests can pin the clock and the sweep dice.
func NewEventRecorderWithDeps(ctx context.Context, events store.ContextEventStore, responses store.PriorResponseStore, rng *rand.Rand, now func() time.Time) *EventRecorderLogic {
	return &EventRecorderLogic{
		ctx:       ctx,
		events:    events,
		responses: responses,
		rng:       rng,
		now:       now,
	}
}

type RecordEventArgs struct {
	OwnerID      string
	EventType    types.EventType
	Payload      json.RawMessage
	ScopeID      string
	Importance   int
	OriginalText string
}

// Record stores one inbound event and opportunistically piggybacks an expiry
// sweep on a fraction of write traffic; there is no dedicated cleanup
// scheduler on the hot path.
func (l *EventRecorderLogic) Record(args RecordEventArgs) types.RecordResult {
	if args.OwnerID == "" || !args.EventType.Valid() {
		l.countRecorded(string(args.EventType), types.RECORD_VALIDATION_FAILED)
		return types.RecordResult{Outcome: types.RECORD_VALIDATION_FAILED}
	}

	payload, err := types.ParseEventPayload(args.EventType, args.Payload)
	if err != nil {
		// Malformed detail is tolerated: keep the empty variant and move on.
		slog.Warn("event payload malformed, fields defaulted",
			slog.String("owner_id", args.OwnerID),
			slog.String("event_type", string(args.EventType)),
			slog.Any("error", err))
		payload = types.EventPayload{Type: args.EventType}
	}

	originalText := args.OriginalText
	if originalText == "" {
		originalText = payload.Text()
	}

	if args.Importance == 0 {
		args.Importance = types.IMPORTANCE_MIN
	}

	createdAt := l.now()
	event := &types.ContextEvent{
		ID:           utils.GenUniqIDStr(),
		OwnerID:      args.OwnerID,
		ScopeID:      args.ScopeID,
		EventType:    args.EventType,
		Payload:      payload,
		Summary:      payload.Summary(),
		OriginalText: originalText,
		Importance:   types.ClampImportance(args.Importance),
		Participants: payload.Participants(),
		CreatedAt:    createdAt.Unix(),
		ExpiresAt:    createdAt.Add(types.CONTEXT_EVENT_TTL).Unix(),
	}

	if err := l.events.Create(l.ctx, event); err != nil {
		slog.Error("failed to record context event",
			slog.String("owner_id", args.OwnerID),
			slog.String("event_type", string(args.EventType)),
			slog.Any("error", err))
		l.countRecorded(string(args.EventType), types.RECORD_STORAGE_UNAVAILABLE)
		return types.RecordResult{Outcome: types.RECORD_STORAGE_UNAVAILABLE}
	}

	l.maybeSweep()

	l.countRecorded(string(args.EventType), types.RECORD_STORED)
	return types.RecordResult{Outcome: types.RECORD_STORED, EventID: event.ID}
}

// maybeSweep rolls the cleanup dice and, on a hit, runs the expiry sweep off
// the caller's path.
func (l *EventRecorderLogic) maybeSweep() {
	if l.rng.Intn(100) >= types.SWEEP_ON_WRITE_PERCENT {
		return
	}

	events, responses, metrics := l.events, l.responses, l.metrics
	go safe.Run(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
		defer cancel()
		sweeper := &MaintenanceLogic{ctx: ctx, events: events, responses: responses, metrics: metrics, now: time.Now}
		if _, err := sweeper.SweepExpired(); err != nil {
			slog.Warn("opportunistic sweep failed", slog.Any("error", err))
		}
	})
}

func (l *EventRecorderLogic) countRecorded(eventType string, outcome types.RecordOutcome) {
	if l.metrics == nil {
		return
	}
	l.metrics.EventRecordedInc(eventType, outcome.String())
}
