package v1

import (
	"context"
	"log/slog"
	"time"

	"github.com/rowdybard/banterbox/app/core"
	"github.com/rowdybard/banterbox/app/store"
	"github.com/rowdybard/banterbox/pkg/types"
	"github.com/rowdybard/banterbox/pkg/utils"
)

// ResponseCorrelatorLogic links generated responses back to the events that
// triggered them and records them as prior responses for detection. Both
// operations are best effort; a storage outage never blocks the response
// pipeline.
type ResponseCorrelatorLogic struct {
	ctx       context.Context
	events    store.ContextEventStore
	responses store.PriorResponseStore
	now       func() time.Time
}

func NewResponseCorrelatorLogic(ctx context.Context, core *core.Core) *ResponseCorrelatorLogic {
	return &ResponseCorrelatorLogic{
		ctx:       ctx,
		events:    core.Store().ContextEventStore(),
		responses: core.Store().PriorResponseStore(),
		now:       time.Now,
	}
}

func NewResponseCorrelatorWithDeps(ctx context.Context, events store.ContextEventStore, responses store.PriorResponseStore, now func() time.Time) *ResponseCorrelatorLogic {
	return &ResponseCorrelatorLogic{
		ctx:       ctx,
		events:    events,
		responses: responses,
		now:       now,
	}
}

// AttachResponse stores the bot's response text on the event it answered, so
// later retrieval can surface it as a response example.
func (l *ResponseCorrelatorLogic) AttachResponse(eventID, responseText string) types.RecordOutcome {
	if eventID == "" || responseText == "" {
		return types.RECORD_VALIDATION_FAILED
	}
	if err := l.events.AttachResponse(l.ctx, eventID, responseText); err != nil {
		slog.Warn("attach response skipped, store unavailable",
			slog.String("event_id", eventID), slog.Any("error", err))
		return types.RECORD_STORAGE_UNAVAILABLE
	}
	return types.RECORD_STORED
}

type RecordResponseArgs struct {
	OwnerID           string             `json:"owner_id" binding:"required"`
	ScopeID           string             `json:"scope_id"`
	ResponseText      string             `json:"response_text" binding:"required"`
	SourceQuestion    string             `json:"source_question"`
	ResponseKind      types.ResponseKind `json:"response_kind"`
	Confidence        int                `json:"confidence"`
	WasDirectQuestion bool               `json:"was_direct_question"`
}

// RecordResponse stores a just-sent response on the short detection horizon.
func (l *ResponseCorrelatorLogic) RecordResponse(args RecordResponseArgs) types.RecordOutcome {
	if args.OwnerID == "" || args.ResponseText == "" {
		return types.RECORD_VALIDATION_FAILED
	}

	kind := args.ResponseKind
	if !kind.Valid() {
		kind = types.RESPONSE_KIND_CONTEXTUAL
	}

	// confidence shares the 1..10 range of event importance
	confidence := args.Confidence
	if confidence < 1 {
		confidence = 1
	}
	if confidence > 10 {
		confidence = 10
	}

	createdAt := l.now()
	resp := types.PriorResponse{
		ID:                utils.GenUniqIDStr(),
		OwnerID:           args.OwnerID,
		ScopeID:           args.ScopeID,
		ResponseText:      args.ResponseText,
		SourceQuestion:    args.SourceQuestion,
		ResponseKind:      kind,
		Confidence:        confidence,
		WasDirectQuestion: args.WasDirectQuestion,
		CreatedAt:         createdAt.Unix(),
		ExpiresAt:         createdAt.Add(types.PRIOR_RESPONSE_TTL).Unix(),
	}

	if err := l.responses.Create(l.ctx, &resp); err != nil {
		slog.Warn("record response skipped, store unavailable",
			slog.String("owner_id", args.OwnerID), slog.Any("error", err))
		return types.RECORD_STORAGE_UNAVAILABLE
	}
	return types.RECORD_STORED
}
