package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/rowdybard/banterbox/app/logic/v1"
	"github.com/rowdybard/banterbox/app/response"
	"github.com/rowdybard/banterbox/pkg/errors"
	"github.com/rowdybard/banterbox/pkg/types"
	"github.com/rowdybard/banterbox/pkg/utils"
)

type RecordEventRequest struct {
	OwnerID      string          `json:"owner_id" form:"owner_id" binding:"required"`
	EventType    string          `json:"event_type" form:"event_type" binding:"required"`
	Payload      json.RawMessage `json:"payload" form:"payload"`
	ScopeID      string          `json:"scope_id" form:"scope_id"`
	Importance   int             `json:"importance" form:"importance"`
	OriginalText string          `json:"original_text" form:"original_text"`
}

type RecordEventResponse struct {
	Outcome string `json:"outcome"`
	EventID string `json:"event_id,omitempty"`
}

func (s *HttpSrv) RecordEvent(c *gin.Context) {
	var req RecordEventRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	result := v1.NewEventRecorderLogic(c, s.Core).Record(v1.RecordEventArgs{
		OwnerID:      req.OwnerID,
		EventType:    types.EventType(req.EventType),
		Payload:      req.Payload,
		ScopeID:      req.ScopeID,
		Importance:   req.Importance,
		OriginalText: req.OriginalText,
	})
	if result.Outcome == types.RECORD_VALIDATION_FAILED {
		response.APIError(c, errors.New("api.RecordEvent", result.Outcome.String(), nil).Code(http.StatusBadRequest))
		return
	}

	response.APISuccess(c, RecordEventResponse{
		Outcome: result.Outcome.String(),
		EventID: result.EventID,
	})
}

type GetContextRequest struct {
	OwnerID        string `json:"owner_id" form:"owner_id" binding:"required"`
	EventType      string `json:"event_type" form:"event_type" binding:"required"`
	ScopeID        string `json:"scope_id" form:"scope_id"`
	CurrentText    string `json:"current_text" form:"current_text"`
	DirectQuestion bool   `json:"direct_question" form:"direct_question"`
}

type GetContextResponse struct {
	Context string `json:"context"`
}

func (s *HttpSrv) GetContext(c *gin.Context) {
	var req GetContextRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	logic := v1.NewContextRetrieverLogic(c, s.Core)
	var block string
	if req.DirectQuestion {
		block = logic.ForDirectQuestion(req.OwnerID, types.EventType(req.EventType), req.ScopeID, req.CurrentText)
	} else {
		block = logic.ForGeneration(req.OwnerID, types.EventType(req.EventType), req.ScopeID, req.CurrentText)
	}

	response.APISuccess(c, GetContextResponse{Context: block})
}

type ClassifyRequest struct {
	OwnerID string `json:"owner_id" form:"owner_id" binding:"required"`
	ScopeID string `json:"scope_id" form:"scope_id"`
	Message string `json:"message" form:"message" binding:"required"`
}

func (s *HttpSrv) ClassifyMessage(c *gin.Context) {
	var req ClassifyRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	result := v1.NewDirectQuestionDetectorLogic(c, s.Core).Classify(req.OwnerID, req.ScopeID, req.Message)
	response.APISuccess(c, result)
}

func (s *HttpSrv) RecordResponse(c *gin.Context) {
	var req v1.RecordResponseArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	outcome := v1.NewResponseCorrelatorLogic(c, s.Core).RecordResponse(req)
	if outcome == types.RECORD_VALIDATION_FAILED {
		response.APIError(c, errors.New("api.RecordResponse", outcome.String(), nil).Code(http.StatusBadRequest))
		return
	}
	response.APISuccess(c, RecordEventResponse{Outcome: outcome.String()})
}

type AttachResponseRequest struct {
	ResponseText string `json:"response_text" form:"response_text" binding:"required"`
}

func (s *HttpSrv) AttachResponse(c *gin.Context) {
	var req AttachResponseRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	eventID, _ := c.Params.Get("event_id")
	outcome := v1.NewResponseCorrelatorLogic(c, s.Core).AttachResponse(eventID, req.ResponseText)
	if outcome == types.RECORD_VALIDATION_FAILED {
		response.APIError(c, errors.New("api.AttachResponse", outcome.String(), nil).Code(http.StatusBadRequest))
		return
	}
	response.APISuccess(c, RecordEventResponse{Outcome: outcome.String()})
}

type SweepResponse struct {
	Removed int64 `json:"removed"`
}

func (s *HttpSrv) Sweep(c *gin.Context) {
	removed, err := v1.NewMaintenanceLogic(c, s.Core).SweepExpired()
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, SweepResponse{Removed: removed})
}

type StatsRequest struct {
	OwnerID string `json:"owner_id" form:"owner_id" binding:"required"`
}

func (s *HttpSrv) Stats(c *gin.Context) {
	var req StatsRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	stats, err := v1.NewMaintenanceLogic(c, s.Core).Stats(req.OwnerID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, stats)
}
