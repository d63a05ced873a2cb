package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/repetit/testflow-backend/internal/answerset"
	"github.com/repetit/testflow-backend/internal/middleware"
	"github.com/repetit/testflow-backend/internal/model"
	"github.com/repetit/testflow-backend/internal/response"
	"github.com/repetit/testflow-backend/internal/session"
	"github.com/repetit/testflow-backend/internal/validator"
)

// FlowHandler exposes the four-stage flow over REST.
type FlowHandler struct {
	ctrl *session.Controller
	log  zerolog.Logger
}

// NewFlowHandler creates a new FlowHandler.
func NewFlowHandler(ctrl *session.Controller, log zerolog.Logger) *FlowHandler {
	return &FlowHandler{
		ctrl: ctrl,
		log:  log.With().Str("component", "flow_handler").Logger(),
	}
}

// CheckCode godoc
// POST /api/v1/flow/code
// Validates a test code against the upstream and opens a session.
func (h *FlowHandler) CheckCode(c *gin.Context) {
	var req model.CheckCodeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	view, err := h.ctrl.CheckTestCode(c.Request.Context(), middleware.GetUserID(c), req.TestCode)
	if err != nil {
		h.failFlow(c, err, nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// RecordIdentity godoc
// POST /api/v1/flow/identity
// Captures the taker's identity and starts the countdown.
func (h *FlowHandler) RecordIdentity(c *gin.Context) {
	var req model.Identity
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	view, err := h.ctrl.RecordIdentity(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		h.failFlow(c, err, nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// GetState godoc
// GET /api/v1/flow/state
// Returns the full session view, resuming from a snapshot when needed.
func (h *FlowHandler) GetState(c *gin.Context) {
	view, err := h.ctrl.State(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.failFlow(c, err, nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// UpdateAnswer godoc
// PUT /api/v1/flow/answers/:index
// Replaces a single answer slot. An empty value clears the slot.
func (h *FlowHandler) UpdateAnswer(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidIndex)
		return
	}

	var req model.UpdateAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrInvalidPayload, fields)
		return
	}

	view, err := h.ctrl.UpdateAnswer(c.Request.Context(), middleware.GetUserID(c), index, req.Value)
	if err != nil {
		h.failFlow(c, err, nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// Submit godoc
// POST /api/v1/flow/submit
// Makes the single submission attempt. On network failure the answers are
// already backed up locally and the surviving state rides along with the
// error notice.
func (h *FlowHandler) Submit(c *gin.Context) {
	view, err := h.ctrl.Submit(c.Request.Context(), middleware.GetUserID(c), session.TriggerManual)
	if err != nil {
		h.failFlow(c, err, view)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// Result godoc
// GET /api/v1/flow/result
// The results-stage read: submitted, or backed up awaiting retry.
func (h *FlowHandler) Result(c *gin.Context) {
	view, err := h.ctrl.Result(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.failFlow(c, err, nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// Retry godoc
// POST /api/v1/flow/retry
// Resends a locally backed up submission.
func (h *FlowHandler) Retry(c *gin.Context) {
	view, err := h.ctrl.Retry(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.failFlow(c, err, nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// Reset godoc
// POST /api/v1/flow/reset
// Leaves the flow: drops the session and snapshot so a new code can be
// entered. Backup records survive a reset.
func (h *FlowHandler) Reset(c *gin.Context) {
	if err := h.ctrl.Reset(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		h.failFlow(c, err, nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// failFlow translates a controller error into the notice envelope. data, when
// non-nil, is the session view that survives the failure.
func (h *FlowHandler) failFlow(c *gin.Context, err error, data interface{}) {
	var (
		winErr *session.WindowError
		denied *session.AccessDeniedError
		valErr *session.ValidationError
	)

	switch {
	case errors.As(err, &winErr):
		code := response.ErrTestExpired
		switch winErr.Outcome {
		case session.WindowNotYetStarted:
			code = response.ErrTestNotStarted
		case session.WindowAdminEnded:
			code = response.ErrTestEndedByAdmin
		}
		response.FailWithNotice(c, http.StatusConflict, response.NewNotice(code, winErr.Detail, nil), nil)

	case errors.As(err, &denied):
		response.FailWithNotice(c, http.StatusForbidden, response.NewNotice(response.ErrAccessDenied, denied.Reason, nil), nil)

	case errors.As(err, &valErr):
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, valErr.Fields)

	case errors.Is(err, session.ErrMissingIdentity):
		response.Fail(c, http.StatusBadRequest, response.ErrMissingIdentity)

	case errors.Is(err, session.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)

	case errors.Is(err, session.ErrIdentityRequired):
		response.Fail(c, http.StatusConflict, response.ErrMissingIdentity)

	case errors.Is(err, session.ErrTransportUnavailable):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrTransportUnavailable)

	case errors.Is(err, session.ErrInvalidServerResponse):
		response.Fail(c, http.StatusBadGateway, response.ErrInvalidServerResponse)

	case errors.Is(err, session.ErrSubmissionInFlight):
		response.Fail(c, http.StatusConflict, response.ErrSubmissionInFlight)

	case errors.Is(err, session.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)

	case errors.Is(err, session.ErrNoBackup):
		response.Fail(c, http.StatusNotFound, response.ErrNoBackup)

	case errors.Is(err, session.ErrSubmissionFailed):
		response.FailWithNotice(c, http.StatusBadGateway, response.NewNotice(response.ErrSubmissionFailed, "", nil), gin.H{"session": data})

	case errors.Is(err, answerset.ErrIndexRange):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidIndex)

	case errors.Is(err, answerset.ErrInvalidOption):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidPayload)

	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled flow error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
