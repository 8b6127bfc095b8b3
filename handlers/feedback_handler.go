package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	apperrors "github.com/NomadCrew/feedback-backend/errors"
	"github.com/NomadCrew/feedback-backend/services"
	"github.com/NomadCrew/feedback-backend/types"
	"github.com/gin-gonic/gin"
)

// FeedbackHandler exposes list, submit and delete over HTTP.
type FeedbackHandler struct {
	service *services.FeedbackService
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(service *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// ListFeedback godoc
// @Summary      List feedback
// @Description  Returns every stored feedback entry in insertion order
// @Tags         feedback
// @Produce      json
// @Success      200  {array}   types.Feedback
// @Failure      500  {object}  types.ErrorResponse
// @Router       /feedback [get]
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	feedbacks, err := h.service.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, feedbacks)
}

// SubmitFeedback godoc
// @Summary      Submit feedback
// @Description  Validates and stores a feedback entry. The server assigns id and created_at.
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        body  body      types.FeedbackSubmission  true  "Feedback payload"
// @Success      200   {object}  types.Feedback
// @Failure      400   {object}  types.ErrorResponse
// @Failure      429   {object}  types.ErrorResponse
// @Failure      500   {object}  types.ErrorResponse
// @Router       /feedback [post]
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	var sub types.FeedbackSubmission
	if !decodeSubmission(c, &sub) {
		return
	}

	created, err := h.service.Submit(c.Request.Context(), sub)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, created)
}

// DeleteFeedback godoc
// @Summary      Delete feedback
// @Description  Removes the feedback entry with the given id
// @Tags         feedback
// @Produce      json
// @Param        id   path      string  true  "Feedback ID"
// @Success      200  {object}  types.MessageResponse
// @Failure      400  {object}  types.ErrorResponse
// @Failure      404  {object}  types.ErrorResponse
// @Failure      500  {object}  types.ErrorResponse
// @Router       /feedback/{id} [delete]
func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.MessageResponse{Message: "Feedback deleted successfully"})
}

// Preflight answers CORS preflight requests with an empty 200.
func (h *FeedbackHandler) Preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}

// MethodNotAllowed rejects methods no feedback route accepts. OPTIONS is
// still answered as a preflight.
func MethodNotAllowed(c *gin.Context) {
	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusOK)
		return
	}
	_ = c.Error(apperrors.MethodNotAllowed())
}

// NotFound handles unknown paths.
func NotFound(c *gin.Context) {
	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusOK)
		return
	}
	_ = c.Error(apperrors.NotFound("Route not found"))
}

// decodeSubmission reads the whole body so an empty body and malformed JSON
// get distinct 400 responses.
func decodeSubmission(c *gin.Context, sub *types.FeedbackSubmission) bool {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		_ = c.Error(apperrors.ValidationFailed(apperrors.ErrorTypeBadPayload, "Invalid JSON in request body"))
		return false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		_ = c.Error(apperrors.ValidationFailed(apperrors.ErrorTypeBadPayload, "Request body is required"))
		return false
	}
	if err := json.Unmarshal(body, sub); err != nil {
		appErr := apperrors.ValidationFailed(apperrors.ErrorTypeBadPayload, "Invalid JSON in request body")
		appErr.Detail = err.Error()
		_ = c.Error(appErr)
		return false
	}
	return true
}
