package transport

import (
	"net/http"
	"strconv"

	"github.com/ds124wfegd/college-events/internal/service"

	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	feedbackService service.FeedbackService
}

func NewFeedbackHandler(feedbackService service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// feedbackQuery reads studentId, eventId, rating and comment from the query string.
func feedbackQuery(c *gin.Context) (*service.FeedbackRequest, bool) {
	studentID, eventID, ok := pairQuery(c)
	if !ok {
		return nil, false
	}

	rating, err := strconv.Atoi(c.Query("rating"))
	if err != nil {
		badRequest(c, "rating must be an integer")
		return nil, false
	}

	return &service.FeedbackRequest{
		StudentID: studentID,
		EventID:   eventID,
		Rating:    rating,
		Comment:   c.Query("comment"),
	}, true
}

func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	req, ok := feedbackQuery(c)
	if !ok {
		return
	}

	feedback, err := h.feedbackService.SubmitFeedback(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, feedback)
}

func (h *FeedbackHandler) UpdateFeedback(c *gin.Context) {
	req, ok := feedbackQuery(c)
	if !ok {
		return
	}

	feedback, err := h.feedbackService.UpdateFeedback(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, feedback)
}

func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	id, ok := pathUUID(c, "feedbackId")
	if !ok {
		return
	}

	if err := h.feedbackService.DeleteFeedback(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	studentID, eventID, ok := pathPair(c)
	if !ok {
		return
	}

	feedback, err := h.feedbackService.GetFeedback(c.Request.Context(), studentID, eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, feedback)
}

func (h *FeedbackHandler) GetAllFeedback(c *gin.Context) {
	feedback, err := h.feedbackService.GetAllFeedback(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, feedback)
}

func (h *FeedbackHandler) GetEventFeedback(c *gin.Context) {
	eventID, ok := pathUUID(c, "eventId")
	if !ok {
		return
	}

	feedback, err := h.feedbackService.GetEventFeedback(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, feedback)
}

func (h *FeedbackHandler) GetStudentFeedback(c *gin.Context) {
	studentID, ok := pathUUID(c, "studentId")
	if !ok {
		return
	}

	feedback, err := h.feedbackService.GetStudentFeedback(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, feedback)
}

func (h *FeedbackHandler) CountEventFeedback(c *gin.Context) {
	eventID, ok := pathUUID(c, "eventId")
	if !ok {
		return
	}

	count, err := h.feedbackService.CountEventFeedback(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, count)
}

func (h *FeedbackHandler) GetAverageRating(c *gin.Context) {
	eventID, ok := pathUUID(c, "eventId")
	if !ok {
		return
	}

	avg, err := h.feedbackService.GetAverageRating(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, avg)
}
