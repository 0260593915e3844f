package transport

import (
	"context"
	"net/http"

	"github.com/ds124wfegd/college-events/internal/entity"
	"github.com/ds124wfegd/college-events/internal/service"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	eventService service.EventService
}

func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req service.EventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	event, err := h.eventService.GetEvent(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) GetAllEvents(c *gin.Context) {
	h.list(c, h.eventService.GetAllEvents)
}

func (h *EventHandler) GetActiveEvents(c *gin.Context) {
	h.list(c, h.eventService.GetActiveEvents)
}

func (h *EventHandler) GetAvailableEvents(c *gin.Context) {
	h.list(c, h.eventService.GetAvailableEvents)
}

func (h *EventHandler) GetEventsByCollege(c *gin.Context) {
	collegeID, ok := pathUUID(c, "collegeId")
	if !ok {
		return
	}

	events, err := h.eventService.GetEventsByCollege(c.Request.Context(), collegeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) GetEventsByType(c *gin.Context) {
	events, err := h.eventService.GetEventsByType(c.Request.Context(), entity.EventType(c.Param("type")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// GetEventsByDateRange принимает start и end в формате 2006-01-02T15:04 или RFC 3339
func (h *EventHandler) GetEventsByDateRange(c *gin.Context) {
	from, err := entity.ParseEventTime(c.Query("start"))
	if err != nil {
		badRequest(c, "invalid start: %v", err)
		return
	}
	to, err := entity.ParseEventTime(c.Query("end"))
	if err != nil {
		badRequest(c, "invalid end: %v", err)
		return
	}

	events, err := h.eventService.GetEventsByDateRange(c.Request.Context(), from.Time, to.Time)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) SearchEvents(c *gin.Context) {
	events, err := h.eventService.SearchEvents(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req service.EventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.eventService.UpdateEvent(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	cascade, ok := queryBool(c, "cascade")
	if !ok {
		return
	}

	if err := h.eventService.DeleteEvent(c.Request.Context(), id, cascade); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *EventHandler) list(c *gin.Context, fetch func(ctx context.Context) ([]*entity.EventWithAvailability, error)) {
	events, err := fetch(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}
