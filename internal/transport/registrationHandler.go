package transport

import (
	"net/http"

	"github.com/ds124wfegd/college-events/internal/service"

	"github.com/gin-gonic/gin"
)

type RegistrationHandler struct {
	registrationService service.RegistrationService
}

func NewRegistrationHandler(registrationService service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

// Register: POST /registrations/register?studentId=&eventId=
func (h *RegistrationHandler) Register(c *gin.Context) {
	studentID, eventID, ok := pairQuery(c)
	if !ok {
		return
	}

	registration, err := h.registrationService.Register(c.Request.Context(), studentID, eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registration)
}

// Cancel: DELETE /registrations/cancel?studentId=&eventId=[&force=true]
func (h *RegistrationHandler) Cancel(c *gin.Context) {
	studentID, eventID, ok := pairQuery(c)
	if !ok {
		return
	}
	force, ok := queryBool(c, "force")
	if !ok {
		return
	}

	if err := h.registrationService.Cancel(c.Request.Context(), studentID, eventID, force); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RegistrationHandler) GetRegistration(c *gin.Context) {
	studentID, eventID, ok := pathPair(c)
	if !ok {
		return
	}

	registration, err := h.registrationService.GetRegistration(c.Request.Context(), studentID, eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, registration)
}

func (h *RegistrationHandler) GetAllRegistrations(c *gin.Context) {
	registrations, err := h.registrationService.GetAllRegistrations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, registrations)
}

func (h *RegistrationHandler) GetEventRegistrations(c *gin.Context) {
	eventID, ok := pathUUID(c, "eventId")
	if !ok {
		return
	}

	registrations, err := h.registrationService.GetEventRegistrations(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, registrations)
}

func (h *RegistrationHandler) GetStudentRegistrations(c *gin.Context) {
	studentID, ok := pathUUID(c, "studentId")
	if !ok {
		return
	}

	registrations, err := h.registrationService.GetStudentRegistrations(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, registrations)
}

func (h *RegistrationHandler) CountEventRegistrations(c *gin.Context) {
	eventID, ok := pathUUID(c, "eventId")
	if !ok {
		return
	}

	count, err := h.registrationService.CountEventRegistrations(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, count)
}
