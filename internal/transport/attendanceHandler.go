package transport

import (
	"net/http"

	"github.com/ds124wfegd/college-events/internal/service"

	"github.com/gin-gonic/gin"
)

type AttendanceHandler struct {
	attendanceService service.AttendanceService
}

func NewAttendanceHandler(attendanceService service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

func (h *AttendanceHandler) MarkPresent(c *gin.Context) {
	h.mark(c, true)
}

func (h *AttendanceHandler) MarkAbsent(c *gin.Context) {
	h.mark(c, false)
}

func (h *AttendanceHandler) mark(c *gin.Context, present bool) {
	studentID, eventID, ok := pairQuery(c)
	if !ok {
		return
	}

	mark := h.attendanceService.MarkAbsent
	if present {
		mark = h.attendanceService.MarkPresent
	}

	attendance, err := mark(c.Request.Context(), studentID, eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, attendance)
}

func (h *AttendanceHandler) GetAttendance(c *gin.Context) {
	studentID, eventID, ok := pathPair(c)
	if !ok {
		return
	}

	attendance, err := h.attendanceService.GetAttendance(c.Request.Context(), studentID, eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, attendance)
}

func (h *AttendanceHandler) GetAllAttendance(c *gin.Context) {
	records, err := h.attendanceService.GetAllAttendance(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *AttendanceHandler) GetEventAttendance(c *gin.Context) {
	h.eventAttendance(c, false)
}

func (h *AttendanceHandler) GetEventPresent(c *gin.Context) {
	h.eventAttendance(c, true)
}

func (h *AttendanceHandler) eventAttendance(c *gin.Context, presentOnly bool) {
	eventID, ok := pathUUID(c, "eventId")
	if !ok {
		return
	}

	records, err := h.attendanceService.GetEventAttendance(c.Request.Context(), eventID, presentOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *AttendanceHandler) GetStudentAttendance(c *gin.Context) {
	h.studentAttendance(c, false)
}

func (h *AttendanceHandler) GetStudentPresent(c *gin.Context) {
	h.studentAttendance(c, true)
}

func (h *AttendanceHandler) studentAttendance(c *gin.Context, presentOnly bool) {
	studentID, ok := pathUUID(c, "studentId")
	if !ok {
		return
	}

	records, err := h.attendanceService.GetStudentAttendance(c.Request.Context(), studentID, presentOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *AttendanceHandler) CountPresent(c *gin.Context) {
	eventID, ok := pathUUID(c, "eventId")
	if !ok {
		return
	}

	count, err := h.attendanceService.CountPresent(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, count)
}

func (h *AttendanceHandler) GetAttendanceStats(c *gin.Context) {
	eventID, ok := pathUUID(c, "eventId")
	if !ok {
		return
	}

	stats, err := h.attendanceService.GetAttendanceStats(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
