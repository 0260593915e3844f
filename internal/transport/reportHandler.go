package transport

import (
	"net/http"

	"github.com/ds124wfegd/college-events/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) GetStatistics(c *gin.Context) {
	stats, err := h.reportService.GetStatistics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *ReportHandler) GetEventPopularity(c *gin.Context) {
	popularity, err := h.reportService.GetEventPopularity(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, popularity)
}

func (h *ReportHandler) GetAttendanceReport(c *gin.Context) {
	report, err := h.reportService.GetAttendanceReport(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) GetEventAttendanceReport(c *gin.Context) {
	eventID, ok := pathUUID(c, "eventId")
	if !ok {
		return
	}

	report, err := h.reportService.GetEventAttendanceReport(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
