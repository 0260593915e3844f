package transport

import (
	"net/http"

	"github.com/ds124wfegd/college-events/internal/service"

	"github.com/gin-gonic/gin"
)

type CollegeHandler struct {
	collegeService service.CollegeService
}

func NewCollegeHandler(collegeService service.CollegeService) *CollegeHandler {
	return &CollegeHandler{collegeService: collegeService}
}

func (h *CollegeHandler) CreateCollege(c *gin.Context) {
	var req service.CollegeRequest
	if !bindJSON(c, &req) {
		return
	}

	college, err := h.collegeService.CreateCollege(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, college)
}

func (h *CollegeHandler) GetCollege(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	college, err := h.collegeService.GetCollege(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, college)
}

func (h *CollegeHandler) GetCollegeByName(c *gin.Context) {
	college, err := h.collegeService.GetCollegeByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, college)
}

func (h *CollegeHandler) GetAllColleges(c *gin.Context) {
	colleges, err := h.collegeService.GetAllColleges(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, colleges)
}

func (h *CollegeHandler) UpdateCollege(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req service.CollegeRequest
	if !bindJSON(c, &req) {
		return
	}

	college, err := h.collegeService.UpdateCollege(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, college)
}

func (h *CollegeHandler) DeleteCollege(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	cascade, ok := queryBool(c, "cascade")
	if !ok {
		return
	}

	if err := h.collegeService.DeleteCollege(c.Request.Context(), id, cascade); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
