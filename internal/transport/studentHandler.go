package transport

import (
	"net/http"

	"github.com/ds124wfegd/college-events/internal/service"

	"github.com/gin-gonic/gin"
)

type StudentHandler struct {
	studentService service.StudentService
}

func NewStudentHandler(studentService service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req service.StudentRequest
	if !bindJSON(c, &req) {
		return
	}

	student, err := h.studentService.CreateStudent(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, student)
}

func (h *StudentHandler) GetStudent(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	student, err := h.studentService.GetStudent(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, student)
}

// GetStudentByNumber looks a student up by the college-issued student id.
func (h *StudentHandler) GetStudentByNumber(c *gin.Context) {
	student, err := h.studentService.GetStudentByStudentID(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, student)
}

func (h *StudentHandler) GetAllStudents(c *gin.Context) {
	students, err := h.studentService.GetAllStudents(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

func (h *StudentHandler) GetStudentsByCollege(c *gin.Context) {
	collegeID, ok := pathUUID(c, "collegeId")
	if !ok {
		return
	}

	students, err := h.studentService.GetStudentsByCollege(c.Request.Context(), collegeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

func (h *StudentHandler) SearchStudents(c *gin.Context) {
	students, err := h.studentService.SearchStudents(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req service.StudentRequest
	if !bindJSON(c, &req) {
		return
	}

	student, err := h.studentService.UpdateStudent(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, student)
}

func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	cascade, ok := queryBool(c, "cascade")
	if !ok {
		return
	}

	if err := h.studentService.DeleteStudent(c.Request.Context(), id, cascade); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
