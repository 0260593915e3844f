package transport

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func statusFor(kind entity.Kind) int {
	switch kind {
	case entity.KindNotFound:
		return http.StatusNotFound
	case entity.KindConflict, entity.KindCapacityExceeded:
		return http.StatusConflict
	case entity.KindPreconditionFailed:
		return http.StatusPreconditionFailed
	case entity.KindInvalidArgument:
		return http.StatusBadRequest
	case entity.KindUnavailable:
		return http.StatusServiceUnavailable
	case entity.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	kind := entity.KindOf(err)
	status := statusFor(kind)
	message := err.Error()

	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Unhandled error")
		message = "internal server error"
	}

	c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Code: kind.String()})
}

func badRequest(c *gin.Context, format string, args ...interface{}) {
	respondError(c, entity.InvalidArgument(format, args...))
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid %s", name)
		return uuid.Nil, false
	}
	return id, true
}

func queryUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		badRequest(c, "%s is required", name)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, "invalid %s", name)
		return uuid.Nil, false
	}
	return id, true
}

// pairQuery reads the studentId and eventId query parameters every pair mutation takes.
func pairQuery(c *gin.Context) (studentID, eventID uuid.UUID, ok bool) {
	if studentID, ok = queryUUID(c, "studentId"); !ok {
		return
	}
	eventID, ok = queryUUID(c, "eventId")
	return
}

func pathPair(c *gin.Context) (studentID, eventID uuid.UUID, ok bool) {
	if studentID, ok = pathUUID(c, "studentId"); !ok {
		return
	}
	eventID, ok = pathUUID(c, "eventId")
	return
}

func queryBool(c *gin.Context, name string) (bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		badRequest(c, "invalid %s", name)
		return false, false
	}
	return v, true
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return false
	}
	return true
}
