package transport

import (
	"net/http"
	"time"

	"github.com/ds124wfegd/college-events/internal/service"
	"github.com/ds124wfegd/college-events/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Colleges      *CollegeHandler
	Students      *StudentHandler
	Events        *EventHandler
	Registrations *RegistrationHandler
	Attendance    *AttendanceHandler
	Feedback      *FeedbackHandler
	Reports       *ReportHandler
	Users         *UserHandler
}

func NewHandlers(s *service.Services) *Handlers {
	return &Handlers{
		Colleges:      NewCollegeHandler(s.Colleges),
		Students:      NewStudentHandler(s.Students),
		Events:        NewEventHandler(s.Events),
		Registrations: NewRegistrationHandler(s.Registrations),
		Attendance:    NewAttendanceHandler(s.Attendance),
		Feedback:      NewFeedbackHandler(s.Feedback),
		Reports:       NewReportHandler(s.Reports),
		Users:         NewUserHandler(s.Users),
	}
}

type RouterConfig struct {
	Auth           middleware.AuthConfig
	RequestTimeout time.Duration
	Version        string
}

func InitRoutes(h *Handlers, cfg RouterConfig) *gin.Engine {
	if cfg.Auth.Resolve == nil {
		cfg.Auth.Resolve = h.Users.userService.ResolveCaller
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": cfg.Version,
			"time":    time.Now().UTC(),
		})
	})

	// API routes
	api := router.Group("/api")
	api.Use(middleware.Timeout(cfg.RequestTimeout))
	api.Use(middleware.Auth(cfg.Auth))
	{
		colleges := api.Group("/colleges")
		{
			colleges.POST("", h.Colleges.CreateCollege)
			colleges.GET("", h.Colleges.GetAllColleges)
			colleges.GET("/:id", h.Colleges.GetCollege)
			colleges.GET("/name/:name", h.Colleges.GetCollegeByName)
			colleges.PUT("/:id", h.Colleges.UpdateCollege)
			colleges.DELETE("/:id", h.Colleges.DeleteCollege)
		}

		students := api.Group("/students")
		{
			students.POST("", h.Students.CreateStudent)
			students.GET("", h.Students.GetAllStudents)
			students.GET("/search", h.Students.SearchStudents)
			students.GET("/:id", h.Students.GetStudent)
			students.GET("/student-id/:studentId", h.Students.GetStudentByNumber)
			students.GET("/college/:collegeId", h.Students.GetStudentsByCollege)
			students.PUT("/:id", h.Students.UpdateStudent)
			students.DELETE("/:id", h.Students.DeleteStudent)
		}

		events := api.Group("/events")
		{
			events.POST("", h.Events.CreateEvent)
			events.GET("", h.Events.GetAllEvents)
			events.GET("/active", h.Events.GetActiveEvents)
			events.GET("/available", h.Events.GetAvailableEvents)
			events.GET("/search", h.Events.SearchEvents)
			events.GET("/date-range", h.Events.GetEventsByDateRange)
			events.GET("/college/:collegeId", h.Events.GetEventsByCollege)
			events.GET("/type/:type", h.Events.GetEventsByType)
			events.GET("/:id", h.Events.GetEvent)
			events.PUT("/:id", h.Events.UpdateEvent)
			events.DELETE("/:id", h.Events.DeleteEvent)
		}

		registrations := api.Group("/registrations")
		{
			registrations.POST("/register", h.Registrations.Register)
			registrations.DELETE("/cancel", h.Registrations.Cancel)
			registrations.GET("", h.Registrations.GetAllRegistrations)
			registrations.GET("/event/:eventId", h.Registrations.GetEventRegistrations)
			registrations.GET("/event/:eventId/count", h.Registrations.CountEventRegistrations)
			registrations.GET("/student/:studentId", h.Registrations.GetStudentRegistrations)
			registrations.GET("/student/:studentId/event/:eventId", h.Registrations.GetRegistration)
		}

		attendance := api.Group("/attendance")
		{
			attendance.POST("/mark", h.Attendance.MarkPresent)
			attendance.POST("/mark-absent", h.Attendance.MarkAbsent)
			attendance.GET("", h.Attendance.GetAllAttendance)
			attendance.GET("/event/:eventId", h.Attendance.GetEventAttendance)
			attendance.GET("/event/:eventId/present", h.Attendance.GetEventPresent)
			attendance.GET("/event/:eventId/count", h.Attendance.CountPresent)
			attendance.GET("/event/:eventId/stats", h.Attendance.GetAttendanceStats)
			attendance.GET("/student/:studentId", h.Attendance.GetStudentAttendance)
			attendance.GET("/student/:studentId/present", h.Attendance.GetStudentPresent)
			attendance.GET("/student/:studentId/event/:eventId", h.Attendance.GetAttendance)
		}

		feedback := api.Group("/feedback")
		{
			feedback.POST("/submit", h.Feedback.SubmitFeedback)
			feedback.PUT("/update", h.Feedback.UpdateFeedback)
			feedback.DELETE("/:feedbackId", h.Feedback.DeleteFeedback)
			feedback.GET("", h.Feedback.GetAllFeedback)
			feedback.GET("/event/:eventId", h.Feedback.GetEventFeedback)
			feedback.GET("/event/:eventId/average-rating", h.Feedback.GetAverageRating)
			feedback.GET("/event/:eventId/count", h.Feedback.CountEventFeedback)
			feedback.GET("/student/:studentId", h.Feedback.GetStudentFeedback)
			feedback.GET("/student/:studentId/event/:eventId", h.Feedback.GetFeedback)
		}

		reports := api.Group("/reports")
		{
			reports.GET("/statistics", h.Reports.GetStatistics)
			reports.GET("/event-popularity", h.Reports.GetEventPopularity)
			reports.GET("/attendance/all", h.Reports.GetAttendanceReport)
			reports.GET("/attendance/event/:eventId", h.Reports.GetEventAttendanceReport)
		}

		users := api.Group("/users")
		{
			users.POST("", h.Users.CreateUser)
			users.GET("", h.Users.GetAllUsers)
			users.GET("/:id", h.Users.GetUser)
			users.PUT("/:id", h.Users.UpdateUser)
			users.PUT("/:id/role", h.Users.ChangeRole)
			users.PUT("/:id/active", h.Users.SetActive)
			users.DELETE("/:id", h.Users.DeleteUser)
		}
	}

	return router
}
