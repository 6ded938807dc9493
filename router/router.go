package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crewplex/workforce-app/controllers"
	"github.com/crewplex/workforce-app/middlewares"
	"github.com/crewplex/workforce-app/services"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	workDir, _ := os.Getwd()

	// Generated timesheet PDFs live under public/uploads.
	uploadsPath := filepath.Join(workDir, "public", "uploads")
	r.Static("/uploads", uploadsPath)

	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			if !strings.HasSuffix(strings.ToLower(c.Request.URL.Path), ".pdf") {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
		}
		c.Next()
	})

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	pdfGen := services.NewFPDFGenerator()
	timesheetSvc := services.NewTimesheetService(db, pdfGen)

	userCtrl := controllers.NewUserController(db)
	companyCtrl := controllers.NewCompanyController(db)
	jobCtrl := controllers.NewJobController(db)
	shiftCtrl := controllers.NewShiftController(db)
	assignmentCtrl := controllers.NewAssignmentController(db)
	timesheetCtrl := controllers.NewTimesheetController(db, timesheetSvc)
	notificationCtrl := controllers.NewNotificationController(db)
	dashboardCtrl := controllers.NewDashboardController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/api")
	auth.Use(middlewares.AuthMiddleware())

	auth.POST("/logout", userCtrl.Logout)
	auth.GET("/profile", userCtrl.GetProfile)
	auth.GET("/users", userCtrl.GetAllUsers)

	// COMPANIES
	auth.GET("/companies", companyCtrl.GetAllCompanies)
	auth.POST("/companies", companyCtrl.CreateCompany)
	auth.GET("/companies/:company_id", companyCtrl.GetCompanyByID)

	// JOBS
	auth.GET("/jobs", jobCtrl.GetAllJobs)
	auth.POST("/jobs", jobCtrl.CreateJob)
	auth.GET("/jobs/:job_id", jobCtrl.GetJobByID)

	// SHIFTS
	auth.GET("/shifts", shiftCtrl.GetAllShifts)
	auth.POST("/shifts", shiftCtrl.CreateShift)
	auth.GET("/shifts/:shift_id", shiftCtrl.GetShiftByID)
	auth.PATCH("/shifts/:shift_id", shiftCtrl.UpdateShift)
	auth.GET("/shifts/:shift_id/fulfillment", shiftCtrl.GetShiftFulfillment)
	auth.GET("/shifts/:shift_id/needs", shiftCtrl.GetShiftNeeds)

	// ASSIGNMENTS AND TIME ENTRIES
	auth.POST("/shifts/:shift_id/assignments", assignmentCtrl.AssignWorker)
	auth.PATCH("/assignments/:assignment_id", assignmentCtrl.UpdateAssignmentStatus)
	auth.POST("/assignments/:assignment_id/clock-in", assignmentCtrl.ClockIn)
	auth.POST("/assignments/:assignment_id/clock-out", assignmentCtrl.ClockOut)

	// TIMESHEETS
	auth.GET("/timesheets", timesheetCtrl.GetAllTimesheets)
	auth.POST("/timesheets", timesheetCtrl.CreateTimesheet)
	auth.GET("/timesheets/:timesheet_id", timesheetCtrl.GetTimesheetByID)
	auth.GET("/timesheets/:timesheet_id/actions", timesheetCtrl.GetTimesheetActions)

	// Approval transitions generate PDFs and are rate limited separately.
	approvals := auth.Group("/timesheets")
	approvals.Use(middlewares.ApprovalRateLimiter())
	approvals.Use(middlewares.LogApprovalRequest())
	approvals.Use(middlewares.PDFLoggerMiddleware())
	{
		approvals.POST("/:timesheet_id/submit", timesheetCtrl.SubmitTimesheet)
		approvals.POST("/:timesheet_id/approve", timesheetCtrl.ApproveTimesheet)
		approvals.POST("/:timesheet_id/reject", timesheetCtrl.RejectTimesheet)
	}

	// NOTIFICATIONS
	auth.GET("/notifications", notificationCtrl.GetAllNotifications)
	auth.POST("/notifications", notificationCtrl.CreateNotification)
	auth.PATCH("/notifications/:notif_id/read", notificationCtrl.MarkNotificationRead)
	auth.DELETE("/notifications/:notif_id", notificationCtrl.DeleteNotification)

	// DASHBOARD (admin)
	auth.GET("/dashboard/stats", dashboardCtrl.GetDashboardStats)
	auth.GET("/dashboard/understaffed", dashboardCtrl.GetUnderstaffedShifts)

	// WebSocket endpoint for the live dashboards
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/:role", middlewares.RoleCheck(), controllers.EventsHandler)
	}

	return r
}
