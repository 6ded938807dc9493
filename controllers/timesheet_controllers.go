package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crewplex/workforce-app/models"
	"github.com/crewplex/workforce-app/services"
	"github.com/crewplex/workforce-app/staffing"
	"github.com/crewplex/workforce-app/utils"
)

type TimesheetController struct {
	DB      *gorm.DB
	Service *services.TimesheetService
}

func NewTimesheetController(db *gorm.DB, svc *services.TimesheetService) *TimesheetController {
	return &TimesheetController{DB: db, Service: svc}
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// DependencyFailure is 502 and safe to retry, nothing was committed.
func respondServiceError(c *gin.Context, err error) {
	var valErr *services.ValidationError
	var stateErr *services.InvalidStateError
	var authErr *services.AuthorizationError
	var depErr *services.DependencyFailure

	switch {
	case errors.As(err, &valErr):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.As(err, &stateErr):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.As(err, &authErr):
		utils.RespondError(c, http.StatusForbidden, err)
	case errors.As(err, &depErr):
		utils.RespondError(c, http.StatusBadGateway, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// actorFromContext rebuilds the acting user from the auth claims.
func (tc *TimesheetController) actorFromContext(c *gin.Context) (models.User, bool) {
	var user models.User
	if err := tc.DB.First(&user, c.GetUint("user_id")).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unknown user"))
		return user, false
	}
	return user, true
}

// CreateTimesheet -> open a draft for a shift
func (tc *TimesheetController) CreateTimesheet(c *gin.Context) {
	type reqBody struct {
		ShiftID uint `json:"shift_id" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ts, err := tc.Service.CreateForShift(body.ShiftID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Timesheet created", ts)
}

// GetAllTimesheets -> optional status filter for approval dashboards
func (tc *TimesheetController) GetAllTimesheets(c *gin.Context) {
	query := tc.DB.Preload("Shift.Job.Company")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var timesheets []models.Timesheet
	if err := query.Find(&timesheets).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of timesheets", timesheets)
}

// GetTimesheetByID -> detail plus the worked-hours table
func (tc *TimesheetController) GetTimesheetByID(c *gin.Context) {
	idStr := c.Param("timesheet_id")
	id, _ := strconv.Atoi(idStr)

	ts, err := tc.Service.Get(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	type workerHours struct {
		UserID   *uint   `json:"user_id"`
		Name     string  `json:"name"`
		RoleCode string  `json:"role_code"`
		Status   string  `json:"status"`
		Entries  int     `json:"entries"`
		Hours    float64 `json:"hours"`
	}

	hours := make([]workerHours, 0, len(ts.Shift.AssignedPersonnel))
	for _, ap := range ts.Shift.AssignedPersonnel {
		if !staffing.IsValidAssignment(ap) {
			continue
		}
		row := workerHours{
			UserID:   ap.UserID,
			RoleCode: ap.RoleCode,
			Status:   ap.Status,
			Entries:  len(ap.TimeEntries),
		}
		if ap.User != nil {
			row.Name = ap.User.Name
		}
		for _, entry := range ap.TimeEntries {
			row.Hours += entry.Hours()
		}
		hours = append(hours, row)
	}

	utils.RespondJSON(c, http.StatusOK, "Timesheet detail", gin.H{
		"timesheet":    ts,
		"worker_hours": hours,
	})
}

// SubmitTimesheet -> draft into company review, stores the unsigned PDF
func (tc *TimesheetController) SubmitTimesheet(c *gin.Context) {
	idStr := c.Param("timesheet_id")
	id, _ := strconv.Atoi(idStr)

	actor, ok := tc.actorFromContext(c)
	if !ok {
		return
	}

	ts, err := tc.Service.Submit(uint(id), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Timesheet submitted", ts)
}

// ApproveTimesheet -> signature for the current stage
func (tc *TimesheetController) ApproveTimesheet(c *gin.Context) {
	idStr := c.Param("timesheet_id")
	id, _ := strconv.Atoi(idStr)

	type reqBody struct {
		Stage     string `json:"stage" binding:"required"`
		Signature string `json:"signature"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor, ok := tc.actorFromContext(c)
	if !ok {
		return
	}

	ts, err := tc.Service.Approve(uint(id), actor, body.Signature, body.Stage)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Timesheet approved", ts)
}

// RejectTimesheet -> terminal rejection with reason
func (tc *TimesheetController) RejectTimesheet(c *gin.Context) {
	idStr := c.Param("timesheet_id")
	id, _ := strconv.Atoi(idStr)

	type reqBody struct {
		Reason string `json:"reason"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor, ok := tc.actorFromContext(c)
	if !ok {
		return
	}

	ts, err := tc.Service.Reject(uint(id), actor, body.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Timesheet rejected", ts)
}

// GetTimesheetActions -> what the current user may do right now
func (tc *TimesheetController) GetTimesheetActions(c *gin.Context) {
	idStr := c.Param("timesheet_id")
	id, _ := strconv.Atoi(idStr)

	actor, ok := tc.actorFromContext(c)
	if !ok {
		return
	}

	actions, err := tc.Service.AvailableActions(uint(id), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Available actions", gin.H{
		"actions": actions,
	})
}
