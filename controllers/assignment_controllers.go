package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crewplex/workforce-app/events"
	"github.com/crewplex/workforce-app/models"
	"github.com/crewplex/workforce-app/staffing"
	"github.com/crewplex/workforce-app/utils"
)

// maxTimeEntries bounds split-shift entries per assignment.
const maxTimeEntries = 3

type AssignmentController struct {
	DB *gorm.DB
}

func NewAssignmentController(db *gorm.DB) *AssignmentController {
	return &AssignmentController{DB: db}
}

var assignmentStatuses = map[string]bool{
	models.AssignmentStatusAssigned:   true,
	models.AssignmentStatusClockedIn:  true,
	models.AssignmentStatusOnBreak:    true,
	models.AssignmentStatusShiftEnded: true,
	models.AssignmentStatusNoShow:     true,
	models.AssignmentStatusCancelled:  true,
	models.AssignmentStatusWithdrawn:  true,
	models.AssignmentStatusRejected:   true,
	models.AssignmentStatusUpForGrabs: true,
}

// AssignWorker -> put a worker (or an open slot) on a shift
func (ac *AssignmentController) AssignWorker(c *gin.Context) {
	shiftID := c.Param("shift_id")

	var shift models.Shift
	if err := ac.DB.First(&shift, shiftID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type reqBody struct {
		UserID   *uint  `json:"user_id"`
		RoleCode string `json:"role_code" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if !staffing.RoleCode(body.RoleCode).Valid() {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unknown role code %q", body.RoleCode))
		return
	}

	status := models.AssignmentStatusUpForGrabs
	if body.UserID != nil {
		var worker models.User
		if err := ac.DB.First(&worker, *body.UserID).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, errors.New("worker not found"))
			return
		}

		// a worker holds at most one live slot per shift
		var count int64
		ac.DB.Model(&models.AssignedPersonnel{}).
			Where("shift_id = ? AND user_id = ? AND status NOT IN ?",
				shift.ID, *body.UserID,
				[]string{models.AssignmentStatusCancelled, models.AssignmentStatusWithdrawn, models.AssignmentStatusRejected}).
			Count(&count)
		if count > 0 {
			utils.RespondError(c, http.StatusConflict, errors.New("worker already assigned to this shift"))
			return
		}
		status = models.AssignmentStatusAssigned
	}

	ap := models.AssignedPersonnel{
		ShiftID:  shift.ID,
		UserID:   body.UserID,
		RoleCode: body.RoleCode,
		Status:   status,
	}
	if err := ac.DB.Create(&ap).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastAssignmentUpdate(ap)
	ac.broadcastFulfillment(shift.ID)

	utils.RespondJSON(c, http.StatusCreated, "Worker assigned", ap)
}

// UpdateAssignmentStatus -> lifecycle flips (no_show, cancelled, withdrawn...)
func (ac *AssignmentController) UpdateAssignmentStatus(c *gin.Context) {
	assignmentID := c.Param("assignment_id")

	var ap models.AssignedPersonnel
	if err := ac.DB.First(&ap, assignmentID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type reqBody struct {
		Status string `json:"status" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !assignmentStatuses[body.Status] {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unknown assignment status %q", body.Status))
		return
	}

	ap.Status = body.Status
	if err := ac.DB.Save(&ap).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastAssignmentUpdate(ap)
	ac.broadcastFulfillment(ap.ShiftID)

	utils.RespondJSON(c, http.StatusOK, "Assignment updated", ap)
}

// ClockIn -> open the next time entry for the assignment
func (ac *AssignmentController) ClockIn(c *gin.Context) {
	assignmentID := c.Param("assignment_id")

	var ap models.AssignedPersonnel
	if err := ac.DB.Preload("TimeEntries").First(&ap, assignmentID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if ap.UserID == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("cannot clock in an unfilled slot"))
		return
	}
	if !staffing.IsValidAssignment(ap) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("assignment is no longer active"))
		return
	}

	for _, entry := range ap.TimeEntries {
		if entry.ClockOut == nil {
			utils.RespondError(c, http.StatusConflict, errors.New("already clocked in"))
			return
		}
	}
	if len(ap.TimeEntries) >= maxTimeEntries {
		utils.RespondError(c, http.StatusConflict,
			fmt.Errorf("at most %d time entries per assignment", maxTimeEntries))
		return
	}

	entry := models.TimeEntry{
		AssignedPersonnelID: ap.ID,
		EntryNumber:         len(ap.TimeEntries) + 1,
		ClockIn:             time.Now(),
	}
	if err := ac.DB.Create(&entry).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	ap.Status = models.AssignmentStatusClockedIn
	ac.DB.Save(&ap)

	events.BroadcastAssignmentUpdate(ap)

	utils.RespondJSON(c, http.StatusCreated, "Clocked in", entry)
}

// ClockOut -> close the open entry; end_shift=true finishes the worker's day
func (ac *AssignmentController) ClockOut(c *gin.Context) {
	assignmentID := c.Param("assignment_id")

	var ap models.AssignedPersonnel
	if err := ac.DB.Preload("TimeEntries").First(&ap, assignmentID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type reqBody struct {
		EndShift bool `json:"end_shift"`
	}
	var body reqBody
	c.ShouldBindJSON(&body)

	var open *models.TimeEntry
	for i := range ap.TimeEntries {
		if ap.TimeEntries[i].ClockOut == nil {
			open = &ap.TimeEntries[i]
			break
		}
	}
	if open == nil {
		utils.RespondError(c, http.StatusConflict, errors.New("not clocked in"))
		return
	}

	now := time.Now()
	open.ClockOut = &now
	if err := ac.DB.Save(open).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if body.EndShift || open.EntryNumber >= maxTimeEntries {
		ap.Status = models.AssignmentStatusShiftEnded
	} else {
		ap.Status = models.AssignmentStatusOnBreak
	}
	ac.DB.Save(&ap)

	events.BroadcastAssignmentUpdate(ap)

	utils.RespondJSON(c, http.StatusOK, "Clocked out", open)
}

func (ac *AssignmentController) broadcastFulfillment(shiftID uint) {
	var shift models.Shift
	if err := ac.DB.Preload("AssignedPersonnel").First(&shift, shiftID).Error; err != nil {
		return
	}
	events.BroadcastShiftFulfillment(shift.ID, staffing.Summarize(&shift, shift.AssignedPersonnel))
}
