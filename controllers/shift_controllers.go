package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crewplex/workforce-app/models"
	"github.com/crewplex/workforce-app/staffing"
	"github.com/crewplex/workforce-app/utils"
)

type ShiftController struct {
	DB *gorm.DB
}

func NewShiftController(db *gorm.DB) *ShiftController {
	return &ShiftController{DB: db}
}

type shiftRequirements struct {
	RequiredCrewChiefs         int `json:"required_crew_chiefs"`
	RequiredStagehands         int `json:"required_stagehands"`
	RequiredForkOperators      int `json:"required_fork_operators"`
	RequiredReachForkOperators int `json:"required_reach_fork_operators"`
	RequiredRiggers            int `json:"required_riggers"`
	RequiredGeneralLaborers    int `json:"required_general_laborers"`
}

// GetAllShifts -> optional job/status filters
func (sc *ShiftController) GetAllShifts(c *gin.Context) {
	query := sc.DB.Preload("Job.Company")

	if jobID := c.Query("job_id"); jobID != "" {
		query = query.Where("job_id = ?", jobID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var shifts []models.Shift
	if err := query.Find(&shifts).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of shifts", shifts)
}

// CreateShift -> requirement vector is normalized here: negatives clamp to
// zero and the crew-chief floor applies.
func (sc *ShiftController) CreateShift(c *gin.Context) {
	type reqBody struct {
		JobID     uint      `json:"job_id" binding:"required"`
		Date      time.Time `json:"date" binding:"required"`
		StartTime time.Time `json:"start_time" binding:"required"`
		EndTime   time.Time `json:"end_time" binding:"required"`
		shiftRequirements
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var job models.Job
	if err := sc.DB.First(&job, body.JobID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	shift := models.Shift{
		JobID:                      body.JobID,
		Status:                     models.ShiftStatusPending,
		Date:                       body.Date,
		StartTime:                  body.StartTime,
		EndTime:                    body.EndTime,
		RequiredCrewChiefs:         body.RequiredCrewChiefs,
		RequiredStagehands:         body.RequiredStagehands,
		RequiredForkOperators:      body.RequiredForkOperators,
		RequiredReachForkOperators: body.RequiredReachForkOperators,
		RequiredRiggers:            body.RequiredRiggers,
		RequiredGeneralLaborers:    body.RequiredGeneralLaborers,
	}
	staffing.NormalizeRequirements(&shift, staffing.MinimumCrewChiefs())

	if err := sc.DB.Create(&shift).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Shift created", shift)
}

// UpdateShift -> status and/or requirement counts
func (sc *ShiftController) UpdateShift(c *gin.Context) {
	shiftID := c.Param("shift_id")

	var shift models.Shift
	if err := sc.DB.First(&shift, shiftID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type reqBody struct {
		Status                     *string `json:"status"`
		RequiredCrewChiefs         *int    `json:"required_crew_chiefs"`
		RequiredStagehands         *int    `json:"required_stagehands"`
		RequiredForkOperators      *int    `json:"required_fork_operators"`
		RequiredReachForkOperators *int    `json:"required_reach_fork_operators"`
		RequiredRiggers            *int    `json:"required_riggers"`
		RequiredGeneralLaborers    *int    `json:"required_general_laborers"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.Status != nil {
		shift.Status = *body.Status
	}
	setIf := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setIf(&shift.RequiredCrewChiefs, body.RequiredCrewChiefs)
	setIf(&shift.RequiredStagehands, body.RequiredStagehands)
	setIf(&shift.RequiredForkOperators, body.RequiredForkOperators)
	setIf(&shift.RequiredReachForkOperators, body.RequiredReachForkOperators)
	setIf(&shift.RequiredRiggers, body.RequiredRiggers)
	setIf(&shift.RequiredGeneralLaborers, body.RequiredGeneralLaborers)

	staffing.NormalizeRequirements(&shift, staffing.MinimumCrewChiefs())

	if err := sc.DB.Save(&shift).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Shift updated", shift)
}

// GetShiftByID -> detail with personnel and time entries
func (sc *ShiftController) GetShiftByID(c *gin.Context) {
	idStr := c.Param("shift_id")
	id, _ := strconv.Atoi(idStr)

	var shift models.Shift
	if err := sc.DB.
		Preload("Job.Company").
		Preload("AssignedPersonnel.User").
		Preload("AssignedPersonnel.TimeEntries").
		First(&shift, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Shift detail", shift)
}

// GetShiftFulfillment -> required/filled totals, band and shortages
func (sc *ShiftController) GetShiftFulfillment(c *gin.Context) {
	idStr := c.Param("shift_id")
	id, _ := strconv.Atoi(idStr)

	var shift models.Shift
	if err := sc.DB.Preload("AssignedPersonnel").First(&shift, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	summary := staffing.Summarize(&shift, shift.AssignedPersonnel)
	utils.RespondJSON(c, http.StatusOK, "Shift fulfillment", summary)
}

// GetShiftNeeds -> per-role shortages only, for the assignment picker
func (sc *ShiftController) GetShiftNeeds(c *gin.Context) {
	idStr := c.Param("shift_id")
	id, _ := strconv.Atoi(idStr)

	var shift models.Shift
	if err := sc.DB.Preload("AssignedPersonnel").First(&shift, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	shortages := make([]staffing.RoleShortage, 0)
	for _, s := range staffing.WorkersNeededByRole(&shift, shift.AssignedPersonnel) {
		if s.Needed > 0 {
			shortages = append(shortages, s)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Shift needs", gin.H{
		"shortages":     shortages,
		"fully_staffed": staffing.FullyStaffed(&shift, shift.AssignedPersonnel),
	})
}
