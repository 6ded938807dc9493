package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crewplex/workforce-app/events"
	"github.com/crewplex/workforce-app/models"
	"github.com/crewplex/workforce-app/staffing"
	"github.com/crewplex/workforce-app/utils"
)

type DashboardController struct {
	DB *gorm.DB
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{DB: db}
}

// GetDashboardStats aggregates the operational counters for the admin view.
func (dc *DashboardController) GetDashboardStats(c *gin.Context) {
	today := time.Now().Format("2006-01-02")

	var stats struct {
		TotalShifts int64 `json:"total_shifts"`
		TodayShifts int64 `json:"today_shifts"`
		ShiftStats  struct {
			Pending    int64 `json:"pending"`
			Active     int64 `json:"active"`
			InProgress int64 `json:"in_progress"`
			Completed  int64 `json:"completed"`
			Cancelled  int64 `json:"cancelled"`
		} `json:"shift_stats"`
		TimesheetStats struct {
			Draft           int64 `json:"draft"`
			PendingCompany  int64 `json:"pending_company_approval"`
			PendingManager  int64 `json:"pending_manager_approval"`
			Completed       int64 `json:"completed"`
			Rejected        int64 `json:"rejected"`
			PendingApproval int64 `json:"pending_approval"`
		} `json:"timesheet_stats"`
		FulfillmentStats struct {
			Critical    int64 `json:"critical"`
			Low         int64 `json:"low"`
			Good        int64 `json:"good"`
			Full        int64 `json:"full"`
			Overstaffed int64 `json:"overstaffed"`
		} `json:"fulfillment_stats"`
	}

	dc.DB.Model(&models.Shift{}).Count(&stats.TotalShifts)
	dc.DB.Model(&models.Shift{}).Where("DATE(date) = ?", today).Count(&stats.TodayShifts)

	dc.DB.Model(&models.Shift{}).Where("status = ?", models.ShiftStatusPending).Count(&stats.ShiftStats.Pending)
	dc.DB.Model(&models.Shift{}).Where("status = ?", models.ShiftStatusActive).Count(&stats.ShiftStats.Active)
	dc.DB.Model(&models.Shift{}).Where("status = ?", models.ShiftStatusInProgress).Count(&stats.ShiftStats.InProgress)
	dc.DB.Model(&models.Shift{}).Where("status = ?", models.ShiftStatusCompleted).Count(&stats.ShiftStats.Completed)
	dc.DB.Model(&models.Shift{}).Where("status = ?", models.ShiftStatusCancelled).Count(&stats.ShiftStats.Cancelled)

	dc.DB.Model(&models.Timesheet{}).Where("status = ?", models.TimesheetStatusDraft).Count(&stats.TimesheetStats.Draft)
	dc.DB.Model(&models.Timesheet{}).Where("status = ?", models.TimesheetStatusPendingCompanyApproval).Count(&stats.TimesheetStats.PendingCompany)
	dc.DB.Model(&models.Timesheet{}).Where("status = ?", models.TimesheetStatusPendingManagerApproval).Count(&stats.TimesheetStats.PendingManager)
	dc.DB.Model(&models.Timesheet{}).Where("status = ?", models.TimesheetStatusCompleted).Count(&stats.TimesheetStats.Completed)
	dc.DB.Model(&models.Timesheet{}).Where("status = ?", models.TimesheetStatusRejected).Count(&stats.TimesheetStats.Rejected)
	stats.TimesheetStats.PendingApproval = stats.TimesheetStats.PendingCompany + stats.TimesheetStats.PendingManager

	// Fulfillment bands come from the calculator, not the database, so the
	// live shifts are summarized in memory.
	var openShifts []models.Shift
	dc.DB.Preload("AssignedPersonnel").
		Where("status IN ?", []string{models.ShiftStatusPending, models.ShiftStatusActive, models.ShiftStatusInProgress}).
		Find(&openShifts)

	for i := range openShifts {
		summary := staffing.Summarize(&openShifts[i], openShifts[i].AssignedPersonnel)
		switch summary.Band {
		case staffing.BandCritical:
			stats.FulfillmentStats.Critical++
		case staffing.BandLow:
			stats.FulfillmentStats.Low++
		case staffing.BandGood:
			stats.FulfillmentStats.Good++
		case staffing.BandFull:
			stats.FulfillmentStats.Full++
		case staffing.BandOverstaffed:
			stats.FulfillmentStats.Overstaffed++
		}
	}

	events.BroadcastDashboardUpdate(stats)

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", gin.H{
		"data": stats,
	})
}

// GetUnderstaffedShifts lists open shifts below FULL, worst first.
func (dc *DashboardController) GetUnderstaffedShifts(c *gin.Context) {
	var openShifts []models.Shift
	if err := dc.DB.Preload("Job.Company").Preload("AssignedPersonnel").
		Where("status IN ?", []string{models.ShiftStatusPending, models.ShiftStatusActive, models.ShiftStatusInProgress}).
		Order("date ASC").
		Find(&openShifts).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	type understaffedShift struct {
		Shift   models.Shift          `json:"shift"`
		Summary staffing.ShiftSummary `json:"summary"`
	}

	var result []understaffedShift
	for i := range openShifts {
		summary := staffing.Summarize(&openShifts[i], openShifts[i].AssignedPersonnel)
		if summary.FullyStaffed {
			continue
		}
		result = append(result, understaffedShift{
			Shift:   openShifts[i],
			Summary: summary,
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Understaffed shifts", gin.H{
		"shifts": result,
	})
}
