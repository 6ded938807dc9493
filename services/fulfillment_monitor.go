package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/crewplex/workforce-app/events"
	"github.com/crewplex/workforce-app/models"
	"github.com/crewplex/workforce-app/staffing"
)

// FulfillmentMonitor polls the db_changes feed (populated by triggers on
// shifts, assigned_personnel and timesheets) and pushes recomputed staffing
// summaries and timesheet updates to websocket clients.
type FulfillmentMonitor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration
}

func NewFulfillmentMonitor(db *gorm.DB) *FulfillmentMonitor {
	return &FulfillmentMonitor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 1 * time.Second,
	}
}

func (fm *FulfillmentMonitor) Start() {
	go func() {
		ticker := time.NewTicker(fm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				fm.checkChanges()
			case <-fm.StopChan:
				return
			}
		}
	}()
}

func (fm *FulfillmentMonitor) Stop() {
	close(fm.StopChan)
}

func (fm *FulfillmentMonitor) checkChanges() {
	var changes []models.DBChange

	tx := fm.DB.Begin()

	if err := tx.Where("processed = ?", false).
		Order("changed_at ASC").
		Limit(100).
		Find(&changes).Error; err != nil {
		tx.Rollback()
		log.Printf("Error fetching changes: %v", err)
		return
	}

	for _, change := range changes {
		switch change.TableName {
		case "shifts":
			fm.processShiftChange(change.RecordID)
		case "assigned_personnel":
			fm.processAssignmentChange(change)
		case "timesheets":
			fm.processTimesheetChange(change)
		}

		if err := tx.Model(&models.DBChange{}).
			Where("id = ?", change.ID).
			Update("processed", true).Error; err != nil {
			tx.Rollback()
			log.Printf("Error marking change as processed: %v", err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("Error committing transaction: %v", err)
		tx.Rollback()
		return
	}

	if len(changes) > 0 {
		log.Printf("Processed %d change feed rows", len(changes))
	}
}

// processShiftChange recomputes and broadcasts the staffing summary for a
// shift whose requirements or status changed.
func (fm *FulfillmentMonitor) processShiftChange(shiftID int64) {
	var shift models.Shift
	if err := fm.DB.Preload("AssignedPersonnel").First(&shift, shiftID).Error; err != nil {
		log.Printf("Error fetching shift %d: %v", shiftID, err)
		return
	}

	events.BroadcastShiftUpdate(shift)
	events.BroadcastShiftFulfillment(shift.ID, staffing.Summarize(&shift, shift.AssignedPersonnel))
}

// processAssignmentChange rebroadcasts the assignment and the owning shift's
// fulfillment, which an assignment status flip may have moved across a band.
func (fm *FulfillmentMonitor) processAssignmentChange(change models.DBChange) {
	var ap models.AssignedPersonnel
	if change.ActionType != "DELETE" {
		if err := fm.DB.Preload("User").First(&ap, change.RecordID).Error; err != nil {
			log.Printf("Error fetching assignment %d: %v", change.RecordID, err)
			return
		}
		events.BroadcastAssignmentUpdate(ap)
		fm.processShiftChange(int64(ap.ShiftID))
	}
}

func (fm *FulfillmentMonitor) processTimesheetChange(change models.DBChange) {
	if change.ActionType == "DELETE" {
		return
	}
	var ts models.Timesheet
	if err := fm.DB.Preload("Shift.Job").First(&ts, change.RecordID).Error; err != nil {
		log.Printf("Error fetching timesheet %d: %v", change.RecordID, err)
		return
	}
	events.BroadcastTimesheetUpdate(ts)
}
