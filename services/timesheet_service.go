package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crewplex/workforce-app/events"
	"github.com/crewplex/workforce-app/models"
	"github.com/crewplex/workforce-app/staffing"
)

// Approval stages
const (
	StageCompany = "company"
	StageManager = "manager"
)

// Timesheet actions exposed to the presentation layer
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// TimesheetService drives the approval pipeline:
//
//	draft -> pending_company_approval -> pending_manager_approval -> completed
//	pending_* -> rejected (terminal, no resubmission)
//
// Every transition runs in one transaction holding a row lock on the
// timesheet, so a concurrent second approve sees the post-transition state
// and fails with InvalidStateError instead of double-writing a signature.
// The PDF for a milestone is generated inside the same transaction; if it
// fails, signature and status roll back with it.
type TimesheetService struct {
	db  *gorm.DB
	pdf TimesheetPDFGenerator
}

func NewTimesheetService(db *gorm.DB, pdf TimesheetPDFGenerator) *TimesheetService {
	return &TimesheetService{
		db:  db,
		pdf: pdf,
	}
}

// CreateForShift opens a draft timesheet for a shift. A shift may hold at
// most one live (non-rejected) timesheet.
func (s *TimesheetService) CreateForShift(shiftID uint) (*models.Timesheet, error) {
	var shift models.Shift
	if err := s.db.First(&shift, shiftID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidationError{Message: fmt.Sprintf("shift %d not found", shiftID)}
		}
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Timesheet{}).
		Where("shift_id = ? AND status <> ?", shiftID, models.TimesheetStatusRejected).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &ValidationError{Message: "shift already has an open timesheet"}
	}

	ts := models.Timesheet{
		ShiftID: shiftID,
		Status:  models.TimesheetStatusDraft,
	}
	if err := s.db.Create(&ts).Error; err != nil {
		return nil, err
	}
	return &ts, nil
}

// Submit moves a draft into company review and stores the unsigned PDF
// snapshot. Both happen in one transaction.
func (s *TimesheetService) Submit(timesheetID uint, actor models.User) (*models.Timesheet, error) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	ts, err := s.lockTimesheet(tx, timesheetID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if ts.Status != models.TimesheetStatusDraft {
		tx.Rollback()
		return nil, &InvalidStateError{Current: ts.Status, Expected: models.TimesheetStatusDraft}
	}

	ts.Status = models.TimesheetStatusPendingCompanyApproval

	url, err := s.pdf.Generate(ts, PDFVariantUnsigned)
	if err != nil {
		tx.Rollback()
		return nil, &DependencyFailure{Op: "unsigned pdf generation", Err: err}
	}
	ts.UnsignedPDFURL = &url

	if err := tx.Save(ts).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to save timesheet: %w", err)
	}

	s.notify(tx, fmt.Sprintf("Timesheet #%d submitted for company approval by %s", ts.ID, actor.Name))

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	events.BroadcastTimesheetUpdate(*ts)
	return ts, nil
}

// Approve records the signature for the given stage, stamps the approval
// time, advances the status and regenerates the PDF, atomically.
func (s *TimesheetService) Approve(timesheetID uint, actor models.User, signature, stage string) (*models.Timesheet, error) {
	if signature == "" {
		return nil, &ValidationError{Message: "signature is required"}
	}
	if stage != StageCompany && stage != StageManager {
		return nil, &ValidationError{Message: fmt.Sprintf("unknown approval stage %q", stage)}
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	ts, err := s.lockTimesheet(tx, timesheetID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	current, ok := currentStage(ts.Status)
	if !ok {
		tx.Rollback()
		return nil, &InvalidStateError{Current: ts.Status}
	}
	if stage != current {
		tx.Rollback()
		return nil, &InvalidStateError{Current: ts.Status}
	}

	if !CanActAtStage(ts, actor, stage) {
		tx.Rollback()
		return nil, &AuthorizationError{Message: fmt.Sprintf("user %d may not approve at the %s stage", actor.ID, stage)}
	}

	now := time.Now()
	var variant PDFVariant
	switch stage {
	case StageCompany:
		ts.CompanySignature = &signature
		ts.CompanyApprovedAt = &now
		ts.Status = models.TimesheetStatusPendingManagerApproval
		variant = PDFVariantSigned
	case StageManager:
		ts.ManagerSignature = &signature
		ts.ManagerApprovedAt = &now
		ts.Status = models.TimesheetStatusCompleted
		variant = PDFVariantFinal
	}

	url, err := s.pdf.Generate(ts, variant)
	if err != nil {
		tx.Rollback()
		return nil, &DependencyFailure{Op: fmt.Sprintf("%s pdf generation", variant), Err: err}
	}
	switch variant {
	case PDFVariantSigned:
		ts.SignedPDFURL = &url
	case PDFVariantFinal:
		ts.FinalPDFURL = &url
	}

	if err := tx.Save(ts).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to save timesheet: %w", err)
	}

	s.notify(tx, fmt.Sprintf("Timesheet #%d approved at the %s stage by %s", ts.ID, stage, actor.Name))

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	events.BroadcastTimesheetUpdate(*ts)
	return ts, nil
}

// Reject moves a pending timesheet to the terminal rejected state. The same
// authorization rule as approval at the current stage applies. No PDF.
func (s *TimesheetService) Reject(timesheetID uint, actor models.User, reason string) (*models.Timesheet, error) {
	if reason == "" {
		return nil, &ValidationError{Message: "rejection reason is required"}
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	ts, err := s.lockTimesheet(tx, timesheetID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	stage, ok := currentStage(ts.Status)
	if !ok {
		tx.Rollback()
		return nil, &InvalidStateError{Current: ts.Status}
	}

	if !CanActAtStage(ts, actor, stage) {
		tx.Rollback()
		return nil, &AuthorizationError{Message: fmt.Sprintf("user %d may not reject at the %s stage", actor.ID, stage)}
	}

	now := time.Now()
	ts.Status = models.TimesheetStatusRejected
	ts.RejectionReason = &reason
	ts.RejectedAt = &now

	if err := tx.Save(ts).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to save timesheet: %w", err)
	}

	s.notify(tx, fmt.Sprintf("Timesheet #%d rejected by %s: %s", ts.ID, actor.Name, reason))

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	events.BroadcastTimesheetUpdate(*ts)
	return ts, nil
}

// AvailableActions reports which of approve/reject the actor may perform
// right now. Derived from the same predicates the mutations enforce, never a
// looser check.
func (s *TimesheetService) AvailableActions(timesheetID uint, actor models.User) ([]string, error) {
	ts, err := s.loadTimesheet(s.db, timesheetID)
	if err != nil {
		return nil, err
	}

	actions := []string{}
	stage, ok := currentStage(ts.Status)
	if !ok {
		return actions, nil
	}
	if CanActAtStage(ts, actor, stage) {
		actions = append(actions, ActionApprove, ActionReject)
	}
	return actions, nil
}

// Get returns a timesheet with everything the PDF and the approval checks
// need preloaded.
func (s *TimesheetService) Get(timesheetID uint) (*models.Timesheet, error) {
	return s.loadTimesheet(s.db, timesheetID)
}

// CanActAtStage is the authorization predicate for both approve and reject.
// Company stage: a global admin, a company user of the shift's job's
// company, or a crew chief validly assigned to the shift. Manager stage:
// admin only. The timesheet must come preloaded with Shift.Job and
// Shift.AssignedPersonnel.
func CanActAtStage(ts *models.Timesheet, actor models.User, stage string) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}

	if stage != StageCompany {
		return false
	}

	if actor.Role == models.RoleCompanyUser &&
		actor.CompanyID != nil && *actor.CompanyID == ts.Shift.Job.CompanyID {
		return true
	}

	for _, ap := range ts.Shift.AssignedPersonnel {
		if staffing.IsValidAssignment(ap) &&
			staffing.RoleCode(ap.RoleCode) == staffing.RoleCrewChief &&
			*ap.UserID == actor.ID {
			return true
		}
	}

	return false
}

// currentStage maps a pending status to its approval stage.
func currentStage(status string) (string, bool) {
	switch status {
	case models.TimesheetStatusPendingCompanyApproval:
		return StageCompany, true
	case models.TimesheetStatusPendingManagerApproval:
		return StageManager, true
	default:
		return "", false
	}
}

// lockTimesheet loads a timesheet with a row lock so concurrent transitions
// on the same timesheet serialize.
func (s *TimesheetService) lockTimesheet(tx *gorm.DB, id uint) (*models.Timesheet, error) {
	return s.loadTimesheet(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (s *TimesheetService) loadTimesheet(db *gorm.DB, id uint) (*models.Timesheet, error) {
	var ts models.Timesheet
	err := db.
		Preload("Shift.Job.Company").
		Preload("Shift.AssignedPersonnel.User").
		Preload("Shift.AssignedPersonnel.TimeEntries").
		First(&ts, id).Error
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func (s *TimesheetService) notify(tx *gorm.DB, message string) {
	notif := models.Notification{Message: message}
	if err := tx.Create(&notif).Error; err != nil {
		// notification rows are best-effort, never block a transition
		log.Printf("failed to create notification: %v", err)
	}
}
