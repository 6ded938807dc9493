package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/crewplex/workforce-app/models"
)

// fakePDFGenerator lets tests drive the DependencyFailure rollback path.
type fakePDFGenerator struct {
	fail  bool
	calls int
}

func (f *fakePDFGenerator) Generate(ts *models.Timesheet, variant PDFVariant) (string, error) {
	f.calls++
	if f.fail {
		return "", errors.New("pdf backend unavailable")
	}
	return fmt.Sprintf("/uploads/timesheets/timesheet-%d-%s.pdf", ts.ID, variant), nil
}

type serviceFixture struct {
	db               *gorm.DB
	svc              *TimesheetService
	pdf              *fakePDFGenerator
	admin            models.User
	companyUser      models.User
	otherCompanyUser models.User
	crewChief        models.User
	worker           models.User
	shift            models.Shift
	timesheet        models.Timesheet
}

func setupServiceFixture(t *testing.T) *serviceFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Job{},
		&models.Shift{},
		&models.AssignedPersonnel{},
		&models.TimeEntry{},
		&models.Timesheet{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	company := models.Company{Name: "Stage Right Productions"}
	db.Create(&company)
	otherCompany := models.Company{Name: "Unrelated Events LLC"}
	db.Create(&otherCompany)

	admin := models.User{Name: "Admin", Email: "admin@example.com", Password: "x", Role: models.RoleAdmin}
	db.Create(&admin)
	companyUser := models.User{Name: "Company User", Email: "company@example.com", Password: "x", Role: models.RoleCompanyUser, CompanyID: &company.ID}
	db.Create(&companyUser)
	otherCompanyUser := models.User{Name: "Other Company", Email: "other@example.com", Password: "x", Role: models.RoleCompanyUser, CompanyID: &otherCompany.ID}
	db.Create(&otherCompanyUser)
	crewChief := models.User{Name: "Crew Chief", Email: "chief@example.com", Password: "x", Role: models.RoleCrewChief}
	db.Create(&crewChief)
	worker := models.User{Name: "Worker", Email: "worker@example.com", Password: "x", Role: models.RoleWorker}
	db.Create(&worker)

	job := models.Job{CompanyID: company.ID, Name: "Arena Load-In", Location: "Main Arena"}
	db.Create(&job)

	start := time.Date(2026, 8, 10, 8, 0, 0, 0, time.UTC)
	shift := models.Shift{
		JobID:                   job.ID,
		Status:                  models.ShiftStatusCompleted,
		Date:                    start,
		StartTime:               start,
		EndTime:                 start.Add(8 * time.Hour),
		RequiredCrewChiefs:      1,
		RequiredStagehands:      2,
		RequiredGeneralLaborers: 1,
	}
	db.Create(&shift)

	chiefAssignment := models.AssignedPersonnel{
		ShiftID:  shift.ID,
		UserID:   &crewChief.ID,
		RoleCode: "CC",
		Status:   models.AssignmentStatusShiftEnded,
	}
	db.Create(&chiefAssignment)
	workerAssignment := models.AssignedPersonnel{
		ShiftID:  shift.ID,
		UserID:   &worker.ID,
		RoleCode: "SH",
		Status:   models.AssignmentStatusShiftEnded,
	}
	db.Create(&workerAssignment)

	clockOut := start.Add(8 * time.Hour)
	db.Create(&models.TimeEntry{
		AssignedPersonnelID: workerAssignment.ID,
		EntryNumber:         1,
		ClockIn:             start,
		ClockOut:            &clockOut,
	})

	ts := models.Timesheet{ShiftID: shift.ID, Status: models.TimesheetStatusDraft}
	db.Create(&ts)

	pdf := &fakePDFGenerator{}
	return &serviceFixture{
		db:               db,
		svc:              NewTimesheetService(db, pdf),
		pdf:              pdf,
		admin:            admin,
		companyUser:      companyUser,
		otherCompanyUser: otherCompanyUser,
		crewChief:        crewChief,
		worker:           worker,
		shift:            shift,
		timesheet:        ts,
	}
}

func (f *serviceFixture) reload(t *testing.T) *models.Timesheet {
	var ts models.Timesheet
	if err := f.db.First(&ts, f.timesheet.ID).Error; err != nil {
		t.Fatalf("reload timesheet: %v", err)
	}
	return &ts
}

func TestSubmitFromDraft(t *testing.T) {
	f := setupServiceFixture(t)

	ts, err := f.svc.Submit(f.timesheet.ID, f.crewChief)
	assert.NoError(t, err)
	assert.Equal(t, models.TimesheetStatusPendingCompanyApproval, ts.Status)
	assert.NotNil(t, ts.UnsignedPDFURL)

	stored := f.reload(t)
	assert.Equal(t, models.TimesheetStatusPendingCompanyApproval, stored.Status)
	assert.NotNil(t, stored.UnsignedPDFURL)
}

func TestSubmitTwiceFails(t *testing.T) {
	f := setupServiceFixture(t)

	_, err := f.svc.Submit(f.timesheet.ID, f.crewChief)
	assert.NoError(t, err)

	_, err = f.svc.Submit(f.timesheet.ID, f.crewChief)
	var stateErr *InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestApproveOnDraftFails(t *testing.T) {
	f := setupServiceFixture(t)

	_, err := f.svc.Approve(f.timesheet.ID, f.admin, "sig", StageCompany)
	var stateErr *InvalidStateError
	assert.ErrorAs(t, err, &stateErr)

	// failure must not advance anything
	stored := f.reload(t)
	assert.Equal(t, models.TimesheetStatusDraft, stored.Status)
	assert.Nil(t, stored.CompanySignature)
}

func TestFullApprovalPipeline(t *testing.T) {
	f := setupServiceFixture(t)

	_, err := f.svc.Submit(f.timesheet.ID, f.crewChief)
	assert.NoError(t, err)

	// crew chief assigned to the shift may sign the company stage
	ts, err := f.svc.Approve(f.timesheet.ID, f.crewChief, "chief-sig", StageCompany)
	assert.NoError(t, err)
	assert.Equal(t, models.TimesheetStatusPendingManagerApproval, ts.Status)
	assert.NotNil(t, ts.CompanySignature)
	assert.NotNil(t, ts.CompanyApprovedAt)
	assert.NotNil(t, ts.SignedPDFURL)
	assert.Nil(t, ts.ManagerSignature)

	// the same crew chief is not an admin: manager stage refused
	_, err = f.svc.Approve(f.timesheet.ID, f.crewChief, "chief-sig", StageManager)
	var authErr *AuthorizationError
	assert.ErrorAs(t, err, &authErr)

	ts, err = f.svc.Approve(f.timesheet.ID, f.admin, "manager-sig", StageManager)
	assert.NoError(t, err)
	assert.Equal(t, models.TimesheetStatusCompleted, ts.Status)
	assert.NotNil(t, ts.ManagerSignature)
	assert.NotNil(t, ts.ManagerApprovedAt)
	assert.NotNil(t, ts.FinalPDFURL)

	// terminal: nothing moves anymore
	_, err = f.svc.Approve(f.timesheet.ID, f.admin, "again", StageManager)
	var stateErr *InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
	_, err = f.svc.Reject(f.timesheet.ID, f.admin, "too late")
	assert.ErrorAs(t, err, &stateErr)
}

func TestApproveStageMismatch(t *testing.T) {
	f := setupServiceFixture(t)
	f.svc.Submit(f.timesheet.ID, f.crewChief)

	_, err := f.svc.Approve(f.timesheet.ID, f.admin, "sig", StageManager)
	var stateErr *InvalidStateError
	assert.ErrorAs(t, err, &stateErr)

	stored := f.reload(t)
	assert.Equal(t, models.TimesheetStatusPendingCompanyApproval, stored.Status)
	assert.Nil(t, stored.ManagerSignature)
}

func TestApproveRequiresSignature(t *testing.T) {
	f := setupServiceFixture(t)
	f.svc.Submit(f.timesheet.ID, f.crewChief)

	_, err := f.svc.Approve(f.timesheet.ID, f.admin, "", StageCompany)
	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestApproveUnknownStage(t *testing.T) {
	f := setupServiceFixture(t)
	f.svc.Submit(f.timesheet.ID, f.crewChief)

	_, err := f.svc.Approve(f.timesheet.ID, f.admin, "sig", "supervisor")
	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestCompanyStageAuthorization(t *testing.T) {
	f := setupServiceFixture(t)
	f.svc.Submit(f.timesheet.ID, f.crewChief)

	// a company user of a different company is refused
	_, err := f.svc.Approve(f.timesheet.ID, f.otherCompanyUser, "sig", StageCompany)
	var authErr *AuthorizationError
	assert.ErrorAs(t, err, &authErr)

	// a plain worker on the shift is refused (not a crew chief)
	_, err = f.svc.Approve(f.timesheet.ID, f.worker, "sig", StageCompany)
	assert.ErrorAs(t, err, &authErr)

	// the matching company user succeeds
	ts, err := f.svc.Approve(f.timesheet.ID, f.companyUser, "company-sig", StageCompany)
	assert.NoError(t, err)
	assert.Equal(t, models.TimesheetStatusPendingManagerApproval, ts.Status)
}

func TestWithdrawnCrewChiefCannotApprove(t *testing.T) {
	f := setupServiceFixture(t)
	f.svc.Submit(f.timesheet.ID, f.crewChief)

	// withdrawing the chief's assignment drops the relationship
	f.db.Model(&models.AssignedPersonnel{}).
		Where("shift_id = ? AND role_code = ?", f.shift.ID, "CC").
		Update("status", models.AssignmentStatusWithdrawn)

	_, err := f.svc.Approve(f.timesheet.ID, f.crewChief, "sig", StageCompany)
	var authErr *AuthorizationError
	assert.ErrorAs(t, err, &authErr)
}

func TestPDFFailureRollsBackAndRetrySucceeds(t *testing.T) {
	f := setupServiceFixture(t)
	f.svc.Submit(f.timesheet.ID, f.crewChief)

	f.pdf.fail = true
	_, err := f.svc.Approve(f.timesheet.ID, f.admin, "sig", StageCompany)
	var depErr *DependencyFailure
	assert.ErrorAs(t, err, &depErr)

	// nothing committed: no signature without its PDF
	stored := f.reload(t)
	assert.Equal(t, models.TimesheetStatusPendingCompanyApproval, stored.Status)
	assert.Nil(t, stored.CompanySignature)
	assert.Nil(t, stored.CompanyApprovedAt)
	assert.Nil(t, stored.SignedPDFURL)

	// identical retry succeeds and writes the signature exactly once
	f.pdf.fail = false
	ts, err := f.svc.Approve(f.timesheet.ID, f.admin, "sig", StageCompany)
	assert.NoError(t, err)
	assert.Equal(t, models.TimesheetStatusPendingManagerApproval, ts.Status)
	assert.Equal(t, "sig", *ts.CompanySignature)
}

func TestSubmitPDFFailureRollsBack(t *testing.T) {
	f := setupServiceFixture(t)

	f.pdf.fail = true
	_, err := f.svc.Submit(f.timesheet.ID, f.crewChief)
	var depErr *DependencyFailure
	assert.ErrorAs(t, err, &depErr)

	stored := f.reload(t)
	assert.Equal(t, models.TimesheetStatusDraft, stored.Status)
	assert.Nil(t, stored.UnsignedPDFURL)
}

func TestRejectAtCompanyStage(t *testing.T) {
	f := setupServiceFixture(t)
	f.svc.Submit(f.timesheet.ID, f.crewChief)

	ts, err := f.svc.Reject(f.timesheet.ID, f.companyUser, "hours look wrong")
	assert.NoError(t, err)
	assert.Equal(t, models.TimesheetStatusRejected, ts.Status)
	assert.Equal(t, "hours look wrong", *ts.RejectionReason)
	assert.NotNil(t, ts.RejectedAt)

	// rejected is fully terminal
	_, err = f.svc.Submit(f.timesheet.ID, f.crewChief)
	var stateErr *InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
	_, err = f.svc.Approve(f.timesheet.ID, f.admin, "sig", StageCompany)
	assert.ErrorAs(t, err, &stateErr)
}

func TestRejectRequiresReason(t *testing.T) {
	f := setupServiceFixture(t)
	f.svc.Submit(f.timesheet.ID, f.crewChief)

	_, err := f.svc.Reject(f.timesheet.ID, f.admin, "")
	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestRejectAtManagerStageRequiresAdmin(t *testing.T) {
	f := setupServiceFixture(t)
	f.svc.Submit(f.timesheet.ID, f.crewChief)
	f.svc.Approve(f.timesheet.ID, f.companyUser, "sig", StageCompany)

	_, err := f.svc.Reject(f.timesheet.ID, f.companyUser, "nope")
	var authErr *AuthorizationError
	assert.ErrorAs(t, err, &authErr)

	ts, err := f.svc.Reject(f.timesheet.ID, f.admin, "rates mismatch")
	assert.NoError(t, err)
	assert.Equal(t, models.TimesheetStatusRejected, ts.Status)
	// company signature from the completed stage survives rejection
	assert.NotNil(t, ts.CompanySignature)
	assert.Nil(t, ts.ManagerSignature)
}

func TestAvailableActionsMatchEnforcement(t *testing.T) {
	f := setupServiceFixture(t)

	// draft: nobody can act
	actions, err := f.svc.AvailableActions(f.timesheet.ID, f.admin)
	assert.NoError(t, err)
	assert.Empty(t, actions)

	f.svc.Submit(f.timesheet.ID, f.crewChief)

	for _, actor := range []models.User{f.admin, f.companyUser, f.crewChief} {
		actions, err = f.svc.AvailableActions(f.timesheet.ID, actor)
		assert.NoError(t, err)
		assert.ElementsMatch(t, []string{ActionApprove, ActionReject}, actions, "actor %s", actor.Name)
	}

	for _, actor := range []models.User{f.worker, f.otherCompanyUser} {
		actions, err = f.svc.AvailableActions(f.timesheet.ID, actor)
		assert.NoError(t, err)
		assert.Empty(t, actions, "actor %s", actor.Name)
	}

	f.svc.Approve(f.timesheet.ID, f.companyUser, "sig", StageCompany)

	// manager stage: only the admin may act
	actions, _ = f.svc.AvailableActions(f.timesheet.ID, f.admin)
	assert.ElementsMatch(t, []string{ActionApprove, ActionReject}, actions)
	actions, _ = f.svc.AvailableActions(f.timesheet.ID, f.companyUser)
	assert.Empty(t, actions)
	actions, _ = f.svc.AvailableActions(f.timesheet.ID, f.crewChief)
	assert.Empty(t, actions)
}

func TestSignatureInvariant(t *testing.T) {
	f := setupServiceFixture(t)

	check := func(ts *models.Timesheet) {
		assert.Equal(t, ts.CompanySignature != nil, ts.CompanyApprovedAt != nil)
		assert.Equal(t, ts.ManagerSignature != nil, ts.ManagerApprovedAt != nil)
		switch ts.Status {
		case models.TimesheetStatusDraft, models.TimesheetStatusPendingCompanyApproval:
			assert.Nil(t, ts.CompanySignature)
			assert.Nil(t, ts.ManagerSignature)
		case models.TimesheetStatusPendingManagerApproval:
			assert.NotNil(t, ts.CompanySignature)
			assert.Nil(t, ts.ManagerSignature)
		case models.TimesheetStatusCompleted:
			assert.NotNil(t, ts.CompanySignature)
			assert.NotNil(t, ts.ManagerSignature)
		}
	}

	check(f.reload(t))
	f.svc.Submit(f.timesheet.ID, f.crewChief)
	check(f.reload(t))
	f.svc.Approve(f.timesheet.ID, f.companyUser, "sig", StageCompany)
	check(f.reload(t))
	f.svc.Approve(f.timesheet.ID, f.admin, "sig", StageManager)
	check(f.reload(t))
}

func TestCreateForShift(t *testing.T) {
	f := setupServiceFixture(t)

	// fixture already holds an open timesheet for the shift
	_, err := f.svc.CreateForShift(f.shift.ID)
	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)

	// after rejection a fresh timesheet may be opened
	f.svc.Submit(f.timesheet.ID, f.crewChief)
	f.svc.Reject(f.timesheet.ID, f.admin, "redo")

	ts, err := f.svc.CreateForShift(f.shift.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TimesheetStatusDraft, ts.Status)

	// unknown shift
	_, err = f.svc.CreateForShift(9999)
	assert.ErrorAs(t, err, &valErr)
}
