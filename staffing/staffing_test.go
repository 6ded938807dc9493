package staffing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crewplex/workforce-app/models"
)

func uintPtr(v uint) *uint {
	return &v
}

func validAssignment(role RoleCode, worker uint) models.AssignedPersonnel {
	return models.AssignedPersonnel{
		UserID:   uintPtr(worker),
		RoleCode: string(role),
		Status:   models.AssignmentStatusAssigned,
	}
}

func TestRequiredTotal(t *testing.T) {
	shift := &models.Shift{
		RequiredCrewChiefs:      1,
		RequiredStagehands:      8,
		RequiredForkOperators:   2,
		RequiredRiggers:         1,
		RequiredGeneralLaborers: 4,
	}
	assert.Equal(t, 16, RequiredTotal(shift))
}

func TestRequiredTotalNormalizesNegatives(t *testing.T) {
	shift := &models.Shift{
		RequiredCrewChiefs: -3,
		RequiredStagehands: 5,
	}
	assert.Equal(t, 5, RequiredTotal(shift))
	assert.Equal(t, 0, RequiredFor(shift, RoleCrewChief))
}

func TestFilledTotalExcludesInvalidStatuses(t *testing.T) {
	assignments := []models.AssignedPersonnel{
		validAssignment(RoleStagehand, 1),
		validAssignment(RoleStagehand, 2),
		{UserID: uintPtr(3), RoleCode: "SH", Status: models.AssignmentStatusCancelled},
		{UserID: uintPtr(4), RoleCode: "SH", Status: models.AssignmentStatusWithdrawn},
		{UserID: uintPtr(5), RoleCode: "SH", Status: models.AssignmentStatusRejected},
	}
	assert.Equal(t, 2, FilledTotal(assignments))
}

func TestFilledTotalExcludesNilWorker(t *testing.T) {
	assignments := []models.AssignedPersonnel{
		validAssignment(RoleRigger, 1),
		{UserID: nil, RoleCode: "RG", Status: models.AssignmentStatusUpForGrabs},
	}
	assert.Equal(t, 1, FilledTotal(assignments))
}

func TestFilledTotalCountsWorkingStatuses(t *testing.T) {
	// clocked_in, on_break, shift_ended and even no_show still hold a slot
	statuses := []string{
		models.AssignmentStatusAssigned,
		models.AssignmentStatusClockedIn,
		models.AssignmentStatusOnBreak,
		models.AssignmentStatusShiftEnded,
		models.AssignmentStatusNoShow,
	}
	assignments := make([]models.AssignedPersonnel, 0, len(statuses))
	for i, status := range statuses {
		assignments = append(assignments, models.AssignedPersonnel{
			UserID:   uintPtr(uint(i + 1)),
			RoleCode: "GL",
			Status:   status,
		})
	}
	assert.Equal(t, len(statuses), FilledTotal(assignments))
	assert.LessOrEqual(t, FilledTotal(assignments), len(assignments))
}

func TestClassifyFulfillmentBands(t *testing.T) {
	cases := []struct {
		filled   int
		required int
		want     FulfillmentBand
	}{
		{0, 16, BandCritical},
		{9, 16, BandCritical},  // 0.5625
		{10, 16, BandLow},      // 0.625
		{12, 16, BandLow},      // 0.75
		{13, 16, BandGood},     // 0.8125
		{16, 16, BandFull},     // 1.0
		{17, 16, BandFull},     // 1.0625 <= 1.10
		{18, 16, BandOverstaffed}, // 1.125
		{0, 0, BandFull},       // nothing required is always full
		{5, 0, BandFull},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyFulfillment(tc.filled, tc.required),
			"filled=%d required=%d", tc.filled, tc.required)
	}
}

func TestClassifyFulfillmentBoundaryInclusive(t *testing.T) {
	// ties go to the better-staffed band
	assert.Equal(t, BandGood, ClassifyFulfillment(8, 10))  // exactly 0.80
	assert.Equal(t, BandLow, ClassifyFulfillment(6, 10))   // exactly 0.60
	assert.Equal(t, BandFull, ClassifyFulfillment(10, 10)) // exactly 1.00
	assert.Equal(t, BandFull, ClassifyFulfillment(11, 10)) // exactly 1.10 stays FULL
}

func TestClassifyFulfillmentMonotonic(t *testing.T) {
	order := map[FulfillmentBand]int{
		BandCritical:    0,
		BandLow:         1,
		BandGood:        2,
		BandFull:        3,
		BandOverstaffed: 4,
	}
	required := 16
	prev := ClassifyFulfillment(0, required)
	for filled := 1; filled <= 2*required; filled++ {
		cur := ClassifyFulfillment(filled, required)
		assert.GreaterOrEqual(t, order[cur], order[prev],
			"band regressed at filled=%d", filled)
		prev = cur
	}
}

func TestWorkersNeededByRoleIsNeverPooled(t *testing.T) {
	shift := &models.Shift{
		RequiredCrewChiefs: 1,
		RequiredStagehands: 5,
	}
	assignments := []models.AssignedPersonnel{
		validAssignment(RoleCrewChief, 1),
		validAssignment(RoleCrewChief, 2),
		validAssignment(RoleStagehand, 3),
		validAssignment(RoleStagehand, 4),
	}

	shortages := WorkersNeededByRole(shift, assignments)
	byRole := make(map[RoleCode]RoleShortage)
	for _, s := range shortages {
		byRole[s.Role] = s
	}

	// crew chiefs overstaffed, stagehands still 3 short
	assert.Equal(t, 0, byRole[RoleCrewChief].Needed)
	assert.Equal(t, 3, byRole[RoleStagehand].Needed)
	assert.False(t, FullyStaffed(shift, assignments))
}

func TestWorkersNeededByRoleIgnoresInvalidAssignments(t *testing.T) {
	shift := &models.Shift{RequiredRiggers: 2}
	assignments := []models.AssignedPersonnel{
		validAssignment(RoleRigger, 1),
		{UserID: uintPtr(2), RoleCode: "RG", Status: models.AssignmentStatusCancelled},
	}
	shortages := WorkersNeededByRole(shift, assignments)
	for _, s := range shortages {
		if s.Role == RoleRigger {
			assert.Equal(t, 1, s.Filled)
			assert.Equal(t, 1, s.Needed)
		}
	}
}

func TestFullyStaffed(t *testing.T) {
	shift := &models.Shift{RequiredCrewChiefs: 1, RequiredGeneralLaborers: 2}
	assignments := []models.AssignedPersonnel{
		validAssignment(RoleCrewChief, 1),
		validAssignment(RoleGeneralLaborer, 2),
		validAssignment(RoleGeneralLaborer, 3),
	}
	assert.True(t, FullyStaffed(shift, assignments))
}

func TestSummarize(t *testing.T) {
	shift := &models.Shift{
		RequiredCrewChiefs:      1,
		RequiredStagehands:      8,
		RequiredForkOperators:   2,
		RequiredRiggers:         1,
		RequiredGeneralLaborers: 4,
	}

	assignments := make([]models.AssignedPersonnel, 0, 12)
	// 10 valid across roles
	assignments = append(assignments, validAssignment(RoleCrewChief, 1))
	for i := uint(2); i <= 7; i++ {
		assignments = append(assignments, validAssignment(RoleStagehand, i))
	}
	assignments = append(assignments,
		validAssignment(RoleForkOperator, 8),
		validAssignment(RoleRigger, 9),
		validAssignment(RoleGeneralLaborer, 10),
	)
	// 2 cancelled must not count
	assignments = append(assignments,
		models.AssignedPersonnel{UserID: uintPtr(11), RoleCode: "SH", Status: models.AssignmentStatusCancelled},
		models.AssignedPersonnel{UserID: uintPtr(12), RoleCode: "GL", Status: models.AssignmentStatusCancelled},
	)

	summary := Summarize(shift, assignments)
	assert.Equal(t, 16, summary.RequiredTotal)
	assert.Equal(t, 10, summary.FilledTotal)
	assert.Equal(t, BandLow, summary.Band) // 0.625
	assert.False(t, summary.FullyStaffed)
	assert.Len(t, summary.Shortages, 6)
}

func TestNormalizeRequirementsAppliesCrewChiefFloor(t *testing.T) {
	shift := &models.Shift{
		RequiredCrewChiefs: 0,
		RequiredStagehands: -2,
	}
	NormalizeRequirements(shift, 1)
	assert.Equal(t, 1, shift.RequiredCrewChiefs)
	assert.Equal(t, 0, shift.RequiredStagehands)
}

func TestRoleCodeValid(t *testing.T) {
	for _, role := range AllRoles {
		assert.True(t, role.Valid())
	}
	assert.False(t, RoleCode("XX").Valid())
}
