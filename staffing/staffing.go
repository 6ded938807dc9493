package staffing

import (
	"github.com/crewplex/workforce-app/models"
)

// RoleCode identifies one of the six worker specializations used on both
// shift requirement vectors and assignment records.
type RoleCode string

const (
	RoleCrewChief         RoleCode = "CC"
	RoleStagehand         RoleCode = "SH"
	RoleForkOperator      RoleCode = "FO"
	RoleReachForkOperator RoleCode = "RFO"
	RoleRigger            RoleCode = "RG"
	RoleGeneralLaborer    RoleCode = "GL"
)

// AllRoles lists every role in display order.
var AllRoles = []RoleCode{
	RoleCrewChief,
	RoleStagehand,
	RoleForkOperator,
	RoleReachForkOperator,
	RoleRigger,
	RoleGeneralLaborer,
}

var roleLabels = map[RoleCode]string{
	RoleCrewChief:         "Crew Chief",
	RoleStagehand:         "Stagehand",
	RoleForkOperator:      "Fork Operator",
	RoleReachForkOperator: "Reach Fork Operator",
	RoleRigger:            "Rigger",
	RoleGeneralLaborer:    "General Laborer",
}

// Label returns the human-readable name for a role code.
func (r RoleCode) Label() string {
	if label, ok := roleLabels[r]; ok {
		return label
	}
	return string(r)
}

// Valid reports whether the code is one of the six known roles.
func (r RoleCode) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// requiredAccessors maps each role to its requirement-count field on the
// shift. A fixed table, never dynamic field access.
var requiredAccessors = map[RoleCode]func(*models.Shift) int{
	RoleCrewChief:         func(s *models.Shift) int { return s.RequiredCrewChiefs },
	RoleStagehand:         func(s *models.Shift) int { return s.RequiredStagehands },
	RoleForkOperator:      func(s *models.Shift) int { return s.RequiredForkOperators },
	RoleReachForkOperator: func(s *models.Shift) int { return s.RequiredReachForkOperators },
	RoleRigger:            func(s *models.Shift) int { return s.RequiredRiggers },
	RoleGeneralLaborer:    func(s *models.Shift) int { return s.RequiredGeneralLaborers },
}

// RequiredFor returns the requirement count for one role, normalized to >= 0.
func RequiredFor(shift *models.Shift, role RoleCode) int {
	accessor, ok := requiredAccessors[role]
	if !ok {
		return 0
	}
	return normalizeCount(accessor(shift))
}

// Missing or negative counts are treated as 0 so fulfillment display stays
// available on incomplete shift data.
func normalizeCount(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// FulfillmentBand classifies a shift's staffing ratio.
type FulfillmentBand string

const (
	BandCritical    FulfillmentBand = "CRITICAL"
	BandLow         FulfillmentBand = "LOW"
	BandGood        FulfillmentBand = "GOOD"
	BandFull        FulfillmentBand = "FULL"
	BandOverstaffed FulfillmentBand = "OVERSTAFFED"
)

// Statuses that do not count toward a filled slot. This set, plus the
// non-nil worker check, is the authoritative "counts as filled" predicate.
var excludedStatuses = map[string]bool{
	models.AssignmentStatusCancelled: true,
	models.AssignmentStatusWithdrawn: true,
	models.AssignmentStatusRejected:  true,
}

// IsValidAssignment reports whether an assignment counts as a filled slot.
func IsValidAssignment(ap models.AssignedPersonnel) bool {
	return ap.UserID != nil && !excludedStatuses[ap.Status]
}

// RequiredTotal sums the six role-requirement counts on the shift.
func RequiredTotal(shift *models.Shift) int {
	total := 0
	for _, role := range AllRoles {
		total += RequiredFor(shift, role)
	}
	return total
}

// FilledTotal counts assignments that hold a slot: status outside
// {cancelled, withdrawn, rejected} and a non-nil worker reference.
func FilledTotal(assignments []models.AssignedPersonnel) int {
	filled := 0
	for _, ap := range assignments {
		if IsValidAssignment(ap) {
			filled++
		}
	}
	return filled
}

// FilledFor counts valid assignments whose role code matches.
func FilledFor(assignments []models.AssignedPersonnel, role RoleCode) int {
	filled := 0
	for _, ap := range assignments {
		if IsValidAssignment(ap) && RoleCode(ap.RoleCode) == role {
			filled++
		}
	}
	return filled
}

// ClassifyFulfillment bands the ratio filled/required. Lower bounds are
// inclusive, so a tie goes to the better-staffed band. A shift requiring
// nobody is always FULL.
func ClassifyFulfillment(filled, required int) FulfillmentBand {
	if required <= 0 {
		return BandFull
	}
	ratio := float64(filled) / float64(required)
	switch {
	case ratio > 1.10:
		return BandOverstaffed
	case ratio >= 1.00:
		return BandFull
	case ratio >= 0.80:
		return BandGood
	case ratio >= 0.60:
		return BandLow
	default:
		return BandCritical
	}
}

// RoleShortage is the unmet headcount for one role.
type RoleShortage struct {
	Role     RoleCode `json:"role"`
	Label    string   `json:"label"`
	Required int      `json:"required"`
	Filled   int      `json:"filled"`
	Needed   int      `json:"needed"`
}

// WorkersNeededByRole computes per-role shortages. Computation is per-role,
// never pooled: a surplus of riggers does not offset missing stagehands.
func WorkersNeededByRole(shift *models.Shift, assignments []models.AssignedPersonnel) []RoleShortage {
	shortages := make([]RoleShortage, 0, len(AllRoles))
	for _, role := range AllRoles {
		required := RequiredFor(shift, role)
		filled := FilledFor(assignments, role)
		needed := required - filled
		if needed < 0 {
			needed = 0
		}
		shortages = append(shortages, RoleShortage{
			Role:     role,
			Label:    role.Label(),
			Required: required,
			Filled:   filled,
			Needed:   needed,
		})
	}
	return shortages
}

// FullyStaffed reports whether every per-role shortage is zero. Overstaffing
// in one role never compensates for shortage in another.
func FullyStaffed(shift *models.Shift, assignments []models.AssignedPersonnel) bool {
	for _, s := range WorkersNeededByRole(shift, assignments) {
		if s.Needed > 0 {
			return false
		}
	}
	return true
}

// ShiftSummary is the calculator output consumed by the HTTP layer.
type ShiftSummary struct {
	RequiredTotal int             `json:"required_total"`
	FilledTotal   int             `json:"filled_total"`
	Band          FulfillmentBand `json:"fulfillment_band"`
	FullyStaffed  bool            `json:"fully_staffed"`
	Shortages     []RoleShortage  `json:"per_role_shortages"`
}

// Summarize runs the full calculation for one shift.
func Summarize(shift *models.Shift, assignments []models.AssignedPersonnel) ShiftSummary {
	required := RequiredTotal(shift)
	filled := FilledTotal(assignments)
	return ShiftSummary{
		RequiredTotal: required,
		FilledTotal:   filled,
		Band:          ClassifyFulfillment(filled, required),
		FullyStaffed:  FullyStaffed(shift, assignments),
		Shortages:     WorkersNeededByRole(shift, assignments),
	}
}
