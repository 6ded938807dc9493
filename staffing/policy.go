package staffing

import (
	"os"
	"strconv"

	"github.com/crewplex/workforce-app/models"
)

// DefaultMinimumCrewChiefs is the business floor on crew chiefs per shift.
// Override with MIN_CREW_CHIEFS.
const DefaultMinimumCrewChiefs = 1

// MinimumCrewChiefs returns the configured crew-chief floor.
func MinimumCrewChiefs() int {
	if raw := os.Getenv("MIN_CREW_CHIEFS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			return n
		}
	}
	return DefaultMinimumCrewChiefs
}

// NormalizeRequirements clamps negative counts to zero and enforces the
// crew-chief floor. Called where requirement vectors are constructed (shift
// create/update), never inside the calculator.
func NormalizeRequirements(shift *models.Shift, minCrewChiefs int) {
	clamp := func(n *int) {
		if *n < 0 {
			*n = 0
		}
	}
	clamp(&shift.RequiredCrewChiefs)
	clamp(&shift.RequiredStagehands)
	clamp(&shift.RequiredForkOperators)
	clamp(&shift.RequiredReachForkOperators)
	clamp(&shift.RequiredRiggers)
	clamp(&shift.RequiredGeneralLaborers)

	if shift.RequiredCrewChiefs < minCrewChiefs {
		shift.RequiredCrewChiefs = minCrewChiefs
	}
}
