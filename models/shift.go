package models

import "time"

// Shift status
const (
	ShiftStatusPending    = "pending"
	ShiftStatusActive     = "active"
	ShiftStatusInProgress = "in_progress"
	ShiftStatusCompleted  = "completed"
	ShiftStatusCancelled  = "cancelled"
)

// Shift owns the six role-requirement counts. Fulfillment is derived by the
// staffing package and never stored.
type Shift struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	JobID  uint   `gorm:"not null;index" json:"job_id"`
	Job    Job    `gorm:"foreignKey:JobID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"job"`
	Status string `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	Date      time.Time `gorm:"type:date;not null" json:"date"`
	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	RequiredCrewChiefs         int `gorm:"not null;default:0" json:"required_crew_chiefs"`
	RequiredStagehands         int `gorm:"not null;default:0" json:"required_stagehands"`
	RequiredForkOperators      int `gorm:"not null;default:0" json:"required_fork_operators"`
	RequiredReachForkOperators int `gorm:"not null;default:0" json:"required_reach_fork_operators"`
	RequiredRiggers            int `gorm:"not null;default:0" json:"required_riggers"`
	RequiredGeneralLaborers    int `gorm:"not null;default:0" json:"required_general_laborers"`

	AssignedPersonnel []AssignedPersonnel `gorm:"foreignKey:ShiftID" json:"assigned_personnel,omitempty"`
	CreatedAt         time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time           `gorm:"not null" json:"updated_at"`
}
