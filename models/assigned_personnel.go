package models

import "time"

// Assignment lifecycle status. Records are never deleted while the shift
// exists; cancelled/withdrawn/rejected are soft states.
const (
	AssignmentStatusAssigned   = "assigned"
	AssignmentStatusClockedIn  = "clocked_in"
	AssignmentStatusOnBreak    = "on_break"
	AssignmentStatusShiftEnded = "shift_ended"
	AssignmentStatusNoShow     = "no_show"
	AssignmentStatusCancelled  = "cancelled"
	AssignmentStatusWithdrawn  = "withdrawn"
	AssignmentStatusRejected   = "rejected"
	AssignmentStatusUpForGrabs = "up_for_grabs"
)

type AssignedPersonnel struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ShiftID  uint   `gorm:"not null;index" json:"shift_id"`
	Shift    Shift  `gorm:"foreignKey:ShiftID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	UserID   *uint  `gorm:"index" json:"user_id"`
	User     *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RoleCode string `gorm:"type:varchar(5);not null" json:"role_code"`
	Status   string `gorm:"type:varchar(20);not null;default:'assigned'" json:"status"`

	TimeEntries []TimeEntry `gorm:"foreignKey:AssignedPersonnelID" json:"time_entries,omitempty"`
	CreatedAt   time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"not null" json:"updated_at"`
}
