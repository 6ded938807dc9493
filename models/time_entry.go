package models

import "time"

// TimeEntry is one clock-in/clock-out pair for an assignment. EntryNumber
// runs 1..3 to support split shifts and breaks; worked hours for a worker are
// summed over all entries.
type TimeEntry struct {
	ID                  uint              `gorm:"primaryKey" json:"id"`
	AssignedPersonnelID uint              `gorm:"not null;index" json:"assigned_personnel_id"`
	AssignedPersonnel   AssignedPersonnel `gorm:"foreignKey:AssignedPersonnelID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	EntryNumber         int               `gorm:"not null;default:1" json:"entry_number"`
	ClockIn             time.Time         `gorm:"not null" json:"clock_in"`
	ClockOut            *time.Time        `json:"clock_out,omitempty"`
	CreatedAt           time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time         `gorm:"not null" json:"updated_at"`
}

// Hours returns the worked duration in hours, 0 while the entry is open.
func (te *TimeEntry) Hours() float64 {
	if te.ClockOut == nil {
		return 0
	}
	return te.ClockOut.Sub(te.ClockIn).Hours()
}
