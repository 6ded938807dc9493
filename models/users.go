package models

import "time"

// User roles
const (
	RoleAdmin       = "admin"
	RoleCompanyUser = "company_user"
	RoleCrewChief   = "crew_chief"
	RoleWorker      = "worker"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255); not null" json:"name"`
	Email     string    `gorm:"type:varchar(255); unique;not null" json:"email"`
	Password  string    `gorm:"type:varchar(255); not null" json:"-"`
	Role      string    `gorm:"type:varchar(50); not null" json:"role"`
	CompanyID *uint     `gorm:"index" json:"company_id,omitempty"`
	Company   *Company  `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
