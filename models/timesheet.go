package models

import "time"

// Timesheet approval status. COMPLETED and REJECTED are terminal.
const (
	TimesheetStatusDraft                  = "draft"
	TimesheetStatusPendingCompanyApproval = "pending_company_approval"
	TimesheetStatusPendingManagerApproval = "pending_manager_approval"
	TimesheetStatusCompleted              = "completed"
	TimesheetStatusRejected               = "rejected"
)

// Timesheet is mutated exclusively through services.TimesheetService. A
// signature field is populated iff its approval timestamp is populated and
// the status has progressed past that stage.
type Timesheet struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	ShiftID uint   `gorm:"not null;index" json:"shift_id"`
	Shift   Shift  `gorm:"foreignKey:ShiftID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"shift"`
	Status  string `gorm:"type:varchar(30);not null;default:'draft'" json:"status"`

	CompanySignature  *string    `gorm:"type:text" json:"company_signature,omitempty"`
	CompanyApprovedAt *time.Time `json:"company_approved_at,omitempty"`
	ManagerSignature  *string    `gorm:"type:text" json:"manager_signature,omitempty"`
	ManagerApprovedAt *time.Time `json:"manager_approved_at,omitempty"`

	UnsignedPDFURL *string `gorm:"type:varchar(255)" json:"unsigned_pdf_url,omitempty"`
	SignedPDFURL   *string `gorm:"type:varchar(255)" json:"signed_pdf_url,omitempty"`
	FinalPDFURL    *string `gorm:"type:varchar(255)" json:"final_pdf_url,omitempty"`

	RejectionReason *string    `gorm:"type:text" json:"rejection_reason,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
