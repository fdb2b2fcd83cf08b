package models

import "time"

// Student application statuses.
const (
	StudentApplied  = "applied"
	StudentEnrolled = "enrolled"
	StudentRejected = "rejected"
)

// Student is an admission application scoped to a center. Enrolling a
// student debits the enrollment fee from the center wallet.
type Student struct {
	ID       uint `gorm:"primarykey" json:"id"`
	CenterID uint `gorm:"not null;index" json:"centerId"`

	Name   string `gorm:"not null" json:"name"`
	Email  string `gorm:"not null" json:"email"`
	Phone  string `json:"phone"`
	Course string `json:"course"`

	Status        string  `gorm:"type:varchar(16);not null;default:'applied'" json:"status"`
	EnrollmentFee float64 `json:"enrollmentFee"`

	AddedOn   time.Time `gorm:"autoCreateTime" json:"addedOn"`
	UpdatedAt time.Time `json:"updatedAt"`
}
