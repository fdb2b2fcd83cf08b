package models

import (
	"time"
)

// Center is a tenant admission office with its own wallet balance.
type Center struct {
	ID              uint    `gorm:"primarykey" json:"id"`
	Code            string  `gorm:"uniqueIndex;not null;size:4" json:"code"`
	Name            string  `gorm:"not null" json:"name"`
	University      string  `json:"university"`
	Email           string  `gorm:"uniqueIndex;not null" json:"email"`
	Contact         string  `json:"contact"`
	WalletBalance   float64 `gorm:"not null;default:0" json:"walletBalance"`
	Status          bool    `gorm:"default:true" json:"status"`
	SubCenterAccess bool    `gorm:"default:false" json:"subCenterAccess"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CenterSummary is the listing shape returned to superadmins.
type CenterSummary struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	University    string  `json:"university"`
	WalletBalance float64 `json:"walletBalance"`
}
