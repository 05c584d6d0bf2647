package models

import (
	"time"
)

const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// IdentityVerification is written by the external verification provider.
// Score is the provider's 0..100 confidence and only counts once verified.
type IdentityVerification struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	UserID       uint       `json:"user_id" gorm:"not null;index"`
	DocumentType string     `json:"document_type" gorm:"size:50;not null"`
	Status       string     `json:"status" gorm:"size:20;default:'pending';index"` // pending, verified, rejected
	Score        int        `json:"score" gorm:"not null;default:0"`
	ReviewedBy   *uint      `json:"reviewed_by" gorm:"index"`
	ReviewedAt   *time.Time `json:"reviewed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
