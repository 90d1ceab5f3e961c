package domain

import "time"

// Points economy.
const (
	StartingBalance  = 100
	RequestCost      = 50 // Debited when a request is posted, refunded when it is deleted.
	CompletionReward = 50 // Credited to the driver when a ride that started as an offer completes.
)

// AdjustmentReason is the business reason for a points change.
type AdjustmentReason string

const (
	AdjustmentRequestDebit     AdjustmentReason = "REQUEST_DEBIT"
	AdjustmentRequestRefund    AdjustmentReason = "REQUEST_REFUND"
	AdjustmentCompletionReward AdjustmentReason = "COMPLETION_REWARD"
)

// AdjustmentStatus represents the state of a journaled points adjustment.
type AdjustmentStatus string

const (
	AdjustmentStatusApplied AdjustmentStatus = "APPLIED"
	AdjustmentStatusPending AdjustmentStatus = "PENDING"
	AdjustmentStatusFailed  AdjustmentStatus = "FAILED"
)

// PointsAdjustment is a journal row for a balance change.
// Pending rows are compensations that still have to be applied.
type PointsAdjustment struct {
	ID             string
	UserID         string
	Delta          int
	Reason         AdjustmentReason
	RideID         int64
	Status         AdjustmentStatus
	IdempotencyKey string
	Attempts       int
	LastError      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
