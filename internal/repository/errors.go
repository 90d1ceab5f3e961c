package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidRide is returned when a ride without any party would be persisted.
	ErrInvalidRide = errors.New("ride must have a driver or a rider")

	// ErrInvalidField is returned when a partial update names an unknown or mistyped field.
	ErrInvalidField = errors.New("invalid ride field")

	// ErrInsufficientPoints is returned when a debit would take a balance below zero.
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrStorageTransaction is returned when a store transaction cannot commit.
	ErrStorageTransaction = errors.New("storage transaction failed")

	// ErrStorageWrite is returned when a plain write fails.
	ErrStorageWrite = errors.New("storage write failed")
)
