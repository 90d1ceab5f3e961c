package service

import (
	"errors"

	"rideshare/internal/repository"
)

var (
	// ErrUnauthenticated is returned when no user is signed in.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrUnauthorized is returned when the user is not a party to the ride.
	ErrUnauthorized = errors.New("not a party to this ride")

	// ErrNotFound is returned when the ride does not exist.
	ErrNotFound = repository.ErrNotFound

	// ErrInvalidState is returned when the ride does not allow the requested transition.
	ErrInvalidState = errors.New("ride not in a valid state for this operation")

	// ErrInsufficientPoints is returned when a debit would take a balance below zero.
	ErrInsufficientPoints = repository.ErrInsufficientPoints

	// ErrInvalidRideID is returned when ride ID is not positive.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidRideInput is returned when a required ride field is empty.
	ErrInvalidRideInput = errors.New("date, origin and destination are required")

	// ErrInvalidUserID is returned when a ledger operation names no user.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidAdjustment is returned when a points adjustment has a zero delta.
	ErrInvalidAdjustment = errors.New("invalid points adjustment")

	// ErrInvalidCredentials is returned when an email/password pair does not match.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidEmail is returned when an email is empty or malformed.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrWeakPassword is returned when a password is too short.
	ErrWeakPassword = errors.New("password must be at least 6 characters")

	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidScope is returned when a listing scope is unknown.
	ErrInvalidScope = errors.New("invalid listing scope")
)
