package redis

import (
	"rideshare/internal/repository"
	"rideshare/internal/service"
)

// Ensure concrete types implement interfaces.
var (
	_ repository.RideRepository   = (*RideStore)(nil)
	_ repository.PointsRepository = (*PointsStore)(nil)
	_ service.NotificationStore    = (*NotificationStore)(nil)
)
