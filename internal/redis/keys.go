package redis

import (
	"fmt"
	"strconv"
	"strings"
)

// Key layout.
const (
	ridePrefix           = "rides:"
	allRidesKey          = "rides:all"
	riderAbsentIndexKey  = "rides:idx:rider:absent"
	driverAbsentIndexKey = "rides:idx:driver:absent"
	lastRideIDKey        = "counters:lastRideId"
	pointsPrefix         = "userPoints:"
	appliedPrefix        = "userPointsApplied:"

	notificationsPrefix = "notifications:"
)

// Hash fields of a ride record.
const (
	fieldDateTime = "dateTime"
	fieldDriver   = "driver"
	fieldRider    = "rider"
	fieldTo       = "to"
	fieldFrom     = "from"
	fieldComplete = "complete"
	fieldRideID   = "rideId"
	fieldOrigin   = "origin"
)

func rideKey(id int64) string {
	return ridePrefix + strconv.FormatInt(id, 10)
}

func pointsKey(userID string) string {
	return pointsPrefix + EncodeUserKey(userID)
}

func appliedKey(userID string) string {
	return appliedPrefix + EncodeUserKey(userID)
}

func notificationsKey(userID string) string {
	return notificationsPrefix + EncodeUserKey(userID)
}

// EncodeUserKey escapes characters that are unsafe in store keys.
// The encoding is reversible with DecodeUserKey.
func EncodeUserKey(userID string) string {
	var b strings.Builder
	b.Grow(len(userID))
	for i := 0; i < len(userID); i++ {
		c := userID[i]
		switch c {
		case '.', '#', '$', '[', ']', '/', '%', ':':
			fmt.Fprintf(&b, "%%%02X", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// DecodeUserKey reverses EncodeUserKey.
func DecodeUserKey(key string) (string, error) {
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		if key[i] != '%' {
			b.WriteByte(key[i])
			continue
		}
		if i+2 >= len(key) {
			return "", fmt.Errorf("truncated escape in %q", key)
		}
		v, err := strconv.ParseUint(key[i+1:i+3], 16, 8)
		if err != nil {
			return "", fmt.Errorf("invalid escape in %q: %w", key, err)
		}
		b.WriteByte(byte(v))
		i += 2
	}
	return b.String(), nil
}
