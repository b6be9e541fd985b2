// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package recommend

import (
	"time"
)

// Time-of-day buckets used by context reweighting.
const (
	TimeOfDayMorning   = "morning"   // 05:00 - 11:59
	TimeOfDayAfternoon = "afternoon" // 12:00 - 17:59
	TimeOfDayEvening   = "evening"   // 18:00 - 22:59
	TimeOfDayNight     = "night"     // 23:00 - 04:59
)

// DeriveUserContext builds the per-request user context from the
// inbound request and the request's wall-clock time. Derived fields
// use the server's local time; device and location pass through as
// sent by the client.
func DeriveUserContext(req Request, now time.Time) UserContext {
	return UserContext{
		DeviceType: req.DeviceType,
		Location:   req.Location,
		TimeOfDay:  timeOfDayBucket(now.Hour()),
		DayOfWeek:  now.Weekday(),
		Extra:      req.Extra,
	}
}

func timeOfDayBucket(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return TimeOfDayMorning
	case hour >= 12 && hour < 18:
		return TimeOfDayAfternoon
	case hour >= 18 && hour < 23:
		return TimeOfDayEvening
	default:
		return TimeOfDayNight
	}
}
