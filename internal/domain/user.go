package domain

import "time"

// User represents per-chat delivery settings. Station subscriptions are kept
// separately and retrieved in insertion order.
type User struct {
	ChatID    int64
	Time      TimeOfDay
	Enabled   bool
	Lang      string
	CreatedAt time.Time // UTC
}
