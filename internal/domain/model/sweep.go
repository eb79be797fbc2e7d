package model

import "time"

// SweepResult summarizes one expiry sweep run.
type SweepResult struct {
	CancelledCount  int
	NotifiedCount   int
	CancelledOrders []Order
	RanAt           time.Time
}
