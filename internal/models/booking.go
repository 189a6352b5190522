package models

import "time"

// BookingStatus is the lifecycle status of a booking. WAITING is the only
// non-terminal status: the owner moves it to APPROVED or REJECTED exactly
// once; CANCELED is reachable only through the cancellation path.
type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
	StatusCanceled BookingStatus = "CANCELED"
)

type Booking struct {
	ID        int64         `json:"id"`
	ItemID    int64         `json:"item_id"`
	BookerID  int64         `json:"booker_id"`
	Start     time.Time     `json:"start"`
	End       time.Time     `json:"end"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// BookingReportRow is a denormalized booking line for Excel reports.
type BookingReportRow struct {
	BookingID  int64
	ItemName   string
	BookerName string
	Start      time.Time
	End        time.Time
	Status     BookingStatus
}

// BookingState is the query filter token for booking listings. Tokens are
// case-sensitive; anything outside the set below is rejected by the engine.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

func ParseBookingState(s string) (BookingState, bool) {
	switch BookingState(s) {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return BookingState(s), true
	}
	return "", false
}
