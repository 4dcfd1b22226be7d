package domain

import "time"

// =============================================================================
// Lot
// =============================================================================

// Lot is an auction item. CurrentPrice, BidCount and CategoryName are
// derived columns filled in by the store when the lot is loaded.
type Lot struct {
	ID          int64
	Title       string
	Description string
	ImageURL    string
	StartPrice  float64
	BidStep     int64
	CategoryID  int64
	SellerID    int64
	WinnerID    *int64
	EndAt       time.Time
	CreatedAt   time.Time

	// Derived on read.
	CategoryName string
	CurrentPrice float64
	BidCount     int64
}

// IsOpen reports whether the lot still accepts bids: the end date has
// not passed and no winner has been recorded.
func (l *Lot) IsOpen(now time.Time) bool {
	return l.WinnerID == nil && now.Before(l.EndAt)
}

// MinBid is the smallest acceptable next bid: the current price plus
// the lot's bid step.
func (l *Lot) MinBid() float64 {
	return l.CurrentPrice + float64(l.BidStep)
}

// WonBy reports whether the lot has been won by the given user.
func (l *Lot) WonBy(userID int64) bool {
	return l.WinnerID != nil && *l.WinnerID == userID
}
