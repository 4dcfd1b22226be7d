package domain

import "time"

// Bid is a single bid on a lot. UserName is filled in on read for the
// bid-history table.
type Bid struct {
	ID        int64
	LotID     int64
	UserID    int64
	Amount    float64
	CreatedAt time.Time

	// Derived on read.
	UserName string
}

// UserBid is a bid joined with its lot, as shown on the my-bids page.
type UserBid struct {
	Bid

	LotTitle    string
	LotImageURL string
	LotEndAt    time.Time
	LotWinnerID *int64
	Contacts    string // seller contacts, shown to the winner
}

// Won reports whether this bid's owner won the lot.
func (b *UserBid) Won() bool {
	return b.LotWinnerID != nil && *b.LotWinnerID == b.UserID
}

// LotEnded reports whether bidding on the underlying lot is over.
func (b *UserBid) LotEnded(now time.Time) bool {
	return b.LotWinnerID != nil || !now.Before(b.LotEndAt)
}
