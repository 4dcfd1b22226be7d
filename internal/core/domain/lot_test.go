package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Lot Tests
// =============================================================================

func TestLot_IsOpen_BeforeEnd(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	lot := &Lot{EndAt: now.Add(time.Hour)}

	assert.True(t, lot.IsOpen(now))
}

func TestLot_IsOpen_AfterEnd(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	lot := &Lot{EndAt: now.Add(-time.Minute)}

	assert.False(t, lot.IsOpen(now))
}

func TestLot_IsOpen_WinnerRecorded(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	winner := int64(7)
	lot := &Lot{EndAt: now.Add(time.Hour), WinnerID: &winner}

	assert.False(t, lot.IsOpen(now))
}

func TestLot_MinBid(t *testing.T) {
	lot := &Lot{CurrentPrice: 11500, BidStep: 500}
	assert.Equal(t, 12000.0, lot.MinBid())
}

func TestLot_WonBy(t *testing.T) {
	winner := int64(7)
	lot := &Lot{WinnerID: &winner}

	assert.True(t, lot.WonBy(7))
	assert.False(t, lot.WonBy(8))
	assert.False(t, (&Lot{}).WonBy(7))
}

// =============================================================================
// UserBid Tests
// =============================================================================

func TestUserBid_Won(t *testing.T) {
	winner := int64(3)
	b := &UserBid{Bid: Bid{UserID: 3}, LotWinnerID: &winner}
	assert.True(t, b.Won())

	b.Bid.UserID = 4
	assert.False(t, b.Won())
}

func TestUserBid_LotEnded(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	open := &UserBid{LotEndAt: now.Add(time.Hour)}
	assert.False(t, open.LotEnded(now))

	ended := &UserBid{LotEndAt: now.Add(-time.Hour)}
	assert.True(t, ended.LotEnded(now))
}

// =============================================================================
// Session Tests
// =============================================================================

func TestSession_Expired(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	live := &Session{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, live.Expired(now))

	dead := &Session{ExpiresAt: now}
	assert.True(t, dead.Expired(now))
}

// =============================================================================
// Category Tests
// =============================================================================

func TestCategoryIDs(t *testing.T) {
	ids := CategoryIDs([]Category{{ID: 1}, {ID: 5}})

	assert.True(t, ids[1])
	assert.True(t, ids[5])
	assert.False(t, ids[2])
}
