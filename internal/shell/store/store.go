package store

import (
	"context"
	"time"

	"github.com/polarbid/polarbid/internal/core/domain"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store defines the persistence interface for Polarbid entities.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)

	// Category operations (the set is migration-seeded and read-only)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)

	// Lot operations
	CreateLot(ctx context.Context, lot *domain.Lot) error
	GetLot(ctx context.Context, id int64) (*domain.Lot, error)
	ListOpenLots(ctx context.Context, now time.Time, opts ListOptions) ([]domain.Lot, error)
	ListLotsByCategory(ctx context.Context, categoryID int64, now time.Time, opts ListOptions) ([]domain.Lot, error)
	SearchLots(ctx context.Context, query string, opts ListOptions) ([]domain.Lot, error)

	// Winner assignment (lot closer)
	ListEndedLotsWithoutWinner(ctx context.Context, now time.Time) ([]domain.Lot, error)
	SetLotWinner(ctx context.Context, lotID, winnerID int64) error

	// Bid operations
	CreateBid(ctx context.Context, bid *domain.Bid) error
	ListBidsForLot(ctx context.Context, lotID int64) ([]domain.Bid, error)
	ListBidsByUser(ctx context.Context, userID int64) ([]domain.UserBid, error)
	HighestBid(ctx context.Context, lotID int64) (*domain.Bid, error)

	// Session operations
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, token string) (*domain.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) error

	// Transaction support
	WithTx(ctx context.Context, fn func(Store) error) error

	// Lifecycle
	Close() error
}

// =============================================================================
// Options
// =============================================================================

// ListOptions defines pagination options.
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultListOptions returns default list options.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Limit:  50,
		Offset: 0,
	}
}

// Normalize ensures list options have valid values.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = 50
	}
	if o.Limit > 500 {
		o.Limit = 500
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
