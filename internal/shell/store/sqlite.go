package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/polarbid/polarbid/internal/core/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeLayout is how timestamps are stored. All times are UTC, so the
// lexical order of stored values matches chronological order and
// end-date comparisons can happen in SQL.
const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

// =============================================================================
// Executor Interface - Shared by DB and Transaction
// =============================================================================

// executor abstracts database operations that can be performed on both
// a database connection and a transaction.
type executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to open database", ErrConnectionFailed)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// User Operations
// =============================================================================

// userRow represents a user row in the database.
type userRow struct {
	ID           int64  `db:"id"`
	Email        string `db:"email"`
	Name         string `db:"name"`
	Contacts     string `db:"contacts"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    string `db:"created_at"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		Contacts:     r.Contacts,
		PasswordHash: r.PasswordHash,
		CreatedAt:    parseTime(r.CreatedAt),
	}
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	return createUser(ctx, s.db, user)
}

func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return getUser(ctx, s.db, id)
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return getUserByEmail(ctx, s.db, email)
}

func (s *SQLiteStore) EmailExists(ctx context.Context, email string) (bool, error) {
	return emailExists(ctx, s.db, email)
}

func createUser(ctx context.Context, e executor, user *domain.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	res, err := e.ExecContext(ctx,
		`INSERT INTO users (email, name, contacts, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.Email, user.Name, user.Contacts, user.PasswordHash, formatTime(user.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return NewStoreError("CreateUser", "user", user.Email, "email already registered", ErrDuplicateEmail)
		}
		return NewStoreError("CreateUser", "user", user.Email, err.Error(), err)
	}
	user.ID, err = res.LastInsertId()
	if err != nil {
		return NewStoreError("CreateUser", "user", user.Email, "failed to read new id", err)
	}
	return nil
}

func getUser(ctx context.Context, e executor, id int64) (*domain.User, error) {
	var row userRow
	err := e.GetContext(ctx, &row, `SELECT * FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStoreError("GetUser", "user", strconv.FormatInt(id, 10), "user not found", ErrNotFound)
	}
	if err != nil {
		return nil, NewStoreError("GetUser", "user", strconv.FormatInt(id, 10), err.Error(), err)
	}
	return row.toDomain(), nil
}

func getUserByEmail(ctx context.Context, e executor, email string) (*domain.User, error) {
	var row userRow
	err := e.GetContext(ctx, &row, `SELECT * FROM users WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStoreError("GetUserByEmail", "user", email, "user not found", ErrNotFound)
	}
	if err != nil {
		return nil, NewStoreError("GetUserByEmail", "user", email, err.Error(), err)
	}
	return row.toDomain(), nil
}

func emailExists(ctx context.Context, e executor, email string) (bool, error) {
	var exists bool
	err := e.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email)
	if err != nil {
		return false, NewStoreError("EmailExists", "user", email, err.Error(), err)
	}
	return exists, nil
}

// =============================================================================
// Category Operations
// =============================================================================

type categoryRow struct {
	ID   int64  `db:"id"`
	Slug string `db:"slug"`
	Name string `db:"name"`
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return listCategories(ctx, s.db)
}

func (s *SQLiteStore) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return getCategory(ctx, s.db, id)
}

func listCategories(ctx context.Context, e executor) ([]domain.Category, error) {
	var rows []categoryRow
	err := e.SelectContext(ctx, &rows, `SELECT * FROM categories ORDER BY id`)
	if err != nil {
		return nil, NewStoreError("ListCategories", "category", "", err.Error(), err)
	}
	categories := make([]domain.Category, 0, len(rows))
	for _, r := range rows {
		categories = append(categories, domain.Category{ID: r.ID, Slug: r.Slug, Name: r.Name})
	}
	return categories, nil
}

func getCategory(ctx context.Context, e executor, id int64) (*domain.Category, error) {
	var row categoryRow
	err := e.GetContext(ctx, &row, `SELECT * FROM categories WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStoreError("GetCategory", "category", strconv.FormatInt(id, 10), "category not found", ErrNotFound)
	}
	if err != nil {
		return nil, NewStoreError("GetCategory", "category", strconv.FormatInt(id, 10), err.Error(), err)
	}
	return &domain.Category{ID: row.ID, Slug: row.Slug, Name: row.Name}, nil
}

// =============================================================================
// Lot Operations
// =============================================================================

// lotRow represents a lot row plus the derived columns every lot query
// selects: category name, current price and bid count.
type lotRow struct {
	ID          int64   `db:"id"`
	Title       string  `db:"title"`
	Description string  `db:"description"`
	ImageURL    string  `db:"image_url"`
	StartPrice  float64 `db:"start_price"`
	BidStep     int64   `db:"bid_step"`
	CategoryID  int64   `db:"category_id"`
	SellerID    int64   `db:"seller_id"`
	WinnerID    *int64  `db:"winner_id"`
	EndAt       string  `db:"end_at"`
	CreatedAt   string  `db:"created_at"`

	CategoryName string  `db:"category_name"`
	CurrentPrice float64 `db:"current_price"`
	BidCount     int64   `db:"bid_count"`
}

func (r lotRow) toDomain() domain.Lot {
	return domain.Lot{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		ImageURL:     r.ImageURL,
		StartPrice:   r.StartPrice,
		BidStep:      r.BidStep,
		CategoryID:   r.CategoryID,
		SellerID:     r.SellerID,
		WinnerID:     r.WinnerID,
		EndAt:        parseTime(r.EndAt),
		CreatedAt:    parseTime(r.CreatedAt),
		CategoryName: r.CategoryName,
		CurrentPrice: r.CurrentPrice,
		BidCount:     r.BidCount,
	}
}

// lotSelect is the shared SELECT head for lot queries. The current
// price is the highest bid, falling back to the start price.
const lotSelect = `
SELECT l.id, l.title, l.description, l.image_url, l.start_price, l.bid_step,
       l.category_id, l.seller_id, l.winner_id, l.end_at, l.created_at,
       c.name AS category_name,
       IFNULL((SELECT MAX(b.amount) FROM bids b WHERE b.lot_id = l.id), l.start_price) AS current_price,
       (SELECT COUNT(*) FROM bids b WHERE b.lot_id = l.id) AS bid_count
FROM lots l
JOIN categories c ON c.id = l.category_id`

func (s *SQLiteStore) CreateLot(ctx context.Context, lot *domain.Lot) error {
	return createLot(ctx, s.db, lot)
}

func (s *SQLiteStore) GetLot(ctx context.Context, id int64) (*domain.Lot, error) {
	return getLot(ctx, s.db, id)
}

func (s *SQLiteStore) ListOpenLots(ctx context.Context, now time.Time, opts ListOptions) ([]domain.Lot, error) {
	return listOpenLots(ctx, s.db, now, opts)
}

func (s *SQLiteStore) ListLotsByCategory(ctx context.Context, categoryID int64, now time.Time, opts ListOptions) ([]domain.Lot, error) {
	return listLotsByCategory(ctx, s.db, categoryID, now, opts)
}

func (s *SQLiteStore) SearchLots(ctx context.Context, query string, opts ListOptions) ([]domain.Lot, error) {
	return searchLots(ctx, s.db, query, opts)
}

func (s *SQLiteStore) ListEndedLotsWithoutWinner(ctx context.Context, now time.Time) ([]domain.Lot, error) {
	return listEndedLotsWithoutWinner(ctx, s.db, now)
}

func (s *SQLiteStore) SetLotWinner(ctx context.Context, lotID, winnerID int64) error {
	return setLotWinner(ctx, s.db, lotID, winnerID)
}

func createLot(ctx context.Context, e executor, lot *domain.Lot) error {
	if lot.CreatedAt.IsZero() {
		lot.CreatedAt = time.Now().UTC()
	}
	res, err := e.ExecContext(ctx,
		`INSERT INTO lots (title, description, image_url, start_price, bid_step,
		                   category_id, seller_id, end_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lot.Title, lot.Description, lot.ImageURL, lot.StartPrice, lot.BidStep,
		lot.CategoryID, lot.SellerID, formatTime(lot.EndAt), formatTime(lot.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return NewStoreError("CreateLot", "lot", lot.Title, "unknown category or seller", ErrForeignKey)
		}
		return NewStoreError("CreateLot", "lot", lot.Title, err.Error(), err)
	}
	lot.ID, err = res.LastInsertId()
	if err != nil {
		return NewStoreError("CreateLot", "lot", lot.Title, "failed to read new id", err)
	}
	// A fresh lot has no bids.
	lot.CurrentPrice = lot.StartPrice
	return nil
}

func getLot(ctx context.Context, e executor, id int64) (*domain.Lot, error) {
	var row lotRow
	err := e.GetContext(ctx, &row, lotSelect+` WHERE l.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStoreError("GetLot", "lot", strconv.FormatInt(id, 10), "lot not found", ErrNotFound)
	}
	if err != nil {
		return nil, NewStoreError("GetLot", "lot", strconv.FormatInt(id, 10), err.Error(), err)
	}
	lot := row.toDomain()
	return &lot, nil
}

func selectLots(ctx context.Context, e executor, op, query string, args ...any) ([]domain.Lot, error) {
	var rows []lotRow
	if err := e.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, NewStoreError(op, "lot", "", err.Error(), err)
	}
	lots := make([]domain.Lot, 0, len(rows))
	for _, r := range rows {
		lots = append(lots, r.toDomain())
	}
	return lots, nil
}

func listOpenLots(ctx context.Context, e executor, now time.Time, opts ListOptions) ([]domain.Lot, error) {
	opts = opts.Normalize()
	return selectLots(ctx, e, "ListOpenLots",
		lotSelect+` WHERE l.winner_id IS NULL AND l.end_at > ?
		 ORDER BY l.created_at DESC, l.id DESC LIMIT ? OFFSET ?`,
		formatTime(now), opts.Limit, opts.Offset)
}

func listLotsByCategory(ctx context.Context, e executor, categoryID int64, now time.Time, opts ListOptions) ([]domain.Lot, error) {
	opts = opts.Normalize()
	return selectLots(ctx, e, "ListLotsByCategory",
		lotSelect+` WHERE l.category_id = ? AND l.winner_id IS NULL AND l.end_at > ?
		 ORDER BY l.created_at DESC, l.id DESC LIMIT ? OFFSET ?`,
		categoryID, formatTime(now), opts.Limit, opts.Offset)
}

func searchLots(ctx context.Context, e executor, query string, opts ListOptions) ([]domain.Lot, error) {
	opts = opts.Normalize()
	pattern := "%" + query + "%"
	return selectLots(ctx, e, "SearchLots",
		lotSelect+` WHERE l.title LIKE ? OR l.description LIKE ?
		 ORDER BY l.created_at DESC, l.id DESC LIMIT ? OFFSET ?`,
		pattern, pattern, opts.Limit, opts.Offset)
}

func listEndedLotsWithoutWinner(ctx context.Context, e executor, now time.Time) ([]domain.Lot, error) {
	return selectLots(ctx, e, "ListEndedLotsWithoutWinner",
		lotSelect+` WHERE l.winner_id IS NULL AND l.end_at <= ? ORDER BY l.end_at`,
		formatTime(now))
}

func setLotWinner(ctx context.Context, e executor, lotID, winnerID int64) error {
	res, err := e.ExecContext(ctx, `UPDATE lots SET winner_id = ? WHERE id = ?`, winnerID, lotID)
	if err != nil {
		return NewStoreError("SetLotWinner", "lot", strconv.FormatInt(lotID, 10), err.Error(), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return NewStoreError("SetLotWinner", "lot", strconv.FormatInt(lotID, 10), err.Error(), err)
	}
	if affected == 0 {
		return NewStoreError("SetLotWinner", "lot", strconv.FormatInt(lotID, 10), "lot not found", ErrNotFound)
	}
	return nil
}

// =============================================================================
// Bid Operations
// =============================================================================

type bidRow struct {
	ID        int64   `db:"id"`
	LotID     int64   `db:"lot_id"`
	UserID    int64   `db:"user_id"`
	Amount    float64 `db:"amount"`
	CreatedAt string  `db:"created_at"`
	UserName  string  `db:"user_name"`
}

func (r bidRow) toDomain() domain.Bid {
	return domain.Bid{
		ID:        r.ID,
		LotID:     r.LotID,
		UserID:    r.UserID,
		Amount:    r.Amount,
		CreatedAt: parseTime(r.CreatedAt),
		UserName:  r.UserName,
	}
}

type userBidRow struct {
	ID          int64   `db:"id"`
	LotID       int64   `db:"lot_id"`
	UserID      int64   `db:"user_id"`
	Amount      float64 `db:"amount"`
	CreatedAt   string  `db:"created_at"`
	LotTitle    string  `db:"lot_title"`
	LotImageURL string  `db:"lot_image_url"`
	LotEndAt    string  `db:"lot_end_at"`
	LotWinnerID *int64  `db:"lot_winner_id"`
	Contacts    string  `db:"contacts"`
}

func (s *SQLiteStore) CreateBid(ctx context.Context, bid *domain.Bid) error {
	return createBid(ctx, s.db, bid)
}

func (s *SQLiteStore) ListBidsForLot(ctx context.Context, lotID int64) ([]domain.Bid, error) {
	return listBidsForLot(ctx, s.db, lotID)
}

func (s *SQLiteStore) ListBidsByUser(ctx context.Context, userID int64) ([]domain.UserBid, error) {
	return listBidsByUser(ctx, s.db, userID)
}

func (s *SQLiteStore) HighestBid(ctx context.Context, lotID int64) (*domain.Bid, error) {
	return highestBid(ctx, s.db, lotID)
}

func createBid(ctx context.Context, e executor, bid *domain.Bid) error {
	if bid.CreatedAt.IsZero() {
		bid.CreatedAt = time.Now().UTC()
	}
	res, err := e.ExecContext(ctx,
		`INSERT INTO bids (lot_id, user_id, amount, created_at) VALUES (?, ?, ?, ?)`,
		bid.LotID, bid.UserID, bid.Amount, formatTime(bid.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return NewStoreError("CreateBid", "bid", "", "unknown lot or user", ErrForeignKey)
		}
		return NewStoreError("CreateBid", "bid", "", err.Error(), err)
	}
	bid.ID, err = res.LastInsertId()
	if err != nil {
		return NewStoreError("CreateBid", "bid", "", "failed to read new id", err)
	}
	return nil
}

func listBidsForLot(ctx context.Context, e executor, lotID int64) ([]domain.Bid, error) {
	var rows []bidRow
	err := e.SelectContext(ctx, &rows,
		`SELECT b.id, b.lot_id, b.user_id, b.amount, b.created_at, u.name AS user_name
		 FROM bids b
		 JOIN users u ON u.id = b.user_id
		 WHERE b.lot_id = ?
		 ORDER BY b.created_at DESC, b.id DESC`,
		lotID,
	)
	if err != nil {
		return nil, NewStoreError("ListBidsForLot", "bid", strconv.FormatInt(lotID, 10), err.Error(), err)
	}
	bids := make([]domain.Bid, 0, len(rows))
	for _, r := range rows {
		bids = append(bids, r.toDomain())
	}
	return bids, nil
}

func listBidsByUser(ctx context.Context, e executor, userID int64) ([]domain.UserBid, error) {
	var rows []userBidRow
	err := e.SelectContext(ctx, &rows,
		`SELECT b.id, b.lot_id, b.user_id, b.amount, b.created_at,
		        l.title AS lot_title, l.image_url AS lot_image_url,
		        l.end_at AS lot_end_at, l.winner_id AS lot_winner_id,
		        u.contacts AS contacts
		 FROM bids b
		 JOIN lots l ON l.id = b.lot_id
		 JOIN users u ON u.id = l.seller_id
		 WHERE b.user_id = ?
		 ORDER BY b.created_at DESC, b.id DESC`,
		userID,
	)
	if err != nil {
		return nil, NewStoreError("ListBidsByUser", "bid", strconv.FormatInt(userID, 10), err.Error(), err)
	}
	bids := make([]domain.UserBid, 0, len(rows))
	for _, r := range rows {
		bids = append(bids, domain.UserBid{
			Bid: domain.Bid{
				ID:        r.ID,
				LotID:     r.LotID,
				UserID:    r.UserID,
				Amount:    r.Amount,
				CreatedAt: parseTime(r.CreatedAt),
			},
			LotTitle:    r.LotTitle,
			LotImageURL: r.LotImageURL,
			LotEndAt:    parseTime(r.LotEndAt),
			LotWinnerID: r.LotWinnerID,
			Contacts:    r.Contacts,
		})
	}
	return bids, nil
}

func highestBid(ctx context.Context, e executor, lotID int64) (*domain.Bid, error) {
	var row bidRow
	err := e.GetContext(ctx, &row,
		`SELECT b.id, b.lot_id, b.user_id, b.amount, b.created_at, u.name AS user_name
		 FROM bids b
		 JOIN users u ON u.id = b.user_id
		 WHERE b.lot_id = ?
		 ORDER BY b.amount DESC, b.created_at DESC, b.id DESC
		 LIMIT 1`,
		lotID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStoreError("HighestBid", "bid", strconv.FormatInt(lotID, 10), "lot has no bids", ErrNotFound)
	}
	if err != nil {
		return nil, NewStoreError("HighestBid", "bid", strconv.FormatInt(lotID, 10), err.Error(), err)
	}
	bid := row.toDomain()
	return &bid, nil
}

// =============================================================================
// Session Operations
// =============================================================================

type sessionRow struct {
	Token     string `db:"token"`
	UserID    int64  `db:"user_id"`
	CreatedAt string `db:"created_at"`
	ExpiresAt string `db:"expires_at"`
}

func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	return createSession(ctx, s.db, session)
}

func (s *SQLiteStore) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	return getSession(ctx, s.db, token)
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	return deleteSession(ctx, s.db, token)
}

func (s *SQLiteStore) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	return deleteExpiredSessions(ctx, s.db, now)
}

func createSession(ctx context.Context, e executor, session *domain.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	_, err := e.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		session.Token, session.UserID, formatTime(session.CreatedAt), formatTime(session.ExpiresAt),
	)
	if err != nil {
		return NewStoreError("CreateSession", "session", "", err.Error(), err)
	}
	return nil
}

func getSession(ctx context.Context, e executor, token string) (*domain.Session, error) {
	var row sessionRow
	err := e.GetContext(ctx, &row, `SELECT * FROM sessions WHERE token = ?`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStoreError("GetSession", "session", "", "session not found", ErrNotFound)
	}
	if err != nil {
		return nil, NewStoreError("GetSession", "session", "", err.Error(), err)
	}
	return &domain.Session{
		Token:     row.Token,
		UserID:    row.UserID,
		CreatedAt: parseTime(row.CreatedAt),
		ExpiresAt: parseTime(row.ExpiresAt),
	}, nil
}

func deleteSession(ctx context.Context, e executor, token string) error {
	_, err := e.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return NewStoreError("DeleteSession", "session", "", err.Error(), err)
	}
	return nil
}

func deleteExpiredSessions(ctx context.Context, e executor, now time.Time) error {
	_, err := e.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, formatTime(now))
	if err != nil {
		return NewStoreError("DeleteExpiredSessions", "session", "", err.Error(), err)
	}
	return nil
}

// =============================================================================
// Transaction Support
// =============================================================================

func (s *SQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return NewStoreError("WithTx", "", "", "failed to begin transaction", ErrTxFailed)
	}

	txS := &txSQLiteStore{tx: tx}

	if err := fn(txS); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return NewStoreError("WithTx", "", "", fmt.Sprintf("rollback failed after error: %v", err), ErrTxFailed)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return NewStoreError("WithTx", "", "", "failed to commit transaction", ErrTxFailed)
	}
	return nil
}

// txSQLiteStore is the Store view of one open transaction. Nested
// WithTx calls run in the same transaction.
type txSQLiteStore struct {
	tx *sqlx.Tx
}

func (s *txSQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	return createUser(ctx, s.tx, user)
}

func (s *txSQLiteStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return getUser(ctx, s.tx, id)
}

func (s *txSQLiteStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return getUserByEmail(ctx, s.tx, email)
}

func (s *txSQLiteStore) EmailExists(ctx context.Context, email string) (bool, error) {
	return emailExists(ctx, s.tx, email)
}

func (s *txSQLiteStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return listCategories(ctx, s.tx)
}

func (s *txSQLiteStore) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return getCategory(ctx, s.tx, id)
}

func (s *txSQLiteStore) CreateLot(ctx context.Context, lot *domain.Lot) error {
	return createLot(ctx, s.tx, lot)
}

func (s *txSQLiteStore) GetLot(ctx context.Context, id int64) (*domain.Lot, error) {
	return getLot(ctx, s.tx, id)
}

func (s *txSQLiteStore) ListOpenLots(ctx context.Context, now time.Time, opts ListOptions) ([]domain.Lot, error) {
	return listOpenLots(ctx, s.tx, now, opts)
}

func (s *txSQLiteStore) ListLotsByCategory(ctx context.Context, categoryID int64, now time.Time, opts ListOptions) ([]domain.Lot, error) {
	return listLotsByCategory(ctx, s.tx, categoryID, now, opts)
}

func (s *txSQLiteStore) SearchLots(ctx context.Context, query string, opts ListOptions) ([]domain.Lot, error) {
	return searchLots(ctx, s.tx, query, opts)
}

func (s *txSQLiteStore) ListEndedLotsWithoutWinner(ctx context.Context, now time.Time) ([]domain.Lot, error) {
	return listEndedLotsWithoutWinner(ctx, s.tx, now)
}

func (s *txSQLiteStore) SetLotWinner(ctx context.Context, lotID, winnerID int64) error {
	return setLotWinner(ctx, s.tx, lotID, winnerID)
}

func (s *txSQLiteStore) CreateBid(ctx context.Context, bid *domain.Bid) error {
	return createBid(ctx, s.tx, bid)
}

func (s *txSQLiteStore) ListBidsForLot(ctx context.Context, lotID int64) ([]domain.Bid, error) {
	return listBidsForLot(ctx, s.tx, lotID)
}

func (s *txSQLiteStore) ListBidsByUser(ctx context.Context, userID int64) ([]domain.UserBid, error) {
	return listBidsByUser(ctx, s.tx, userID)
}

func (s *txSQLiteStore) HighestBid(ctx context.Context, lotID int64) (*domain.Bid, error) {
	return highestBid(ctx, s.tx, lotID)
}

func (s *txSQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	return createSession(ctx, s.tx, session)
}

func (s *txSQLiteStore) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	return getSession(ctx, s.tx, token)
}

func (s *txSQLiteStore) DeleteSession(ctx context.Context, token string) error {
	return deleteSession(ctx, s.tx, token)
}

func (s *txSQLiteStore) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	return deleteExpiredSessions(ctx, s.tx, now)
}

func (s *txSQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	return fn(s)
}

func (s *txSQLiteStore) Close() error {
	return nil
}
