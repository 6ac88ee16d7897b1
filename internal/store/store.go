// Package store persists orders in a single Postgres relation and owns all
// SQL in the application. Mutating operations are independent single
// statements safe to retry; the one multi-statement flow, AllocateAndAssign,
// runs in its own transaction so concurrent allocations serialize.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lbocquet/tombola/internal/ticket"
)

// DBTX is the subset of pgx operations the store needs.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// ErrAlreadyAssigned is returned when an allocation targets an order that
// gained an id between listing and assignment (a lost UI race).
var ErrAlreadyAssigned = errors.New("order already has an assigned id")

// Store is the order repository. Connections are acquired from the pool per
// statement and released on every exit path.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema idempotently creates the orders table and brings older
// deployments up to the current column set. Additive only: the achat column
// was introduced after the table shipped, so it is added separately with
// IF NOT EXISTS.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS orders (
			id          INTEGER,
			date        VARCHAR(255),
			firm        VARCHAR(255),
			name        VARCHAR(255),
			email       VARCHAR(255),
			num_tickets INTEGER,
			UNIQUE(name, date)
		)`)
	if err != nil {
		return fmt.Errorf("create orders table: %w", err)
	}

	_, err = s.pool.Exec(ctx, `ALTER TABLE orders ADD COLUMN IF NOT EXISTS achat VARCHAR(255)`)
	if err != nil {
		return fmt.Errorf("add achat column: %w", err)
	}
	return nil
}

const insertOrderSQL = `
	INSERT INTO orders (id, date, firm, name, email, num_tickets, achat)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// InsertBatch inserts orders one by one and returns how many rows were newly
// persisted. A unique violation on (name, date) means the order was already
// imported: it is skipped without updating the existing row and without
// aborting the rest of the batch. Any other error aborts and is returned.
func (s *Store) InsertBatch(ctx context.Context, orders []ticket.Order) (int, error) {
	inserted := 0
	for _, o := range orders {
		_, err := s.pool.Exec(ctx, insertOrderSQL,
			assignedID(o), o.Date, nullable(o.Firm), o.Name, o.Email, o.NumTickets, nullable(o.Note))
		if err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return inserted, fmt.Errorf("insert order %q/%q: %w", o.Name, o.Date, err)
		}
		inserted++
	}
	return inserted, nil
}

// InsertOne inserts a single order, reporting success as a boolean. Duplicates
// and connectivity failures both yield false; manual-entry callers only need
// to know whether the row landed.
func (s *Store) InsertOne(ctx context.Context, o ticket.Order) bool {
	_, err := s.pool.Exec(ctx, insertOrderSQL,
		assignedID(o), o.Date, nullable(o.Firm), o.Name, o.Email, o.NumTickets, nullable(o.Note))
	return err == nil
}

const selectOrderCols = `SELECT id, date, firm, name, email, num_tickets, achat FROM orders`

// ListPending returns all orders still waiting for an id, newest first.
func (s *Store) ListPending(ctx context.Context) ([]ticket.Order, error) {
	return s.list(ctx, selectOrderCols+` WHERE id IS NULL ORDER BY date DESC`)
}

// ListAssigned returns all orders holding an id, ascending by id. The order
// is significant: consecutive rows hold adjacent ranges.
func (s *Store) ListAssigned(ctx context.Context) ([]ticket.Order, error) {
	return s.list(ctx, selectOrderCols+` WHERE id IS NOT NULL ORDER BY id ASC`)
}

// ListAll returns every order, newest first, for the dashboard.
func (s *Store) ListAll(ctx context.Context) ([]ticket.Order, error) {
	return s.list(ctx, selectOrderCols+` ORDER BY date DESC`)
}

func (s *Store) list(ctx context.Context, query string) ([]ticket.Order, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []ticket.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// Find returns the order identified by its natural key.
func (s *Store) Find(ctx context.Context, name, date string) (ticket.Order, bool, error) {
	row := s.pool.QueryRow(ctx, selectOrderCols+` WHERE name = $1 AND date = $2`, name, date)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ticket.Order{}, false, nil
	}
	if err != nil {
		return ticket.Order{}, false, err
	}
	return o, true, nil
}

// MaxAssignedIDAndSpan returns the id and ticket count of the row holding the
// maximum assigned id, or (nil, nil) when no order has been assigned. Both
// values come from the same row; the span of that row, not an independent
// max, determines where the next range begins.
func (s *Store) MaxAssignedIDAndSpan(ctx context.Context) (*int, *int, error) {
	return maxAssigned(ctx, s.pool)
}

func maxAssigned(ctx context.Context, db DBTX) (*int, *int, error) {
	var id, span int
	err := db.QueryRow(ctx,
		`SELECT id, num_tickets FROM orders WHERE id IS NOT NULL ORDER BY id DESC LIMIT 1`,
	).Scan(&id, &span)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("query max assigned id: %w", err)
	}
	return &id, &span, nil
}

// UpdateNote sets the achat annotation for the order identified by its
// natural key. Updating a row that no longer exists is a silent no-op;
// the dashboard may race a concurrent delete.
func (s *Store) UpdateNote(ctx context.Context, name, date, note string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE orders SET achat = $1 WHERE name = $2 AND date = $3`,
		nullable(note), name, date)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return nil
}

// AssignID sets the starting ticket id for the order identified by its
// natural key. Missing rows are a silent no-op.
func (s *Store) AssignID(ctx context.Context, name, date string, id int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE orders SET id = $1 WHERE name = $2 AND date = $3`,
		id, name, date)
	if err != nil {
		return fmt.Errorf("assign id: %w", err)
	}
	return nil
}

// DeleteUnassigned removes an order that has not been allocated yet. The
// id IS NULL guard makes deleting an assigned order impossible here: removing
// an allocated range would break contiguity.
func (s *Store) DeleteUnassigned(ctx context.Context, name, date string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM orders WHERE name = $1 AND date = $2 AND id IS NULL`,
		name, date)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

// AllocateAndAssign computes the next free ticket range for the given order,
// invokes notify with the range start, and on success records the assignment.
// The whole sequence runs in one transaction holding an exclusive table lock,
// so concurrent allocations serialize instead of computing the same start id.
//
// notify runs before the UPDATE: if delivery fails the transaction rolls back
// and the order stays pending with no id consumed, so a retry is safe and
// skips nothing. The returned int is the assigned start id.
func (s *Store) AllocateAndAssign(ctx context.Context, o ticket.Order, startingID int, notify func(startID int) error) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin allocation: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	// EXCLUSIVE blocks other allocations but not plain reads. FOR UPDATE on
	// the max row alone would not serialize the first-ever allocation, when
	// there is no row to lock.
	if _, err := tx.Exec(ctx, `LOCK TABLE orders IN EXCLUSIVE MODE`); err != nil {
		return 0, fmt.Errorf("lock orders: %w", err)
	}

	maxID, span, err := maxAssigned(ctx, tx)
	if err != nil {
		return 0, err
	}
	start := ticket.NextStart(maxID, span, startingID)

	if err := notify(start); err != nil {
		return 0, fmt.Errorf("notify: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE orders SET id = $1 WHERE name = $2 AND date = $3 AND id IS NULL`,
		start, o.Name, o.Date)
	if err != nil {
		return 0, fmt.Errorf("assign id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrAlreadyAssigned
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit allocation: %w", err)
	}
	return start, nil
}

// scanOrder reads one row of selectOrderCols into an Order.
func scanOrder(row pgx.Row) (ticket.Order, error) {
	var (
		o    ticket.Order
		id   pgtype.Int4
		firm pgtype.Text
		note pgtype.Text
	)
	if err := row.Scan(&id, &o.Date, &firm, &o.Name, &o.Email, &o.NumTickets, &note); err != nil {
		return ticket.Order{}, fmt.Errorf("scan order: %w", err)
	}
	if id.Valid {
		v := int(id.Int32)
		o.AssignedID = &v
	}
	o.Firm = firm.String
	o.Note = note.String
	return o, nil
}

// assignedID converts the optional id for insertion.
func assignedID(o ticket.Order) pgtype.Int4 {
	if o.AssignedID == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(*o.AssignedID), Valid: true}
}

// nullable stores empty optional strings as NULL.
func nullable(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
