package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"
)

const bookingColumns = `id, item_id, booker_id, start_at, end_at, status, created_at, updated_at`

// CreateBooking вставляет бронь со статусом WAITING. Проверка пересечений
// выполняется повторно внутри той же транзакции, поэтому два конкурентных
// запроса не могут оба пройти проверку на один интервал.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Блокирует любой статус, кроме WAITING и REJECTED: появись путь отмены,
	// отменённая бронь не должна открывать двойное бронирование.
	var overlapping int
	queryCount := `SELECT COUNT(*) FROM bookings
                   WHERE item_id = ? AND status NOT IN (?, ?) AND start_at < ? AND end_at > ?`
	err = tx.QueryRowContext(ctx, queryCount,
		booking.ItemID, models.StatusWaiting, models.StatusRejected,
		booking.End.UTC(), booking.Start.UTC()).Scan(&overlapping)
	if err != nil {
		return fmt.Errorf("failed to check overlap in tx: %w", err)
	}
	if overlapping > 0 {
		return ErrOverlap
	}

	queryInsert := `INSERT INTO bookings (item_id, booker_id, start_at, end_at, status, created_at, updated_at)
                    VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, queryInsert,
		booking.ItemID, booking.BookerID,
		booking.Start.UTC(), booking.End.UTC(),
		models.StatusWaiting, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	booking.ID = id
	booking.Status = models.StatusWaiting
	booking.CreatedAt = now
	booking.UpdatedAt = now

	return tx.Commit()
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`

	var booking models.Booking
	err := db.QueryRowContext(ctx, query, id).Scan(
		&booking.ID, &booking.ItemID, &booking.BookerID,
		&booking.Start, &booking.End, &booking.Status,
		&booking.CreatedAt, &booking.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// UpdateBookingStatusFromWaiting применяет переход только пока бронь в WAITING;
// конкурентное решение по той же брони получит ErrNotWaiting.
func (db *DB) UpdateBookingStatusFromWaiting(ctx context.Context, id int64, status models.BookingStatus) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now().UTC(), id, models.StatusWaiting)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotWaiting
	}
	return nil
}

// FindOverlapping возвращает брони вещи, пересекающие интервал и блокирующие
// новую бронь. WAITING и REJECTED не блокируют.
func (db *DB) FindOverlapping(ctx context.Context, itemID int64, start, end time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE item_id = ? AND status NOT IN (?, ?) AND start_at < ? AND end_at > ?`
	return db.queryBookings(ctx, query, itemID, models.StatusWaiting, models.StatusRejected, end.UTC(), start.UTC())
}

// FindByBooker возвращает брони пользователя, отфильтрованные по state
// относительно now, упорядоченные по дате начала по убыванию.
func (db *DB) FindByBooker(ctx context.Context, bookerID int64, state models.BookingState, now time.Time, from, size int) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booker_id = ?`
	args := []interface{}{bookerID}
	query, args = appendStateFilter(query, args, state, now)
	query, args = appendPage(query, args, from, size)
	return db.queryBookings(ctx, query, args...)
}

// FindByOwner возвращает брони всех вещей владельца с той же фильтрацией.
func (db *DB) FindByOwner(ctx context.Context, ownerID int64, state models.BookingState, now time.Time, from, size int) ([]*models.Booking, error) {
	query := `SELECT b.id, b.item_id, b.booker_id, b.start_at, b.end_at, b.status, b.created_at, b.updated_at
              FROM bookings b JOIN items i ON i.id = b.item_id WHERE i.owner_id = ?`
	args := []interface{}{ownerID}
	query, args = appendStateFilter(query, args, state, now)
	query, args = appendPage(query, args, from, size)
	return db.queryBookings(ctx, query, args...)
}

func appendStateFilter(query string, args []interface{}, state models.BookingState, now time.Time) (string, []interface{}) {
	now = now.UTC()
	switch state {
	case models.StateCurrent:
		query += ` AND start_at <= ? AND end_at >= ?`
		args = append(args, now, now)
	case models.StatePast:
		query += ` AND end_at < ?`
		args = append(args, now)
	case models.StateFuture:
		query += ` AND start_at > ?`
		args = append(args, now)
	case models.StateWaiting:
		query += ` AND status = ?`
		args = append(args, models.StatusWaiting)
	case models.StateRejected:
		query += ` AND status = ?`
		args = append(args, models.StatusRejected)
	}
	return query, args
}

func appendPage(query string, args []interface{}, from, size int) (string, []interface{}) {
	// Страница целиком: индекс страницы from/size, длина size.
	page := from / size
	query += ` ORDER BY start_at DESC LIMIT ? OFFSET ?`
	return query, append(args, size, page*size)
}

// LastItemBooking — последняя одобренная бронь вещи, начавшаяся не позже now.
func (db *DB) LastItemBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE item_id = ? AND status = ? AND start_at <= ?
              ORDER BY start_at DESC LIMIT 1`
	return db.queryBooking(ctx, query, itemID, models.StatusApproved, now.UTC())
}

// NextItemBooking — ближайшая одобренная бронь вещи, начинающаяся после now.
func (db *DB) NextItemBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE item_id = ? AND status = ? AND start_at > ?
              ORDER BY start_at ASC LIMIT 1`
	return db.queryBooking(ctx, query, itemID, models.StatusApproved, now.UTC())
}

// FindQualifyingBooking — завершённая одобренная бронь вещи этим пользователем,
// дающая право на комментарий.
func (db *DB) FindQualifyingBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE item_id = ? AND booker_id = ? AND status = ? AND end_at < ?
              ORDER BY end_at DESC LIMIT 1`
	return db.queryBooking(ctx, query, itemID, bookerID, models.StatusApproved, now.UTC())
}

func (db *DB) queryBooking(ctx context.Context, query string, args ...interface{}) (*models.Booking, error) {
	var booking models.Booking
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID, &booking.ItemID, &booking.BookerID,
		&booking.Start, &booking.End, &booking.Status,
		&booking.CreatedAt, &booking.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query booking: %w", err)
	}
	return &booking, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		var booking models.Booking
		err := rows.Scan(
			&booking.ID, &booking.ItemID, &booking.BookerID,
			&booking.Start, &booking.End, &booking.Status,
			&booking.CreatedAt, &booking.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}
	return bookings, rows.Err()
}
