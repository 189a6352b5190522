package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"
)

func (db *DB) CreateItemRequest(ctx context.Context, request *models.ItemRequest) error {
	query := `INSERT INTO requests (description, requestor_id, created) VALUES (?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query, request.Description, request.RequestorID, now)
	if err != nil {
		return fmt.Errorf("failed to create item request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	request.ID = id
	request.Created = now
	return nil
}

func (db *DB) GetItemRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	query := `SELECT id, description, requestor_id, created FROM requests WHERE id = ?`

	var request models.ItemRequest
	err := db.QueryRowContext(ctx, query, id).Scan(
		&request.ID, &request.Description, &request.RequestorID, &request.Created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item request: %w", err)
	}
	return &request, nil
}

func (db *DB) GetUserItemRequests(ctx context.Context, requestorID int64, from, size int) ([]*models.ItemRequest, error) {
	page := from / size
	query := `SELECT id, description, requestor_id, created
              FROM requests WHERE requestor_id = ?
              ORDER BY created DESC LIMIT ? OFFSET ?`
	return db.queryItemRequests(ctx, query, requestorID, size, page*size)
}

// GetOtherItemRequests — чужие запросы, свежие первыми, постранично.
func (db *DB) GetOtherItemRequests(ctx context.Context, requestorID int64, from, size int) ([]*models.ItemRequest, error) {
	page := from / size
	query := `SELECT id, description, requestor_id, created
              FROM requests WHERE requestor_id != ?
              ORDER BY created DESC LIMIT ? OFFSET ?`
	return db.queryItemRequests(ctx, query, requestorID, size, page*size)
}

func (db *DB) queryItemRequests(ctx context.Context, query string, args ...interface{}) ([]*models.ItemRequest, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query item requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ItemRequest
	for rows.Next() {
		var request models.ItemRequest
		if err := rows.Scan(&request.ID, &request.Description, &request.RequestorID, &request.Created); err != nil {
			return nil, fmt.Errorf("failed to scan item request: %w", err)
		}
		requests = append(requests, &request)
	}
	return requests, rows.Err()
}
