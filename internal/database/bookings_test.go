package database

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	logger := zerolog.New(io.Discard)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, email string) *models.User {
	user := &models.User{Email: email, Name: "Test User"}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

func createTestItem(t *testing.T, db *DB, ownerID int64) *models.Item {
	item := &models.Item{
		Name:        "Дрель",
		Description: "Аккумуляторная дрель",
		Available:   true,
		OwnerID:     ownerID,
	}
	require.NoError(t, db.CreateItem(context.Background(), item))
	return item
}

func createTestBooking(t *testing.T, db *DB, itemID, bookerID int64, start, end time.Time) *models.Booking {
	booking := &models.Booking{ItemID: itemID, BookerID: bookerID, Start: start, End: end}
	require.NoError(t, db.CreateBooking(context.Background(), booking))
	return booking
}

func TestCreateAndGetBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	booker := createTestUser(t, db, "booker@example.com")
	item := createTestItem(t, db, owner.ID)

	start := time.Now().Add(24 * time.Hour).UTC()
	end := start.Add(48 * time.Hour)
	booking := createTestBooking(t, db, item.ID, booker.ID, start, end)

	require.NotZero(t, booking.ID)
	assert.Equal(t, models.StatusWaiting, booking.Status)

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)
	assert.Equal(t, item.ID, got.ItemID)
	assert.Equal(t, booker.ID, got.BookerID)
	assert.Equal(t, models.StatusWaiting, got.Status)
	assert.WithinDuration(t, start, got.Start, time.Second)
	assert.WithinDuration(t, end, got.End, time.Second)
}

func TestGetBookingNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetBooking(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBookingOverlap(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	booker := createTestUser(t, db, "booker@example.com")
	other := createTestUser(t, db, "other@example.com")
	item := createTestItem(t, db, owner.ID)

	start := time.Now().Add(24 * time.Hour).UTC()
	end := start.Add(48 * time.Hour)
	first := createTestBooking(t, db, item.ID, booker.ID, start, end)

	// Ожидающие и отклонённые брони вставке не мешают.
	overlapping := &models.Booking{ItemID: item.ID, BookerID: other.ID, Start: start.Add(time.Hour), End: end.Add(time.Hour)}
	require.NoError(t, db.CreateBooking(ctx, overlapping))

	require.NoError(t, db.UpdateBookingStatusFromWaiting(ctx, first.ID, models.StatusApproved))

	blocked := &models.Booking{ItemID: item.ID, BookerID: other.ID, Start: start.Add(time.Hour), End: end.Add(time.Hour)}
	assert.ErrorIs(t, db.CreateBooking(ctx, blocked), ErrOverlap)

	// Встык к концу одобренной брони пересечения нет.
	adjacent := &models.Booking{ItemID: item.ID, BookerID: other.ID, Start: end, End: end.Add(24 * time.Hour)}
	assert.NoError(t, db.CreateBooking(ctx, adjacent))
}

func TestUpdateBookingStatusFromWaiting(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	booker := createTestUser(t, db, "booker@example.com")
	item := createTestItem(t, db, owner.ID)

	start := time.Now().Add(24 * time.Hour).UTC()
	booking := createTestBooking(t, db, item.ID, booker.ID, start, start.Add(24*time.Hour))

	require.NoError(t, db.UpdateBookingStatusFromWaiting(ctx, booking.ID, models.StatusApproved))

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)

	// Повторное решение не проходит: бронь уже не WAITING.
	err = db.UpdateBookingStatusFromWaiting(ctx, booking.ID, models.StatusRejected)
	assert.ErrorIs(t, err, ErrNotWaiting)

	got, err = db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
}

func TestFindOverlapping(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	booker := createTestUser(t, db, "booker@example.com")
	item := createTestItem(t, db, owner.ID)

	start := time.Now().Add(24 * time.Hour).UTC()
	end := start.Add(48 * time.Hour)
	booking := createTestBooking(t, db, item.ID, booker.ID, start, end)
	require.NoError(t, db.UpdateBookingStatusFromWaiting(ctx, booking.ID, models.StatusApproved))

	found, err := db.FindOverlapping(ctx, item.ID, start.Add(time.Hour), end.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = db.FindOverlapping(ctx, item.ID, end, end.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, found)
}

// Отменённая бронь продолжает блокировать интервал, отклонённая нет.
func TestCanceledBookingBlocksInterval(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	booker := createTestUser(t, db, "booker@example.com")
	other := createTestUser(t, db, "other@example.com")
	item := createTestItem(t, db, owner.ID)

	start := time.Now().Add(24 * time.Hour).UTC()
	end := start.Add(48 * time.Hour)
	canceled := createTestBooking(t, db, item.ID, booker.ID, start, end)
	require.NoError(t, db.UpdateBookingStatusFromWaiting(ctx, canceled.ID, models.StatusCanceled))

	blocked := &models.Booking{ItemID: item.ID, BookerID: other.ID, Start: start.Add(time.Hour), End: end.Add(time.Hour)}
	assert.ErrorIs(t, db.CreateBooking(ctx, blocked), ErrOverlap)

	found, err := db.FindOverlapping(ctx, item.ID, start, end)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	later := start.Add(96 * time.Hour)
	rejected := createTestBooking(t, db, item.ID, booker.ID, later, later.Add(24*time.Hour))
	require.NoError(t, db.UpdateBookingStatusFromWaiting(ctx, rejected.ID, models.StatusRejected))

	free := &models.Booking{ItemID: item.ID, BookerID: other.ID, Start: later, End: later.Add(24 * time.Hour)}
	assert.NoError(t, db.CreateBooking(ctx, free))
}

func TestFindByBookerStates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	booker := createTestUser(t, db, "booker@example.com")
	item := createTestItem(t, db, owner.ID)

	now := time.Now().UTC()

	past := createTestBooking(t, db, item.ID, booker.ID, now.Add(-72*time.Hour), now.Add(-48*time.Hour))
	require.NoError(t, db.UpdateBookingStatusFromWaiting(ctx, past.ID, models.StatusApproved))

	current := createTestBooking(t, db, item.ID, booker.ID, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, db.UpdateBookingStatusFromWaiting(ctx, current.ID, models.StatusApproved))

	future := createTestBooking(t, db, item.ID, booker.ID, now.Add(24*time.Hour), now.Add(48*time.Hour))

	rejected := createTestBooking(t, db, item.ID, booker.ID, now.Add(72*time.Hour), now.Add(96*time.Hour))
	require.NoError(t, db.UpdateBookingStatusFromWaiting(ctx, rejected.ID, models.StatusRejected))

	all, err := db.FindByBooker(ctx, booker.ID, models.StateAll, now, 0, 20)
	require.NoError(t, err)
	require.Len(t, all, 4)
	// Порядок: старт по убыванию.
	assert.Equal(t, rejected.ID, all[0].ID)
	assert.Equal(t, future.ID, all[1].ID)
	assert.Equal(t, current.ID, all[2].ID)
	assert.Equal(t, past.ID, all[3].ID)

	got, err := db.FindByBooker(ctx, booker.ID, models.StateCurrent, now, 0, 20)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, current.ID, got[0].ID)

	got, err = db.FindByBooker(ctx, booker.ID, models.StatePast, now, 0, 20)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, past.ID, got[0].ID)

	got, err = db.FindByBooker(ctx, booker.ID, models.StateFuture, now, 0, 20)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, rejected.ID, got[0].ID)
	assert.Equal(t, future.ID, got[1].ID)

	got, err = db.FindByBooker(ctx, booker.ID, models.StateWaiting, now, 0, 20)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, future.ID, got[0].ID)

	got, err = db.FindByBooker(ctx, booker.ID, models.StateRejected, now, 0, 20)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rejected.ID, got[0].ID)
}

func TestFindByBookerPagination(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	booker := createTestUser(t, db, "booker@example.com")

	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		item := &models.Item{
			Name:        fmt.Sprintf("Вещь %d", i),
			Description: "desc",
			Available:   true,
			OwnerID:     owner.ID,
		}
		require.NoError(t, db.CreateItem(ctx, item))
		start := now.Add(time.Duration(24*(i+1)) * time.Hour)
		createTestBooking(t, db, item.ID, booker.ID, start, start.Add(time.Hour))
	}

	// Страница выравнивается по size: from=2 size=2 дает вторую страницу.
	page, err := db.FindByBooker(ctx, booker.ID, models.StateAll, now, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, page[0].Start.After(page[1].Start))

	last, err := db.FindByBooker(ctx, booker.ID, models.StateAll, now, 4, 2)
	require.NoError(t, err)
	assert.Len(t, last, 1)
}

func TestFindByOwner(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	stranger := createTestUser(t, db, "stranger@example.com")
	booker := createTestUser(t, db, "booker@example.com")
	item := createTestItem(t, db, owner.ID)
	foreign := createTestItem(t, db, stranger.ID)

	now := time.Now().UTC()
	mine := createTestBooking(t, db, item.ID, booker.ID, now.Add(24*time.Hour), now.Add(48*time.Hour))
	createTestBooking(t, db, foreign.ID, booker.ID, now.Add(24*time.Hour), now.Add(48*time.Hour))

	got, err := db.FindByOwner(ctx, owner.ID, models.StateAll, now, 0, 20)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)

	got, err = db.FindByOwner(ctx, booker.ID, models.StateAll, now, 0, 20)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLastAndNextItemBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	booker := createTestUser(t, db, "booker@example.com")
	item := createTestItem(t, db, owner.ID)

	now := time.Now().UTC()

	past := createTestBooking(t, db, item.ID, booker.ID, now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	require.NoError(t, db.UpdateBookingStatusFromWaiting(ctx, past.ID, models.StatusApproved))

	near := createTestBooking(t, db, item.ID, booker.ID, now.Add(24*time.Hour), now.Add(48*time.Hour))
	require.NoError(t, db.UpdateBookingStatusFromWaiting(ctx, near.ID, models.StatusApproved))

	far := createTestBooking(t, db, item.ID, booker.ID, now.Add(72*time.Hour), now.Add(96*time.Hour))
	require.NoError(t, db.UpdateBookingStatusFromWaiting(ctx, far.ID, models.StatusApproved))

	// Неодобренные брони в расчет не идут.
	waiting := createTestBooking(t, db, item.ID, booker.ID, now.Add(2*time.Hour), now.Add(3*time.Hour))
	_ = waiting

	last, err := db.LastItemBooking(ctx, item.ID, now)
	require.NoError(t, err)
	assert.Equal(t, past.ID, last.ID)

	next, err := db.NextItemBooking(ctx, item.ID, now)
	require.NoError(t, err)
	assert.Equal(t, near.ID, next.ID)
}

func TestFindQualifyingBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	booker := createTestUser(t, db, "booker@example.com")
	item := createTestItem(t, db, owner.ID)

	now := time.Now().UTC()

	_, err := db.FindQualifyingBooking(ctx, item.ID, booker.ID, now)
	assert.ErrorIs(t, err, ErrNotFound)

	// Будущая одобренная бронь права на комментарий не дает.
	future := createTestBooking(t, db, item.ID, booker.ID, now.Add(24*time.Hour), now.Add(48*time.Hour))
	require.NoError(t, db.UpdateBookingStatusFromWaiting(ctx, future.ID, models.StatusApproved))

	_, err = db.FindQualifyingBooking(ctx, item.ID, booker.ID, now)
	assert.ErrorIs(t, err, ErrNotFound)

	past := createTestBooking(t, db, item.ID, booker.ID, now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	require.NoError(t, db.UpdateBookingStatusFromWaiting(ctx, past.ID, models.StatusApproved))

	got, err := db.FindQualifyingBooking(ctx, item.ID, booker.ID, now)
	require.NoError(t, err)
	assert.Equal(t, past.ID, got.ID)
}
