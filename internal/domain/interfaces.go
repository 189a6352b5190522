package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

// UserRepository is the user directory port.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
}

// ItemRepository is the item directory port.
type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	GetItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error)
	GetItemsByRequest(ctx context.Context, requestID int64) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string) ([]*models.Item, error)
}

// BookingRepository is the booking store port. CreateBooking runs the overlap
// re-check and the insert in one transaction; UpdateBookingStatusFromWaiting
// applies the transition only while the row is still WAITING.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatusFromWaiting(ctx context.Context, id int64, status models.BookingStatus) error
	FindOverlapping(ctx context.Context, itemID int64, start, end time.Time) ([]*models.Booking, error)
	FindByBooker(ctx context.Context, bookerID int64, state models.BookingState, now time.Time, from, size int) ([]*models.Booking, error)
	FindByOwner(ctx context.Context, ownerID int64, state models.BookingState, now time.Time, from, size int) ([]*models.Booking, error)
	LastItemBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	NextItemBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	FindQualifyingBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (*models.Booking, error)
}

// CommentRepository is the comment store port.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetItemComments(ctx context.Context, itemID int64) ([]*models.Comment, error)
}

// RequestRepository is the item-request store port.
type RequestRepository interface {
	CreateItemRequest(ctx context.Context, request *models.ItemRequest) error
	GetItemRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetUserItemRequests(ctx context.Context, requestorID int64, from, size int) ([]*models.ItemRequest, error)
	GetOtherItemRequests(ctx context.Context, requestorID int64, from, size int) ([]*models.ItemRequest, error)
}

// SearchCache caches item search results keyed by the query text.
type SearchCache interface {
	GetSearch(ctx context.Context, text string) ([]*models.Item, bool, error)
	SetSearch(ctx context.Context, text string, items []*models.Item) error
	InvalidateSearch(ctx context.Context) error
}

// EventPublisher publishes domain events for interested consumers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
