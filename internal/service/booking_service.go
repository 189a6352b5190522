package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// BookingService владеет жизненным циклом брони: создание, решение владельца,
// просмотр и выборки по статусу. Вся логика времени и доступа живет здесь,
// хранилища остаются тупыми.
type BookingService struct {
	bookings domain.BookingRepository
	items    domain.ItemRepository
	users    domain.UserRepository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewBookingService(
	bookings domain.BookingRepository,
	items domain.ItemRepository,
	users domain.UserRepository,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		items:    items,
		users:    users,
		eventBus: eventBus,
		logger:   logger,
	}
}

// CreateBooking проверяет запрос в фиксированном порядке (первый провал
// выигрывает) и сохраняет бронь со статусом WAITING.
func (s *BookingService) CreateBooking(ctx context.Context, itemID int64, start, end time.Time, bookerID int64) (*models.Booking, error) {
	now := time.Now()

	if start.Before(now) {
		return nil, validationf("Дата начала брони (%s) находится в прошлом", start.Format(time.RFC3339))
	}
	if end.Before(now) {
		return nil, validationf("Дата окончания брони (%s) находится в прошлом", end.Format(time.RFC3339))
	}
	if !end.After(start) {
		return nil, validationf("Дата окончания брони (%s) раньше даты начала (%s)",
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	exists, err := s.users.UserExists(ctx, bookerID)
	if err != nil {
		return nil, fmt.Errorf("check booker: %w", err)
	}
	if !exists {
		return nil, notFoundf("Пользователь (id = %d) не найден", bookerID)
	}

	item, err := s.items.GetItemByID(ctx, itemID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("Вещь (id = %d) не найдена", itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("load item: %w", err)
	}

	if !item.Available {
		return nil, validationf("Вещь (id = %d) не доступна", itemID)
	}

	// Владельцу собственная вещь для брони "не существует": чужой интерес
	// к факту владения не раскрываем.
	if item.OwnerID == bookerID {
		return nil, notFoundf("Нельзя забронировать вещь (id = %d), являясь её владельцем", itemID)
	}

	overlapping, err := s.bookings.FindOverlapping(ctx, itemID, start, end)
	if err != nil {
		return nil, fmt.Errorf("check overlap: %w", err)
	}
	if len(overlapping) > 0 {
		return nil, validationf("Вещь (id = %d) уже забронирована на эти даты", itemID)
	}

	booking := &models.Booking{
		ItemID:   itemID,
		BookerID: bookerID,
		Start:    start,
		End:      end,
		Status:   models.StatusWaiting,
	}
	err = s.bookings.CreateBooking(ctx, booking)
	if errors.Is(err, database.ErrOverlap) {
		// Конкурент успел раньше внутри транзакции хранилища.
		return nil, validationf("Вещь (id = %d) уже забронирована на эти даты", itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("save booking: %w", err)
	}

	s.publishEvent(events.EventBookingCreated, booking)
	return booking, nil
}

// DecideBooking применяет решение владельца. Владение проверяется как
// существование: не владельцу не сообщаем, что бронь вообще есть.
func (s *BookingService) DecideBooking(ctx context.Context, bookingID, userID int64, approved bool) (*models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("Бронь (id = %d) не найдена", bookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}

	item, err := s.items.GetItemByID(ctx, booking.ItemID)
	if err != nil {
		return nil, fmt.Errorf("load item: %w", err)
	}

	if item.OwnerID != userID {
		return nil, notFoundf("Пользователь (id = %d) не является владельцем вещи (id = %d)", userID, item.ID)
	}

	if booking.Status != models.StatusWaiting {
		return nil, validationf("Статус брони отличен от %s", models.StatusWaiting)
	}

	status := models.StatusRejected
	eventType := events.EventBookingRejected
	if approved {
		status = models.StatusApproved
		eventType = events.EventBookingApproved
	}

	err = s.bookings.UpdateBookingStatusFromWaiting(ctx, bookingID, status)
	if errors.Is(err, database.ErrNotWaiting) {
		// Параллельное решение по той же брони выиграло гонку.
		return nil, validationf("Статус брони отличен от %s", models.StatusWaiting)
	}
	if err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	booking.Status = status
	s.publishEvent(eventType, booking)
	return booking, nil
}

// GetBooking видна только автору брони и владельцу вещи.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID int64) (*models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("Бронь (id = %d) не найдена", bookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}

	item, err := s.items.GetItemByID(ctx, booking.ItemID)
	if err != nil {
		return nil, fmt.Errorf("load item: %w", err)
	}

	if userID != booking.BookerID && userID != item.OwnerID {
		return nil, notFoundf("Пользователь (id = %d) не является ни автором бронирования, ни владельцем вещи (id = %d)",
			userID, item.ID)
	}
	return booking, nil
}

// FindUserBookings — брони пользователя как автора, фильтр state, старт по убыванию.
func (s *BookingService) FindUserBookings(ctx context.Context, bookerID int64, state string, from, size int) ([]*models.Booking, error) {
	st, err := s.validateQuery(ctx, bookerID, state, from, size)
	if err != nil {
		return nil, err
	}
	return s.bookings.FindByBooker(ctx, bookerID, st, time.Now(), from, size)
}

// FindOwnerBookings — брони всех вещей пользователя как владельца.
func (s *BookingService) FindOwnerBookings(ctx context.Context, ownerID int64, state string, from, size int) ([]*models.Booking, error) {
	st, err := s.validateQuery(ctx, ownerID, state, from, size)
	if err != nil {
		return nil, err
	}
	return s.bookings.FindByOwner(ctx, ownerID, st, time.Now(), from, size)
}

// OwnerBookingsReport собирает все брони вещей владельца с именами
// вещей и арендаторов для выгрузки в Excel.
func (s *BookingService) OwnerBookingsReport(ctx context.Context, ownerID int64) ([]models.BookingReportRow, error) {
	exists, err := s.users.UserExists(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return nil, notFoundf("Пользователь (id = %d) не найден", ownerID)
	}

	now := time.Now()
	itemNames := make(map[int64]string)
	bookerNames := make(map[int64]string)

	var rows []models.BookingReportRow
	for from := 0; ; from += models.DefaultPageSize {
		page, err := s.bookings.FindByOwner(ctx, ownerID, models.StateAll, now, from, models.DefaultPageSize)
		if err != nil {
			return nil, fmt.Errorf("load owner bookings: %w", err)
		}

		for _, booking := range page {
			itemName, ok := itemNames[booking.ItemID]
			if !ok {
				item, err := s.items.GetItemByID(ctx, booking.ItemID)
				if err != nil {
					return nil, fmt.Errorf("load item: %w", err)
				}
				itemName = item.Name
				itemNames[booking.ItemID] = itemName
			}

			bookerName, ok := bookerNames[booking.BookerID]
			if !ok {
				booker, err := s.users.GetUserByID(ctx, booking.BookerID)
				if err != nil {
					return nil, fmt.Errorf("load booker: %w", err)
				}
				bookerName = booker.Name
				bookerNames[booking.BookerID] = bookerName
			}

			rows = append(rows, models.BookingReportRow{
				BookingID:  booking.ID,
				ItemName:   itemName,
				BookerName: bookerName,
				Start:      booking.Start,
				End:        booking.End,
				Status:     booking.Status,
			})
		}

		if len(page) < models.DefaultPageSize {
			break
		}
	}
	return rows, nil
}

func (s *BookingService) validateQuery(ctx context.Context, userID int64, state string, from, size int) (models.BookingState, error) {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return "", notFoundf("Пользователь (id = %d) не найден", userID)
	}

	st, ok := models.ParseBookingState(state)
	if !ok {
		return "", validationf("Unknown state: %s", state)
	}
	if from < 0 {
		return "", validationf("Параметр from (%d) задан некорректно", from)
	}
	if size <= 0 {
		return "", validationf("Параметр size (%d) задан некорректно", size)
	}
	return st, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    booking.ItemID,
		BookerID:  booking.BookerID,
		Status:    string(booking.Status),
		Start:     booking.Start,
		End:       booking.End,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
