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

// ItemInput — входные поля создания/частичного обновления вещи. Nil Available
// при создании — ошибка, при обновлении — "не менять".
type ItemInput struct {
	Name        string
	Description string
	Available   *bool
	RequestID   int64
}

type ItemService struct {
	items    domain.ItemRepository
	users    domain.UserRepository
	bookings domain.BookingRepository
	comments domain.CommentRepository
	cache    domain.SearchCache
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewItemService(
	items domain.ItemRepository,
	users domain.UserRepository,
	bookings domain.BookingRepository,
	comments domain.CommentRepository,
	cache domain.SearchCache,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *ItemService {
	return &ItemService{
		items:    items,
		users:    users,
		bookings: bookings,
		comments: comments,
		cache:    cache,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *ItemService) SaveItem(ctx context.Context, input ItemInput, ownerID int64) (*models.Item, error) {
	if err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}
	if input.Available == nil {
		return nil, validationf("Не передан статус вещи")
	}

	item := &models.Item{
		Name:        input.Name,
		Description: input.Description,
		Available:   *input.Available,
		OwnerID:     ownerID,
		RequestID:   input.RequestID,
	}
	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}

	s.invalidateSearch(ctx)
	return item, nil
}

func (s *ItemService) UpdateItem(ctx context.Context, itemID int64, input ItemInput, userID int64) (*models.Item, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	item, err := s.items.GetItemByID(ctx, itemID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("Вещь (id = %d) не найдена", itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("load item: %w", err)
	}
	if item.OwnerID != userID {
		return nil, notFoundf("Вещь (id = %d) не найдена у пользователя (id = %d)", itemID, userID)
	}

	if input.Name != "" {
		item.Name = input.Name
	}
	if input.Description != "" {
		item.Description = input.Description
	}
	if input.Available != nil {
		item.Available = *input.Available
	}

	if err := s.items.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	s.invalidateSearch(ctx)
	return item, nil
}

// GetItem возвращает вещь с комментариями; прошлую и ближайшую одобренные
// брони видит только владелец.
func (s *ItemService) GetItem(ctx context.Context, itemID, userID int64) (*models.ItemDetails, error) {
	item, err := s.items.GetItemByID(ctx, itemID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("Вещь (id = %d) не найдена", itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("load item: %w", err)
	}
	return s.itemDetails(ctx, item, userID)
}

func (s *ItemService) DeleteItem(ctx context.Context, itemID, userID int64) (bool, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return false, err
	}

	_, err := s.items.GetItemByID(ctx, itemID)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load item: %w", err)
	}

	if err := s.items.DeleteItem(ctx, itemID); err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	s.invalidateSearch(ctx)
	return true, nil
}

func (s *ItemService) FindUserItems(ctx context.Context, userID int64) ([]*models.ItemDetails, error) {
	items, err := s.items.GetItemsByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user items: %w", err)
	}

	details := make([]*models.ItemDetails, 0, len(items))
	for _, item := range items {
		d, err := s.itemDetails(ctx, item, userID)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

// SearchItems ищет доступные вещи по тексту; пустой запрос дает пустой список.
func (s *ItemService) SearchItems(ctx context.Context, text string) ([]*models.Item, error) {
	if text == "" {
		return []*models.Item{}, nil
	}

	if s.cache != nil {
		if items, ok, err := s.cache.GetSearch(ctx, text); err == nil && ok {
			return items, nil
		}
	}

	items, err := s.items.SearchItems(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetSearch(ctx, text, items); err != nil {
			s.logger.Warn().Err(err).Str("text", text).Msg("search cache write failed")
		}
	}
	return items, nil
}

// AddComment разрешен только после завершенной одобренной брони этой вещи.
func (s *ItemService) AddComment(ctx context.Context, itemID, authorID int64, text string) (*models.Comment, error) {
	author, err := s.users.GetUserByID(ctx, authorID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("Пользователь (id = %d) не найден", authorID)
	}
	if err != nil {
		return nil, fmt.Errorf("load author: %w", err)
	}

	if _, err := s.items.GetItemByID(ctx, itemID); errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("Вещь (id = %d) не найдена", itemID)
	} else if err != nil {
		return nil, fmt.Errorf("load item: %w", err)
	}

	_, err = s.bookings.FindQualifyingBooking(ctx, itemID, authorID, time.Now())
	if errors.Is(err, database.ErrNotFound) {
		return nil, validationf("Пользователь (id = %d) не брал вещь (id = %d) в аренду", authorID, itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("find qualifying booking: %w", err)
	}

	comment := &models.Comment{
		Text:       text,
		ItemID:     itemID,
		AuthorID:   authorID,
		AuthorName: author.Name,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("save comment: %w", err)
	}

	if s.eventBus != nil {
		_ = s.eventBus.PublishJSON(events.EventCommentAdded, comment)
	}
	return comment, nil
}

func (s *ItemService) requireUser(ctx context.Context, userID int64) error {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return notFoundf("Пользователь (id = %d) не найден", userID)
	}
	return nil
}

func (s *ItemService) itemDetails(ctx context.Context, item *models.Item, userID int64) (*models.ItemDetails, error) {
	comments, err := s.comments.GetItemComments(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}

	details := &models.ItemDetails{Item: *item, Comments: make([]models.Comment, 0, len(comments))}
	for _, c := range comments {
		details.Comments = append(details.Comments, *c)
	}

	if item.OwnerID != userID {
		return details, nil
	}

	now := time.Now()
	last, err := s.bookings.LastItemBooking(ctx, item.ID, now)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("load last booking: %w", err)
	}
	next, err := s.bookings.NextItemBooking(ctx, item.ID, now)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("load next booking: %w", err)
	}
	details.LastBooking = last
	details.NextBooking = next
	return details, nil
}

func (s *ItemService) invalidateSearch(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSearch(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("search cache invalidation failed")
	}
}
