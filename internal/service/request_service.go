package service

import (
	"context"
	"errors"
	"fmt"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	requests domain.RequestRepository
	items    domain.ItemRepository
	users    domain.UserRepository
	logger   *zerolog.Logger
}

func NewRequestService(
	requests domain.RequestRepository,
	items domain.ItemRepository,
	users domain.UserRepository,
	logger *zerolog.Logger,
) *RequestService {
	return &RequestService{requests: requests, items: items, users: users, logger: logger}
}

func (s *RequestService) SaveItemRequest(ctx context.Context, requestorID int64, description string) (*models.ItemRequest, error) {
	if err := s.requireUser(ctx, requestorID); err != nil {
		return nil, err
	}
	if description == "" {
		return nil, validationf("Не передано описание запроса")
	}

	request := &models.ItemRequest{Description: description, RequestorID: requestorID}
	if err := s.requests.CreateItemRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("save item request: %w", err)
	}
	return request, nil
}

// FindUserItemRequests — собственные запросы пользователя со списком вещей,
// добавленных по каждому, свежие первыми.
func (s *RequestService) FindUserItemRequests(ctx context.Context, userID int64, from, size int) ([]*models.ItemRequestDetails, error) {
	if err := s.validateQuery(ctx, userID, from, size); err != nil {
		return nil, err
	}

	requests, err := s.requests.GetUserItemRequests(ctx, userID, from, size)
	if err != nil {
		return nil, fmt.Errorf("load user item requests: %w", err)
	}
	return s.withItems(ctx, requests)
}

// FindAllItemRequests — чужие запросы, постранично.
func (s *RequestService) FindAllItemRequests(ctx context.Context, userID int64, from, size int) ([]*models.ItemRequestDetails, error) {
	if err := s.validateQuery(ctx, userID, from, size); err != nil {
		return nil, err
	}

	requests, err := s.requests.GetOtherItemRequests(ctx, userID, from, size)
	if err != nil {
		return nil, fmt.Errorf("load item requests: %w", err)
	}
	return s.withItems(ctx, requests)
}

func (s *RequestService) GetItemRequest(ctx context.Context, requestID, userID int64) (*models.ItemRequestDetails, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	request, err := s.requests.GetItemRequest(ctx, requestID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("Запрос (id = %d) не найден", requestID)
	}
	if err != nil {
		return nil, fmt.Errorf("load item request: %w", err)
	}

	details, err := s.withItems(ctx, []*models.ItemRequest{request})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

func (s *RequestService) validateQuery(ctx context.Context, userID int64, from, size int) error {
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	if from < 0 {
		return validationf("Параметр from (%d) задан некорректно", from)
	}
	if size <= 0 {
		return validationf("Параметр size (%d) задан некорректно", size)
	}
	return nil
}

func (s *RequestService) requireUser(ctx context.Context, userID int64) error {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return notFoundf("Пользователь (id = %d) не найден", userID)
	}
	return nil
}

func (s *RequestService) withItems(ctx context.Context, requests []*models.ItemRequest) ([]*models.ItemRequestDetails, error) {
	details := make([]*models.ItemRequestDetails, 0, len(requests))
	for _, request := range requests {
		items, err := s.items.GetItemsByRequest(ctx, request.ID)
		if err != nil {
			return nil, fmt.Errorf("load request items: %w", err)
		}

		d := &models.ItemRequestDetails{Request: *request, Items: make([]models.Item, 0, len(items))}
		for _, item := range items {
			d.Items = append(d.Items, *item)
		}
		details = append(details, d)
	}
	return details, nil
}
