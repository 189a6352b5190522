package database

import "errors"

var (
	// ErrNotFound — запрошенной записи нет в хранилище.
	ErrNotFound = errors.New("record not found")

	// ErrEmailTaken — email уже занят другим пользователем.
	ErrEmailTaken = errors.New("email already taken")

	// ErrOverlap — пересечение с существующей бронью обнаружено внутри транзакции.
	ErrOverlap = errors.New("booking dates overlap")

	// ErrNotWaiting — бронь уже покинула статус WAITING.
	ErrNotWaiting = errors.New("booking is not waiting")
)
