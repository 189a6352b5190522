package models

const (
	// DefaultPageSize размер страницы списков по умолчанию
	DefaultPageSize = 20

	// SearchCacheTTL время жизни кэша результатов поиска в секундах
	SearchCacheTTL = 5 * 60

	// RateLimitRPS запросов в секунду на клиента
	RateLimitRPS = 20

	// RateLimitBurst допустимый всплеск запросов
	RateLimitBurst = 40
)
