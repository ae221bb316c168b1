package infra

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "storefront"
)

// Каналы Pub/Sub (события)
const (
	// RedisChanNotifications: каждая успешно записанная запись журнала.
	RedisChanNotifications = RedisNamespace + ":notifications:feed"
)
