package infra

import "fmt"

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "verigate"
)

// Ключи (состояние)
const (
	// RedisKeyDailyResetLock — префикс лока «сброс уже выполнен сегодня».
	// Полный ключ строится через GetDailyResetLockKey.
	RedisKeyDailyResetLock = RedisNamespace + ":limits:daily-reset:"
)

// Каналы Pub/Sub (события)
const (
	// RedisChanDecisions — канал для трансляции решений по заявкам
	// (подписчики: фронтовые сессии, которые ждут исход подтверждения).
	RedisChanDecisions = RedisNamespace + ":verifications:decisions"
)

// GetDailyResetLockKey строит ключ лока для конкретной даты (UTC, формат 2006-01-02).
func GetDailyResetLockKey(day string) string {
	return fmt.Sprintf("%s%s", RedisKeyDailyResetLock, day)
}
