package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/storefront-console/internal/domain"
)

// ListenResilient: "живучая" подписка на канал ленты уведомлений.
// Переподключается после обрыва, битые сообщения пропускает. Возвращается по ctx.Done().
func ListenResilient(
	ctx context.Context,
	rdb *redis.Client,
	logger *zap.Logger,
	channel string,
	onMessage func(rec domain.AuditRecord),
) {
	for {
		pubsub := rdb.Subscribe(ctx, channel)

		// Проверка успешности подписки
		if _, err := pubsub.Receive(ctx); err != nil {
			pubsub.Close()
			if ctx.Err() != nil {
				return
			}
			logger.Error("failed to subscribe", zap.String("chan", channel), zap.Error(err))
			if !sleep(ctx, 5*time.Second) {
				return
			}
			continue
		}
		logger.Info("subscribed", zap.String("chan", channel))

		ch := pubsub.Channel()

	loop:
		for {
			select {
			case <-ctx.Done():
				pubsub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break loop // Канал закрыт, идем на переподключение
				}
				rec, err := decode(msg.Payload)
				if err != nil {
					logger.Error("invalid feed payload", zap.String("payload", msg.Payload), zap.Error(err))
					continue
				}
				onMessage(rec)
			}
		}

		pubsub.Close()
		if !sleep(ctx, time.Second) {
			return
		}
	}
}

func decode(payload string) (domain.AuditRecord, error) {
	var rec domain.AuditRecord
	err := json.Unmarshal([]byte(payload), &rec)
	return rec, err
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
