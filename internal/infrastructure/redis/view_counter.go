package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

const viewKeyPrefix = "views:event:"

// ViewCounter はイベント閲覧数を Redis 上で集計する
// 公開イベントの取得ごとに INCR し、ワーカーが定期的にDBへフラッシュする
type ViewCounter struct {
	client *redis.Client
}

// NewViewCounter は新しいViewCounterインスタンスを作成する
func NewViewCounter(client *redis.Client) *ViewCounter {
	return &ViewCounter{client: client}
}

// Hit はイベントの閲覧を1件記録する
func (c *ViewCounter) Hit(ctx context.Context, eventID string) error {
	if err := c.client.Incr(ctx, viewKeyPrefix+eventID).Err(); err != nil {
		return fmt.Errorf("閲覧カウントに失敗: %w", err)
	}
	return nil
}

// Flush は集計済みの閲覧数を取り出してリセットする
// 返り値はイベントIDごとの増分。取り出しは GETDEL でアトミックに行うため
// フラッシュ中の新しいヒットが失われることはない
func (c *ViewCounter) Flush(ctx context.Context) (map[string]int64, error) {
	deltas := make(map[string]int64)

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, viewKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("閲覧カウントの走査に失敗: %w", err)
		}

		for _, key := range keys {
			val, err := c.client.GetDel(ctx, key).Result()
			if err != nil {
				if err == redis.Nil {
					continue
				}
				return nil, fmt.Errorf("閲覧カウントの取得に失敗: %w", err)
			}
			count, err := strconv.ParseInt(val, 10, 64)
			if err != nil || count <= 0 {
				continue
			}
			eventID := strings.TrimPrefix(key, viewKeyPrefix)
			deltas[eventID] += count
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}
	return deltas, nil
}
