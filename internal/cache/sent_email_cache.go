package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const sentEmailsKey = "r2d2:sent_emails"

// SentEmailCache indexes SENT record ids by send time so the newest can be paged
// without scanning email_logs.
type SentEmailCache interface {
	AddSentEmail(ctx context.Context, id int64, sentAt time.Time) error
	// Returns ids newest first and the total count.
	GetSentEmailIDs(ctx context.Context, page, pageSize int) ([]int64, int64, error)
}

type redisSentEmailCache struct {
	client *redis.Client
}

func NewSentEmailCache(client *redis.Client) SentEmailCache {
	return &redisSentEmailCache{client: client}
}

func (r *redisSentEmailCache) AddSentEmail(ctx context.Context, id int64, sentAt time.Time) error {
	return r.client.ZAdd(ctx, sentEmailsKey, redis.Z{
		Score:  float64(sentAt.Unix()),
		Member: strconv.FormatInt(id, 10),
	}).Err()
}

func (r *redisSentEmailCache) GetSentEmailIDs(ctx context.Context, page, pageSize int) ([]int64, int64, error) {
	total, err := r.client.ZCard(ctx, sentEmailsKey).Result()
	if err != nil {
		return nil, 0, err
	}

	start := int64((page - 1) * pageSize)
	stop := start + int64(pageSize) - 1

	members, err := r.client.ZRevRange(ctx, sentEmailsKey, start, stop).Result()
	if err != nil {
		return nil, 0, err
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, total, nil
}
