package repository

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/support-tickets/internal/domain"
)

// cachedTicketRepository is a read-through cache over TicketRepository.
// Cache failures never fail the request; they fall through to postgres.
type cachedTicketRepository struct {
	inner  TicketRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedTicketRepository wraps repo with a Redis read-through cache.
func NewCachedTicketRepository(repo TicketRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) TicketRepository {
	if client == nil {
		return repo
	}
	return &cachedTicketRepository{inner: repo, client: client, ttl: ttl, logger: logger}
}

func ticketCacheKey(id int64) string {
	return "ticket:" + strconv.FormatInt(id, 10)
}

func (r *cachedTicketRepository) Save(ctx context.Context, ticket *domain.Ticket) error {
	if err := r.inner.Save(ctx, ticket); err != nil {
		return err
	}
	r.invalidate(ctx, ticket.ID)
	return nil
}

func (r *cachedTicketRepository) FindByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	if raw, err := r.client.Get(ctx, ticketCacheKey(id)).Bytes(); err == nil {
		var ticket domain.Ticket
		if err := json.Unmarshal(raw, &ticket); err == nil {
			return &ticket, nil
		}
		r.invalidate(ctx, id)
	}

	ticket, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(ticket); err == nil {
		if err := r.client.Set(ctx, ticketCacheKey(id), raw, r.ttl).Err(); err != nil {
			r.logger.Debug("ticket cache set failed", zap.Int64("ticket_id", id), zap.Error(err))
		}
	}
	return ticket, nil
}

func (r *cachedTicketRepository) Delete(ctx context.Context, id int64) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *cachedTicketRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Ticket, error) {
	return r.inner.ListByUser(ctx, userID, limit, offset)
}

func (r *cachedTicketRepository) invalidate(ctx context.Context, id int64) {
	if err := r.client.Del(ctx, ticketCacheKey(id)).Err(); err != nil {
		r.logger.Debug("ticket cache invalidation failed", zap.Int64("ticket_id", id), zap.Error(err))
	}
}
