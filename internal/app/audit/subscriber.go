package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"pos-system/internal/common/logger"
	"pos-system/internal/connections/rabbitmq"
)

// Subscriber drains the audit queue into the audit_log table. Runs as its
// own --mode so the POS API never waits on audit persistence.
type Subscriber struct {
	client *rabbitmq.Client
	pool   *pgxpool.Pool
	lg     *logger.Logger
}

func NewSubscriber(client *rabbitmq.Client, pool *pgxpool.Pool, lg *logger.Logger) *Subscriber {
	return &Subscriber{client: client, pool: pool, lg: lg}
}

func (s *Subscriber) Run(ctx context.Context) error {
	msgs, err := s.client.Consume(rabbitmq.AuditQueue, "audit-subscriber", 10)
	if err != nil {
		return err
	}
	s.lg.Info("audit_subscriber_started", map[string]any{"queue": rabbitmq.AuditQueue})

	for {
		select {
		case <-ctx.Done():
			s.lg.Info("audit_subscriber_stopped", nil)
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			var e Entry
			if err := json.Unmarshal(d.Body, &e); err != nil {
				// malformed entry, nothing to retry
				_ = d.Nack(false, false)
				s.lg.Error("audit_entry_malformed", err, nil)
				continue
			}
			details, _ := json.Marshal(e.Details)
			if details == nil {
				details = []byte("{}")
			}
			_, err := s.pool.Exec(ctx, `
				INSERT INTO audit_log (actor, action, details, created_at)
				VALUES ($1, $2, $3, $4)
			`, e.Actor, e.Action, details, e.At)
			if err != nil {
				_ = d.Nack(false, true)
				s.lg.Error("audit_insert_failed", err, map[string]any{"action": e.Action})
				continue
			}
			_ = d.Ack(false)
		}
	}
}
