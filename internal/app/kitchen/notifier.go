package kitchen

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"pos-system/internal/common/logger"
	"pos-system/internal/connections/rabbitmq"
)

// StatusChange is fanned out on every kitchen transition so boards and
// pagers can react without polling.
type StatusChange struct {
	ItemID    string    `json:"item_id"`
	OrderID   string    `json:"order_id"`
	TableNo   string    `json:"table_no"`
	Name      string    `json:"name"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedBy string    `json:"changed_by"`
	Timestamp time.Time `json:"timestamp"`
}

type Notifier interface {
	StatusChanged(ctx context.Context, change StatusChange)
}

type RabbitNotifier struct {
	client *rabbitmq.Client
	lg     *logger.Logger
}

func NewRabbitNotifier(client *rabbitmq.Client, lg *logger.Logger) *RabbitNotifier {
	return &RabbitNotifier{client: client, lg: lg}
}

func (n *RabbitNotifier) StatusChanged(ctx context.Context, change StatusChange) {
	body, err := json.Marshal(change)
	if err != nil {
		n.lg.Error("kitchen_notify_marshal_failed", err, nil)
		return
	}
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	err = n.client.Publish(pctx, rabbitmq.KitchenExchange, "", body, amqp.Table{"x-source": "kitchen"})
	if err != nil {
		// notification loss is acceptable; the transition already persisted
		n.lg.Error("kitchen_notify_failed", err, map[string]any{"item_id": change.ItemID})
	}
}

type NopNotifier struct{}

func (NopNotifier) StatusChanged(context.Context, StatusChange) {}
