package audit

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"pos-system/internal/common/logger"
	"pos-system/internal/connections/rabbitmq"
)

const (
	ActionLogin                = "login"
	ActionBillPrinted          = "bill_printed"
	ActionKitchenTicketPrinted = "kitchen_ticket_printed"
	ActionPaymentConfirmed     = "payment_confirmed"
	ActionPaymentFailed        = "payment_failed"
)

// Entry is the wire shape of one audit record.
type Entry struct {
	Actor   string         `json:"actor"`
	Action  string         `json:"action"`
	Details map[string]any `json:"details,omitempty"`
	At      time.Time      `json:"at"`
}

// Recorder appends audit entries. Implementations are fire-and-forget: a
// failed append must never fail the business operation that triggered it.
type Recorder interface {
	Record(ctx context.Context, actor, action string, details map[string]any)
}

type RabbitRecorder struct {
	client *rabbitmq.Client
	lg     *logger.Logger
}

func NewRabbitRecorder(client *rabbitmq.Client, lg *logger.Logger) *RabbitRecorder {
	return &RabbitRecorder{client: client, lg: lg}
}

func (r *RabbitRecorder) Record(ctx context.Context, actor, action string, details map[string]any) {
	body, err := json.Marshal(Entry{Actor: actor, Action: action, Details: details, At: time.Now().UTC()})
	if err != nil {
		r.lg.Error("audit_marshal_failed", err, map[string]any{"action": action})
		return
	}

	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	err = r.client.Publish(pctx, rabbitmq.AuditExchange, "", body, amqp.Table{"x-source": "pos"})
	if err != nil {
		// log and swallow: audit must not block the caller
		r.lg.Error("audit_publish_failed", err, map[string]any{"actor": actor, "action": action})
	}
}

// NopRecorder discards entries; used in tests.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, string, string, map[string]any) {}
