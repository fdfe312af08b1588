package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSNotifier публикует уведомления в JetStream; доставку писем делает
// отдельный воркер-подписчик.
type NATSNotifier struct {
	js            nats.JetStreamContext
	inviteSubject string
	resetSubject  string
}

func NewNATSNotifier(url, inviteSubject, resetSubject string) (*NATSNotifier, error) {
	nc, err := nats.Connect(url, nats.Name("portfolio-backend"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	return &NATSNotifier{
		js:            js,
		inviteSubject: inviteSubject,
		resetSubject:  resetSubject,
	}, nil
}

func (n *NATSNotifier) Send(_ context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	subject := n.inviteSubject
	if msg.Kind == KindPasswordReset {
		subject = n.resetSubject
	}

	// MsgId даёт дедупликацию на стороне JetStream при ретраях.
	if _, err := n.js.Publish(subject, payload, nats.MsgId(msg.ID)); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}
