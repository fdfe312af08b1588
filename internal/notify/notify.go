package notify

import (
	"context"

	"go.uber.org/zap"
)

type Kind string

const (
	KindInvite        Kind = "invite"
	KindPasswordReset Kind = "password_reset"
)

// Message — событие для внешнего почтового воркера. Само письмо собирает и
// отправляет он; здесь только полезная нагрузка.
type Message struct {
	ID   string            `json:"id"`
	To   string            `json:"to"`
	Kind Kind              `json:"kind"`
	Data map[string]string `json:"data,omitempty"`
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LogNotifier — заглушка для окружений без NATS: событие уходит только в лог.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, msg Message) error {
	zap.S().Infow("notification dispatched to log only",
		"id", msg.ID, "to", msg.To, "kind", msg.Kind)
	return nil
}
