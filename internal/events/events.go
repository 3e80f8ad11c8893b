package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

const (
	DefaultSubject = "catalog.category.values"
	queueGroup     = "category-values"
)

// CategoryValuesAdded announces attribute values observed on a product that
// its category may not know about yet.
type CategoryValuesAdded struct {
	CategoryID    int64    `json:"category_id"`
	AttributeName string   `json:"attribute_name"`
	NewValues     []string `json:"new_values"`
}

type Notifier interface {
	Notify(ctx context.Context, n CategoryValuesAdded) error
}

type categoryAppender interface {
	AppendVariationValues(id int64, name string, values []string) ([]string, error)
}

// Recorder applies notifications straight to the category store.
type Recorder struct {
	Categories categoryAppender
}

func (r Recorder) Notify(_ context.Context, n CategoryValuesAdded) error {
	_, err := r.Categories.AppendVariationValues(n.CategoryID, n.AttributeName, n.NewValues)
	return err
}

type publisher interface {
	Publish(subject string, data []byte) error
}

// Publisher sends notifications to a NATS subject for an out-of-process
// consumer.
type Publisher struct {
	conn    publisher
	subject string
}

func NewPublisher(conn publisher, subject string) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{conn: conn, subject: subject}
}

func (p *Publisher) Notify(ctx context.Context, n CategoryValuesAdded) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}

	return p.conn.Publish(p.subject, payload)
}

// Handler decodes a NATS message and passes it to next. Errors go to onError
// since NATS has nobody to return them to.
func Handler(next Notifier, onError func(error)) nats.MsgHandler {
	return func(msg *nats.Msg) {
		var n CategoryValuesAdded

		if err := json.Unmarshal(msg.Data, &n); err != nil {
			onError(fmt.Errorf("decode %s: %w", msg.Subject, err))
			return
		}

		if err := next.Notify(context.Background(), n); err != nil {
			onError(fmt.Errorf("category %d %q: %w", n.CategoryID, n.AttributeName, err))
		}
	}
}

// Subscribe joins the category queue group on subject so that each
// notification is applied by exactly one instance.
func Subscribe(conn *nats.Conn, subject string, next Notifier, onError func(error)) (*nats.Subscription, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	return conn.QueueSubscribe(subject, queueGroup, Handler(next, onError))
}
