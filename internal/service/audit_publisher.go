// Package service provides integrations with external systems that sit
// beside the request path.  Errors are logged and returned so callers can
// ignore failures without interrupting the main request flow.
package service

import (
    "context"
    "encoding/json"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/glossline/glossline/internal/queue"
)

// AuditPublisher publishes AuditEvents to the durable audit.events queue.
// The zero value is usable; the broker URL is resolved per publish so a
// broker restart does not wedge a long-lived connection.
type AuditPublisher struct{}

func NewAuditPublisher() *AuditPublisher { return &AuditPublisher{} }

// Publish sends one event to the audit.events queue.  It never panics; any
// error is logged and returned so the caller can choose to ignore it —
// auditing must not fail the privileged operation it records.  Messages are
// marked persistent so they survive broker restarts.
func (p *AuditPublisher) Publish(ctx context.Context, ev queue.AuditEvent) error {
    if ev.OccurredAt == "" {
        ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
    }

    conn, err := amqp.Dial(queue.BrokerURL())
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent).  Durable so messages survive
    // broker restarts.
    if _, err := ch.QueueDeclare("audit.events", true, false, false, false, nil); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }

    if err := ch.PublishWithContext(ctx,
        "",             // default exchange
        "audit.events", // routing key = queue name
        false,          // mandatory
        false,          // immediate
        pub,
    ); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}
