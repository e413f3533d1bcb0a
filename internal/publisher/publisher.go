// Package publisher publishes domain events to RabbitMQ.  Errors are
// logged and returned so callers can ignore failures without
// interrupting the main request flow.
package publisher

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    q "github.com/iliyamo/beverage-reservation/internal/queue"
)

// AMQP publishes events to durable queues on the default exchange.  A
// connection is dialled per publish; event volume is one message per
// committed reservation or order.
type AMQP struct {
    URL string
}

// NewAMQP returns a publisher for the broker at url.
func NewAMQP(url string) *AMQP { return &AMQP{URL: url} }

// PublishReservationConfirmed sends ev to the reservation.confirmed queue.
func (p *AMQP) PublishReservationConfirmed(ctx context.Context, ev q.ReservationConfirmedEvent) error {
    return p.publish(ctx, q.ReservationConfirmedQueue, ev)
}

// PublishOrderPlaced sends ev to the order.placed queue.
func (p *AMQP) PublishOrderPlaced(ctx context.Context, ev q.OrderPlacedEvent) error {
    return p.publish(ctx, q.OrderPlacedQueue, ev)
}

func (p *AMQP) publish(ctx context.Context, queue string, event any) error {
    pub, err := message(event)
    if err != nil {
        zap.L().Error("rabbitmq: marshal event failed", zap.String("queue", queue), zap.Error(err))
        return err
    }
    conn, err := dial(ctx, p.URL)
    if err != nil {
        zap.L().Warn("rabbitmq: dial failed", zap.Error(err))
        return err
    }
    defer func() { _ = conn.Close() }()

    // Channel open and queue declare do not take a context; closing the
    // connection when ctx ends unblocks them.
    done := make(chan struct{})
    defer close(done)
    go func() {
        select {
        case <-ctx.Done():
            _ = conn.Close()
        case <-done:
        }
    }()

    ch, err := conn.Channel()
    if err != nil {
        zap.L().Warn("rabbitmq: channel open failed", zap.Error(err))
        return err
    }
    defer func() { _ = ch.Close() }()

    // Idempotent; durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
        zap.L().Warn("rabbitmq: queue declare failed", zap.String("queue", queue), zap.Error(err))
        return err
    }
    if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
        zap.L().Warn("rabbitmq: publish failed", zap.String("queue", queue), zap.Error(err))
        return err
    }
    return nil
}

// dialTimeout bounds the TCP connect and AMQP handshake when ctx has no
// deadline of its own.
const dialTimeout = 5 * time.Second

// dial connects with a handshake deadline taken from ctx, so a broker
// that accepts the connection but never speaks cannot stall the caller
// past it.
func dial(ctx context.Context, url string) (*amqp.Connection, error) {
    if err := ctx.Err(); err != nil {
        return nil, err
    }
    timeout := dialTimeout
    if deadline, ok := ctx.Deadline(); ok {
        timeout = time.Until(deadline)
        if timeout <= 0 {
            return nil, context.DeadlineExceeded
        }
    }
    return amqp.DialConfig(url, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(timeout),
    })
}

func message(event any) (amqp.Publishing, error) {
    body, err := json.Marshal(event)
    if err != nil {
        return amqp.Publishing{}, err
    }
    return amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }, nil
}

// Nop discards every event.  It is used when no broker is configured.
type Nop struct{}

func (Nop) PublishReservationConfirmed(context.Context, q.ReservationConfirmedEvent) error { return nil }
func (Nop) PublishOrderPlaced(context.Context, q.OrderPlacedEvent) error                 { return nil }
