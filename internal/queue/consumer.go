package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

const maxBackoff = 30 * time.Second

// StartConsumer connects to RabbitMQ, declares the event queues (durable)
// and consumes them until ctx is cancelled.  Each delivery is appended
// to <dir>/events.log as one human readable line.  Broker failures are
// logged and followed by a reconnect with doubling backoff, so the
// function only returns once ctx is done.
func StartConsumer(ctx context.Context, url, dir string) error {
    sink := &EventLog{Dir: dir}
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            zap.L().Warn("event consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            backoff = min(backoff*2, maxBackoff)
            continue
        }
        backoff = time.Second

        err = consumeLoop(ctx, conn, sink)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        zap.L().Warn("event consumer: consume loop ended, reconnecting", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, sink *EventLog) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        zap.L().Warn("event consumer: set QoS failed", zap.Error(err))
    }

    merged := make(chan amqp.Delivery)
    var wg sync.WaitGroup
    for _, name := range []string{ReservationConfirmedQueue, OrderPlacedQueue} {
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", name, err)
        }
        msgs, err := ch.Consume(name, "", false, false, false, false, nil)
        if err != nil {
            return fmt.Errorf("queue consume %s: %w", name, err)
        }
        wg.Add(1)
        go func() {
            defer wg.Done()
            for d := range msgs {
                select {
                case merged <- d:
                case <-ctx.Done():
                    return
                }
            }
        }()
    }
    go func() {
        wg.Wait()
        close(merged)
    }()

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-merged:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := sink.Handle(d.RoutingKey, d.Body); err != nil {
                zap.L().Error("event consumer: handle message failed", zap.String("queue", d.RoutingKey), zap.Error(err))
                _ = d.Nack(false, false) // reject without requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// EventLog appends decoded events to Dir/events.log.
type EventLog struct {
    Dir string

    mu sync.Mutex
}

// Handle decodes body according to the queue it came from and appends
// one line to the log file.  Unknown queues and malformed bodies are
// reported as errors.
func (l *EventLog) Handle(queue string, body []byte) error {
    line, err := formatEvent(queue, body)
    if err != nil {
        return err
    }
    l.mu.Lock()
    defer l.mu.Unlock()
    if err := os.MkdirAll(l.Dir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", l.Dir, err)
    }
    f, err := os.OpenFile(filepath.Join(l.Dir, "events.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func formatEvent(queue string, body []byte) (string, error) {
    switch queue {
    case ReservationConfirmedQueue:
        var ev ReservationConfirmedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        return fmt.Sprintf("[%s] Reservation confirmed | reservation_id=%s | member_id=%s | branch=%q | people=%d | at=%s\n",
            ev.ConfirmedAt, ev.ReservationID, ev.MemberID, ev.BranchName, ev.People, ev.ReservedAt), nil
    case OrderPlacedQueue:
        var ev OrderPlacedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        if ev.CustomizedOrderID != "" {
            return fmt.Sprintf("[%s] Customized order placed | order_id=%s | member_id=%s | type=%s | concentration=%d\n",
                ev.PlacedAt, ev.CustomizedOrderID, ev.MemberID, ev.Type, ev.Concentration), nil
        }
        return fmt.Sprintf("[%s] Order placed | order_ids=[%s] | member_id=%s | branch_id=%s | type=%s\n",
            ev.PlacedAt, strings.Join(ev.OrderIDs, ","), ev.MemberID, ev.BranchID, ev.Type), nil
    default:
        return "", fmt.Errorf("unknown queue %q", queue)
    }
}
