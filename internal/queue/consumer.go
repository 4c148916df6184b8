package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer drains the reservation queues and appends one line per event
// to a log file.
type Consumer struct {
	url     string
	queues  []string
	logPath string
	log     *zap.Logger

	mu sync.Mutex // serialises writes to logPath
}

// NewConsumer returns a Consumer reading the given queues.
func NewConsumer(url, logPath string, log *zap.Logger, queues ...string) *Consumer {
	return &Consumer{url: url, queues: queues, logPath: logPath, log: log.Named("consumer")}
}

// Run connects and consumes until ctx is cancelled, reconnecting with
// exponential backoff (capped at 30s) whenever the broker goes away.
func (c *Consumer) Run(ctx context.Context) {
	backoff := time.Second
	for ctx.Err() == nil {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return
			}
			backoff = min(backoff*2, 30*time.Second)
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		c.log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("set QoS failed", zap.Error(err))
	}

	merged := make(chan amqp.Delivery)
	var wg sync.WaitGroup
	for _, q := range c.queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", q, err)
		}
		msgs, err := ch.Consume(q, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", q, err)
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
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			return errors.New("deliveries channel closed")
		case d := <-merged:
			if err := c.handle(d.Body); err != nil {
				c.log.Error("handle message failed", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(body []byte) error {
	var ev ReservationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.ReservationID == "" {
		return errors.New("event without reservation id")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(c.logPath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(c.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	return writeLine(f, ev)
}

// writeLine renders one human-readable line per event.
func writeLine(w io.Writer, ev ReservationEvent) error {
	seats := make([]string, len(ev.Seats))
	for i, s := range ev.Seats {
		seats[i] = strconv.Itoa(s)
	}
	var line string
	switch ev.Type {
	case TypeReservationCreated:
		line = fmt.Sprintf("[%s] Reservation created | reservation_id=%s | user_id=%d | showing_id=%d | movie=%q | room=%q | starts_at=%s | total=%d cents | seats=[%s]\n",
			ev.OccurredAt, ev.ReservationID, ev.UserID, ev.ShowingID, ev.MovieTitle, ev.RoomName, ev.StartsAt, ev.TotalCents, strings.Join(seats, ","))
	default:
		line = fmt.Sprintf("[%s] Reservation cancelled | reservation_id=%s | user_id=%d | showing_id=%d | seats=[%s]\n",
			ev.OccurredAt, ev.ReservationID, ev.UserID, ev.ShowingID, strings.Join(seats, ","))
	}
	if _, err := io.WriteString(w, line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
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
