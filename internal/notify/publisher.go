// Package notify hands finished monthly reports to the delivery side over
// RabbitMQ. Without a broker the LogPublisher only records them.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

type Publisher interface {
	PublishMonthlyReport(ctx context.Context, msg *MonthlyReport) error
	Close() error
}

type AMQPPublisher struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	log          zerolog.Logger
}

func NewAMQPPublisher(url, exchangeName, queueName string, log zerolog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p := &AMQPPublisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
		log:          log,
	}
	if err := p.setup(); err != nil {
		p.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return p, nil
}

// setup declares a durable direct exchange and a queue bound by its own name.
func (p *AMQPPublisher) setup() error {
	if err := p.channel.ExchangeDeclare(p.exchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := p.channel.QueueDeclare(p.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := p.channel.QueueBind(p.queueName, p.queueName, p.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) PublishMonthlyReport(ctx context.Context, msg *MonthlyReport) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchangeName, p.queueName, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	p.log.Info().
		Uint("report_id", msg.ReportID).
		Uint("user_id", msg.UserID).
		Str("period", msg.Period).
		Str("queue", p.queueName).
		Msg("published monthly report")
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// LogPublisher is used when no broker is configured.
type LogPublisher struct {
	Log zerolog.Logger
}

func (p LogPublisher) PublishMonthlyReport(_ context.Context, msg *MonthlyReport) error {
	p.Log.Info().
		Uint("report_id", msg.ReportID).
		Uint("user_id", msg.UserID).
		Str("period", msg.Period).
		Float64("balance", msg.Balance).
		Msg("monthly report ready (no broker configured)")
	return nil
}

func (LogPublisher) Close() error { return nil }
