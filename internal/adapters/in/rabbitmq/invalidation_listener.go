package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suchimauz/clinic-availability-engine/internal/config"
	"github.com/suchimauz/clinic-availability-engine/internal/core/ports/in"
	"github.com/suchimauz/clinic-availability-engine/internal/core/ports/out"
)

const (
	declareAttempts = 3
	declareDelay    = 500 * time.Millisecond
)

type InvalidationMessage struct {
	ClinicianID string `json:"clinicianId"`
}

// InvalidationListener сбрасывает кэш слотов при изменении записей,
// исключений, блокировок и расписаний врачей
type InvalidationListener struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	useCase in.SlotGeneratorUseCase
	cfg     *config.Config
	logger  out.LoggerPort
}

func NewInvalidationListener(useCase in.SlotGeneratorUseCase, cfg *config.Config, logger out.LoggerPort) (*InvalidationListener, error) {
	logger = logger.WithModule("InvalidationListener")

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Error("rabbitmq.connect.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("rabbitmq.connect.failed: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("rabbitmq.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("rabbitmq.channel.failed: %w", err)
	}

	return &InvalidationListener{
		conn:    conn,
		channel: channel,
		useCase: useCase,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

func (l *InvalidationListener) Start(ctx context.Context) error {
	// Проверяем контекст
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	exchangeName := l.cfg.RabbitMQ.Exchange
	queueName := l.cfg.RabbitMQ.Queue
	bindingKey := l.cfg.RabbitMQ.BindingKey

	// Объявляем обменник, если его нет
	err := l.retry("rabbitmq.exchange_declare", out.LogFields{"exchange": exchangeName}, func() error {
		return l.channel.ExchangeDeclare(
			exchangeName, // имя обменника
			"topic",      // тип обменника
			true,         // durable
			false,        // auto-delete
			false,        // internal
			false,        // no-wait
			nil,          // аргументы
		)
	})
	if err != nil {
		return err
	}

	var queue amqp.Queue
	err = l.retry("rabbitmq.queue_declare", out.LogFields{"queue": queueName}, func() error {
		var declareErr error
		queue, declareErr = l.channel.QueueDeclare(
			queueName,
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		return declareErr
	})
	if err != nil {
		return err
	}

	// Привязываем очередь к обменнику
	err = l.retry("rabbitmq.queue_bind", out.LogFields{"queue": queueName, "binding": bindingKey}, func() error {
		return l.channel.QueueBind(
			queue.Name,   // имя очереди
			bindingKey,   // ключ привязки
			exchangeName, // имя обменника
			false,        // no-wait
			nil,          // аргументы
		)
	})
	if err != nil {
		return err
	}

	msgs, err := l.channel.Consume(
		queue.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		l.closeConnection("consume failed: " + err.Error())
		return fmt.Errorf("rabbitmq.consume.failed: %w", err)
	}

	go l.consume(ctx, msgs)

	l.logger.Info("rabbitmq.listener.started", out.LogFields{
		"queue":    queue.Name,
		"exchange": exchangeName,
		"binding":  bindingKey,
	})

	return nil
}

func (l *InvalidationListener) Stop() error {
	if l == nil || l.channel == nil {
		return nil
	}

	if err := l.channel.Close(); err != nil {
		return err
	}
	return l.conn.Close()
}

func (l *InvalidationListener) consume(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				l.logger.Warn("rabbitmq.listener.channel_closed", out.LogFields{})
				return
			}
			l.handleDelivery(ctx, msg)
		}
	}
}

// handleDelivery: битые сообщения подтверждаем и пишем в лог, чтобы они не крутились в очереди.
// Ошибки обработки возвращаем в очередь.
func (l *InvalidationListener) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	err := l.processMessage(ctx, msg.RoutingKey, msg.Body)
	switch {
	case err == nil:
		msg.Ack(false)
	case errors.Is(err, errMalformedMessage):
		l.logger.Warn("rabbitmq.message.malformed", out.LogFields{
			"routingKey": msg.RoutingKey,
			"error":      err.Error(),
		})
		msg.Ack(false)
	default:
		l.logger.Error("rabbitmq.message.failed", out.LogFields{
			"routingKey": msg.RoutingKey,
			"error":      err.Error(),
		})
		msg.Nack(false, true) // requeue message
	}
}

func (l *InvalidationListener) processMessage(ctx context.Context, routingKey string, body []byte) error {
	key, err := parseRoutingKey(routingKey)
	if err != nil {
		return err
	}

	if key.Action != ActionInvalidate {
		return fmt.Errorf("%w: unsupported action %q", errMalformedMessage, key.Action)
	}

	// Если поменялось что-то глобальное, то нужно очистить весь кэш слотов
	if key.ResourceType == ResourceTypeAll {
		if err := l.useCase.InvalidateAllSlots(ctx); err != nil {
			return err
		}
		l.logger.Info("_all_.message.invalidated", out.LogFields{
			"source": key.Source,
		})
		return nil
	}

	if !key.ResourceType.perClinician() {
		return fmt.Errorf("%w: unknown resource type %q", errMalformedMessage, key.ResourceType)
	}

	var message InvalidationMessage
	if err := json.Unmarshal(body, &message); err != nil {
		return fmt.Errorf("%w: %v", errMalformedMessage, err)
	}
	message.ClinicianID = strings.TrimSpace(message.ClinicianID)
	if message.ClinicianID == "" {
		return fmt.Errorf("%w: clinicianId is required", errMalformedMessage)
	}

	if err := l.useCase.InvalidateClinicianSlots(ctx, message.ClinicianID); err != nil {
		return err
	}

	l.logger.Info(string(key.ResourceType)+".message.invalidated", out.LogFields{
		"source":      key.Source,
		"clinicianId": message.ClinicianID,
	})

	return nil
}

// retry повторяет объявление сущностей брокера: при старте брокер может быть еще не готов
func (l *InvalidationListener) retry(event string, fields out.LogFields, fn func() error) error {
	var err error
	for attempts := 0; attempts < declareAttempts; attempts++ {
		if err = fn(); err == nil {
			l.logger.Info(event+".success", fields)
			return nil
		}

		l.logger.Warn(event+".retry", out.LogFields{
			"attempt": attempts + 1,
			"error":   err.Error(),
		})

		if attempts < declareAttempts-1 {
			time.Sleep(declareDelay)
		}
	}

	l.closeConnection(fmt.Sprintf("%s failed: %s", event, err.Error()))
	return fmt.Errorf("%s.failed: %w", event, err)
}

func (l *InvalidationListener) closeConnection(reason string) {
	l.logger.Error("rabbitmq.connection.closing", out.LogFields{
		"reason": reason,
	})
	if l.channel != nil {
		l.channel.Close()
	}
	if l.conn != nil {
		l.conn.Close()
	}
}
