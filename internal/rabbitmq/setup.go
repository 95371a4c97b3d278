package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Имена обмена, очереди и ключа маршрутизации для напоминаний о доставке.
const (
	Exchange           = "notifications"
	ReminderQueue      = "notifications.reminder"
	ReminderRoutingKey = "reminder"
)

// SetupChannel открывает канал и объявляет обмен с очередью напоминаний.
// Вызов идемпотентен: повторное объявление существующей топологии безопасно.
func SetupChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}
	err = ch.ExchangeDeclare(
		Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	_, err = ch.QueueDeclare(
		ReminderQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	err = ch.QueueBind(ReminderQueue, ReminderRoutingKey, Exchange, false, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}
