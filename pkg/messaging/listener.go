package messaging

import (
	"fmt"
	"log"

	"github.com/matst80/slask-storefront/pkg/common/jsoncompat"
	"github.com/matst80/slask-storefront/pkg/preferences"
	"github.com/matst80/slask-storefront/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
)

func DeclareBindAndConsume(ch *amqp.Channel, prefix string, topic ChangeTopic) (<-chan amqp.Delivery, error) {
	name := getName(prefix, topic)
	if err := DefineTopic(ch, prefix, topic); err != nil {
		return nil, err
	}
	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, err
	}
	err = ch.QueueBind(q.Name, name, name, false, nil)
	if err != nil {
		return nil, err
	}
	return ch.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
}

// ListenToTopic consumes the topic until the channel closes. Deliveries the filter
// rejects are logged and dropped without requeue.
func ListenToTopic(ch *amqp.Channel, prefix string, topic ChangeTopic, filter func(amqp.Delivery) error) error {
	fc, err := DeclareBindAndConsume(ch, prefix, topic)
	if err != nil {
		return err
	}

	go func(msgs <-chan amqp.Delivery) {
		defer ch.Close()
		for d := range msgs {
			if err := filter(d); err != nil {
				log.Printf("Error processing message: %v", err)
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}(fc)
	return nil
}

// DecodePreferences resolves the document carried by a preferences change.
func DecodePreferences(body []byte) (string, *types.Preferences, error) {
	var change PreferencesChange
	if err := jsoncompat.Unmarshal(body, &change); err != nil {
		return "", nil, fmt.Errorf("decode preferences change: %w", err)
	}
	p, err := preferences.Resolve(change.Document)
	if err != nil {
		return change.Storefront, nil, err
	}
	return change.Storefront, p, nil
}

// preferencesHandler applies documents published for the storefront. Documents that
// cannot reach a backend are rejected so they are never applied or persisted.
func preferencesHandler(storefront string, apply func(*types.Preferences)) func(body []byte) error {
	return func(body []byte) error {
		name, p, err := DecodePreferences(body)
		if err != nil {
			return err
		}
		if name != "" && name != storefront {
			return nil
		}
		if err := preferences.Validate(p); err != nil {
			return fmt.Errorf("preferences change for %s: %w", storefront, err)
		}
		log.Printf("Got preferences change for %s", storefront)
		apply(p)
		return nil
	}
}

// ListenToPreferences calls apply with every valid preferences document published
// for the storefront. Invalid documents are dropped.
func ListenToPreferences(conn *amqp.Connection, storefront string, apply func(*types.Preferences)) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	handle := preferencesHandler(storefront, apply)
	return ListenToTopic(ch, storefront, PreferencesChanged, func(d amqp.Delivery) error {
		return handle(d.Body)
	})
}
