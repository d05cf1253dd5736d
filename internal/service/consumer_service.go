package service

import (
	"context"

	"lola-discovery-be/internal/pkg/logger"
	"lola-discovery-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventSink receives lifecycle events after they leave the request path.
// *nats.Publisher satisfies it.
type EventSink interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	sink      EventSink
	logger    logger.ILogger
}

// NewConsumerService forwards events published on topicName to sink. A nil
// sink only logs them.
func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	sink EventSink,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		sink:      sink,
		logger:    logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	evt, err := events.Unmarshal(msg.Payload)
	if err != nil {
		cs.logger.Error("EVENTS", "Failed to unmarshal event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // malformed messages are never retried
		return
	}

	cs.logger.Info("EVENTS", evt.EventType(), evt.Payload())

	if cs.sink == nil {
		msg.Ack()
		return
	}

	if err := cs.sink.Publish(ctx, evt); err != nil {
		// Nack redelivers immediately and would spin while the broker is down
		cs.logger.Warn("EVENTS", "Failed to forward event", map[string]interface{}{
			"event_type": evt.EventType(),
			"error":      err.Error(),
		})
	}
	msg.Ack()
}
