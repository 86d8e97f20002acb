package session

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
)

// NewRedisStreamPublisher publishes events to Redis streams so other processes sharing the
// credential store see them.
func NewRedisStreamPublisher(client redis.UniversalClient) (message.Publisher, error) {
	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: client,
	}, NewLoggerAdapter(nil))
	if err != nil {
		return nil, fmt.Errorf("session: redis stream publisher: %w", err)
	}
	return publisher, nil
}

// NewRedisStreamSubscriber reads events from Redis streams. Without a consumer group every
// subscriber receives every event.
func NewRedisStreamSubscriber(client redis.UniversalClient, consumerGroup string) (message.Subscriber, error) {
	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        client,
		ConsumerGroup: consumerGroup,
	}, NewLoggerAdapter(nil))
	if err != nil {
		return nil, fmt.Errorf("session: redis stream subscriber: %w", err)
	}
	return subscriber, nil
}
