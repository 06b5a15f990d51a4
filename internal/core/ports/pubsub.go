package ports

// Topics of the events published by the daemon.
const (
	AnyTopic                = "*"
	TopicOperationProposed  = "OPERATION_PROPOSED"
	TopicOperationProcessed = "OPERATION_PROCESSED"
	TopicTransferConfirmed  = "TRANSFER_CONFIRMED"
)

// Topics returns every topic a client can subscribe for.
func Topics() []string {
	return []string{
		TopicOperationProposed,
		TopicOperationProcessed,
		TopicTransferConfirmed,
		AnyTopic,
	}
}

type Subscription interface {
	Topic() string
	Id() string
	IsSecured() bool
	NotifyAt() string
}

// PubSub notifies the subscribed clients of the events occurring in the
// daemon. Subscriptions are persisted by the implementation.
type PubSub interface {
	// Subscribe adds a new subscription for the requested topic.
	Subscribe(topic, endpoint, secret string) (string, error)
	// Unsubscribe removes the subscription with the given id.
	Unsubscribe(id string) error
	// ListSubscriptionsForTopic returns the subscriptions for the topic,
	// including those for AnyTopic.
	ListSubscriptionsForTopic(topic string) []Subscription
	// Publish delivers the message to every client subscribed for topic.
	Publish(topic string, message string) error
	// Close releases the internal store.
	Close() error
}
