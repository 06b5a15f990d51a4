package application

import (
	"encoding/json"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
)

type operationProposedEvent struct {
	ID       uint64   `json:"id"`
	Kind     string   `json:"kind"`
	Proposer string   `json:"proposer"`
	Reason   string   `json:"reason,omitempty"`
	Deadline int64    `json:"deadline"`
	Required int      `json:"required"`
	Signers  []string `json:"signers"`
}

type operationProcessedEvent struct {
	ID          uint64 `json:"id"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
	Result      string `json:"result,omitempty"`
	Error       string `json:"error,omitempty"`
	ProcessedAt int64  `json:"processed_at"`
}

type transferConfirmedEvent struct {
	Account string `json:"account"`
	Chain   string `json:"chain"`
	ID      string `json:"id"`
	Kind    string `json:"kind"`
}

func publishOperationProposed(pubsub ports.PubSub, op *domain.Operation) {
	publish(pubsub, ports.TopicOperationProposed, operationProposedEvent{
		ID:       op.ID,
		Kind:     op.Kind().String(),
		Proposer: op.Proposer,
		Reason:   op.Reason,
		Deadline: op.Deadline,
		Required: op.Required,
		Signers:  op.AllowedSigners,
	})
}

func publishOperationProcessed(pubsub ports.PubSub, p *domain.ProcessedOperation) {
	publish(pubsub, ports.TopicOperationProcessed, operationProcessedEvent{
		ID:          p.Operation.ID,
		Kind:        p.Operation.Kind().String(),
		Status:      p.Status.String(),
		Result:      p.Result,
		Error:       p.Error,
		ProcessedAt: p.ProcessedAt,
	})
}

func publishTransferConfirmed(
	pubsub ports.PubSub, accountID string, chain domain.ChainID,
	p domain.PendingTransfer,
) {
	publish(pubsub, ports.TopicTransferConfirmed, transferConfirmedEvent{
		Account: accountID,
		Chain:   chain.String(),
		ID:      p.ID,
		Kind:    p.Kind.String(),
	})
}

// publish notifies the subscribers of topic. Delivery failures are only
// logged, they never affect the outcome of the notified action.
func publish(pubsub ports.PubSub, topic string, event interface{}) {
	if pubsub == nil {
		return
	}
	message, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Warnf("failed to serialize %s event", topic)
		return
	}
	if err := pubsub.Publish(topic, string(message)); err != nil {
		log.WithError(err).Warnf(
			"an error occured while publishing message for topic %s", topic,
		)
	}
}
