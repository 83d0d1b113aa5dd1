// Package diplomacy is the fire-and-forget broker for inter-player
// proposals. It keeps no ledger of open requests; correlation belongs to
// whoever consumes Events().
package diplomacy

import (
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worldsim/client/pkg/protocol"
)

// Sender is the one channel operation the broker needs. *conn.Manager
// satisfies it.
type Sender interface {
	Send(protocol.Message) error
}

type Broker struct {
	localID string
	sender  Sender
	log     *zap.Logger
	events  chan protocol.Event
}

func NewBroker(localID string, sender Sender, log *zap.Logger) *Broker {
	return &Broker{
		localID: localID,
		sender:  sender,
		log:     log,
		events:  make(chan protocol.Event, 32),
	}
}

// SendRequest emits a proposal and returns its request id, or "" when the
// channel is down and the request was dropped.
func (b *Broker) SendRequest(targetID, requestType string, data json.RawMessage) string {
	id := uuid.NewString()
	err := b.sender.Send(protocol.DiplomacyRequest{
		RequestID:   id,
		FromPlayer:  b.localID,
		ToPlayer:    targetID,
		RequestType: requestType,
		Data:        data,
	})
	if err != nil {
		b.log.Warn("diplomacy request dropped", zap.String("to", targetID), zap.Error(err))
		return ""
	}
	return id
}

func (b *Broker) SendResponse(requestID string, accepted bool) {
	err := b.sender.Send(protocol.DiplomacyResponse{
		RequestID: requestID,
		PlayerID:  b.localID,
		Accepted:  accepted,
	})
	if err != nil {
		b.log.Warn("diplomacy response dropped", zap.String("request_id", requestID), zap.Error(err))
	}
}

// Deliver forwards an inbound diplomacy event verbatim toward the UI. A full
// consumer loses the event rather than stalling the session loop.
func (b *Broker) Deliver(ev protocol.Event) {
	switch ev.(type) {
	case protocol.DiplomacyRequestEvent, protocol.DiplomacyResponseEvent:
	default:
		return
	}
	select {
	case b.events <- ev:
	default:
		b.log.Warn("diplomacy event dropped, consumer too slow")
	}
}

func (b *Broker) Events() <-chan protocol.Event { return b.events }
