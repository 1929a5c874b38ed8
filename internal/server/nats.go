package server

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
)

// NATSPublisher bridges game events onto a NATS subject per game so other
// instances (or the socket tier) can fan them out.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

func (p *NATSPublisher) Publish(gameID, event string, payload EventPayload) error {
	data, err := json.Marshal(wsMessage{Type: event, Payload: payload})
	if err != nil {
		return err
	}
	return p.conn.Publish("game."+gameID, data)
}
