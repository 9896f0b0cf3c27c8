package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/pinhub-core/internal/pin"
)

// Mirror republishes committed pin writes as retained MQTT state messages.
// It satisfies the router's Mirror collaborator.
type Mirror struct {
	client *Client
}

// NewMirror creates a state mirror over a connected client.
func NewMirror(client *Client) *Mirror {
	return &Mirror{client: client}
}

// statePayload is the JSON document published for each pin state change.
type statePayload struct {
	Values    []string `json:"values"`
	Timestamp string   `json:"timestamp"`
}

// PublishPinState publishes one committed pin write to its state topic.
// The message is retained, so late subscribers see the current value.
func (m *Mirror) PublishPinState(projectID int64, addr pin.Address, values []string) error {
	payload, err := json.Marshal(statePayload{
		Values:    values,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encoding state payload: %w", err)
	}

	topic := Topics{}.PinState(projectID, addr.String())
	return m.client.PublishRetained(topic, payload)
}
