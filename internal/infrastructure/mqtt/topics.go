package mqtt

import "fmt"

// Topic prefixes for the state mirror.
//
// State topics use the flat scheme: pinhub/state/{project_id}/{pin}
const (
	// TopicPrefix is the base for all topics published by this service.
	TopicPrefix = "pinhub"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "pinhub/system"
)

// Topics provides builders for the mirror's MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.PinState(10, "v5")
//	// Returns: "pinhub/state/10/v5"
type Topics struct{}

// PinState returns the retained-state topic for one pin of one project.
// The pin is the canonical lowercase address form (e.g. "v5", "d13").
//
// Example: pinhub/state/10/v5
func (Topics) PinState(projectID int64, pin string) string {
	return fmt.Sprintf("%s/state/%d/%s", TopicPrefix, projectID, pin)
}

// SystemStatus returns the service status topic, used for online/offline
// announcements and the Last Will message.
//
// Example: pinhub/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllPinStates returns a pattern matching every pin state topic.
//
// Pattern: pinhub/state/+/+
func (Topics) AllPinStates() string {
	return fmt.Sprintf("%s/state/+/+", TopicPrefix)
}

// ProjectPinStates returns a pattern matching all pin states of one project.
//
// Pattern: pinhub/state/10/+
func (Topics) ProjectPinStates(projectID int64) string {
	return fmt.Sprintf("%s/state/%d/+", TopicPrefix, projectID)
}
