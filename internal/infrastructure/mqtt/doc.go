// Package mqtt mirrors committed pin state to an external MQTT broker.
//
// The broker is an optional integration surface: every committed pin write
// is republished as a retained message so dashboards and automations
// outside this process can follow device state without speaking the binary
// transport protocol.
//
// This package manages:
//   - Connection lifecycle with auto-reconnect and exponential backoff
//   - Last Will and Testament for offline detection
//   - Retained state publishing via the topic helpers in topics.go
//
// All methods are safe for concurrent use.
package mqtt
