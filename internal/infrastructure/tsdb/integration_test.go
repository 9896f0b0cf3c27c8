//go:build integration

package tsdb

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/pinhub-core/internal/infrastructure/config"
	"github.com/nerrad567/pinhub-core/internal/pin"
)

// Integration tests for InfluxDB connectivity and pin telemetry.
// These tests require a running InfluxDB at 127.0.0.1:8086.
//
// Run with:
//
//	go test -tags=integration -v ./internal/infrastructure/tsdb/...

func integrationConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "pinhub-dev-token",
		Org:           "pinhub",
		Bucket:        "metrics",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

func TestConnectAndClose(t *testing.T) {
	client, err := Connect(integrationConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect")
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}
}

func TestRecordPinWrite(t *testing.T) {
	client, err := Connect(integrationConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close() //nolint:errcheck // Test cleanup

	var writeErr error
	var mu sync.Mutex
	client.SetOnError(func(err error) {
		mu.Lock()
		writeErr = err
		mu.Unlock()
	})

	addr := pin.Address{Type: pin.Virtual, Number: 5}
	client.RecordPinWrite(10, addr, []string{"20"})
	client.RecordPinWrite(10, addr, []string{"not-a-number", "x"})
	client.Flush()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if writeErr != nil {
		t.Errorf("write error = %v", writeErr)
	}
}
