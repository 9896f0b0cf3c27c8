package tsdb

import (
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/pinhub-core/internal/pin"
)

// RecordPinWrite records one committed pin write.
//
// The write is non-blocking; data is batched and sent asynchronously.
// The first value is stored as a numeric field when it parses as a
// float, so dashboards can graph sensor-style pins directly. The raw
// joined value list is always stored alongside it.
func (c *Client) RecordPinWrite(projectID int64, addr pin.Address, values []string) {
	if !c.IsConnected() {
		return
	}

	fields := map[string]interface{}{
		"raw":   strings.Join(values, ","),
		"count": len(values),
	}
	if len(values) > 0 {
		if v, err := strconv.ParseFloat(values[0], 64); err == nil {
			fields["value"] = v
		}
	}

	point := write.NewPoint(
		"pin_writes",
		map[string]string{
			"project_id": strconv.FormatInt(projectID, 10),
			"pin":        addr.String(),
		},
		fields,
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
// Tags should stay low cardinality.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a custom point with a specific timestamp.
// Use when the timestamp is not "now", e.g. replayed data.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
