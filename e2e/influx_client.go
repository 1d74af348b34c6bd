package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient wraps the query side of the official client for assertions on
// what the run loggers wrote.
type InfluxClient struct {
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxClient creates a client for an already running server.
func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{bucket: bucket, client: c, query: c.QueryAPI(org)}
}

// FieldValues returns the values of field in measurement written during the
// last hour, in time order.
func (c *InfluxClient) FieldValues(ctx context.Context, measurement, field string) ([]float64, error) {
	flux := fmt.Sprintf(`from(bucket:%q)
  |> range(start: -1h)
  |> filter(fn: (r) => r._measurement == %q and r._field == %q)
  |> group()
  |> sort(columns: ["_time"])`, c.bucket, measurement, field)
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Close() }()
	var out []float64
	for res.Next() {
		v, ok := res.Record().Value().(float64)
		if !ok {
			return nil, fmt.Errorf("unexpected value type %T", res.Record().Value())
		}
		out = append(out, v)
	}
	return out, res.Err()
}

// Close releases the underlying client resources.
func (c *InfluxClient) Close() { c.client.Close() }
