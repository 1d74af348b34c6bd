// Package util provides helpers shared across integration tests.
//
// StartMosquitto and StartInflux launch disposable brokers in Docker
// containers and return their URL with a cleanup function.
//
// WriteConfig renders a configuration template into a temporary directory.
package util

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	MosquittoReadyTimeout = 5 * time.Second
	InfluxStartupTimeout  = 60 * time.Second

	pollInterval = 50 * time.Millisecond
)

// InfluxSetup holds the credentials an InfluxDB container is initialised with.
type InfluxSetup struct {
	Org    string
	Bucket string
	Token  string
}

// WriteConfig writes tmpl to name inside a fresh temporary directory after
// replacing every key of vars by its value.
func WriteConfig(t *testing.T, name, tmpl string, vars map[string]string) string {
	t.Helper()
	for k, v := range vars {
		tmpl = strings.ReplaceAll(tmpl, k, v)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(tmpl), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// StartMosquitto launches a temporary Mosquitto broker and returns its URL.
func StartMosquitto(ctx context.Context) (string, func(), error) {
	conf := `listener 1883
allow_anonymous true
persistence false
log_dest stdout
log_type error
log_type warning
`
	dir, err := os.MkdirTemp("", "mosq")
	if err != nil {
		return "", nil, err
	}
	path := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(path, []byte(conf), 0o644); err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}

	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{{
			HostFilePath:      path,
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0o644,
		}},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}
	cleanup := func() {
		_ = cont.Terminate(context.Background())
		_ = os.RemoveAll(dir)
	}

	broker, err := endpoint(ctx, cont, "1883", "tcp")
	if err != nil {
		cleanup()
		return "", nil, err
	}
	waitCtx, cancel := context.WithTimeout(ctx, MosquittoReadyTimeout)
	defer cancel()
	if err := waitForMQTTReady(waitCtx, broker); err != nil {
		cleanup()
		return "", nil, err
	}
	return broker, cleanup, nil
}

// StartInflux launches InfluxDB 2.7 in setup mode so that org, bucket and
// token exist once the container is healthy.
func StartInflux(ctx context.Context, setup InfluxSetup) (string, func(), error) {
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "hive",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "hive-password",
			"DOCKER_INFLUXDB_INIT_ORG":         setup.Org,
			"DOCKER_INFLUXDB_INIT_BUCKET":      setup.Bucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": setup.Token,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(InfluxStartupTimeout),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = cont.Terminate(context.Background()) }
	url, err := endpoint(ctx, cont, "8086", "http")
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return url, cleanup, nil
}

func endpoint(ctx context.Context, cont tc.Container, port, scheme string) (string, error) {
	host, err := cont.Host(ctx)
	if err != nil {
		return "", err
	}
	mapped, err := cont.MappedPort(ctx, nat.Port(port))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s://%s:%s", scheme, host, mapped.Port()), nil
}

func waitForMQTTReady(ctx context.Context, broker string) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("probe")
	for {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		token.Wait()
		if token.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
