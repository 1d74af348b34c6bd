package runlog

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Console writes every scalar as a zerolog event.
type Console struct {
	mu    sync.Mutex
	log   zerolog.Logger
	level zerolog.Level
}

// NewConsole returns a console run logger writing JSON lines to w. A nil w
// means stdout.
func NewConsole(w io.Writer, level zerolog.Level) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{
		log:   zerolog.New(w).With().Timestamp().Str("component", "runlog").Logger(),
		level: level,
	}
}

func (c *Console) LogScalar(name string, value float64, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log.WithLevel(c.level).Str("prefix", prefix).Float64(name, value).Msg("scalar")
	return nil
}

func (c *Console) LogMetrics(metrics map[string]float64, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ev := c.log.WithLevel(c.level).Str("prefix", prefix)
	for k, v := range metrics {
		ev = ev.Float64(k, v)
	}
	ev.Msg("metrics")
	return nil
}

func (c *Console) Close() error { return nil }
