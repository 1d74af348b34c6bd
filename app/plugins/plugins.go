// Package plugins lists the registration functions of every built-in family
// and lets out-of-tree packages add their own.
package plugins

import (
	"fmt"
	"sync"

	"github.com/kilianp07/hive/core/agent"
	"github.com/kilianp07/hive/core/env"
	"github.com/kilianp07/hive/core/optimizer"
	"github.com/kilianp07/hive/core/qnet"
	"github.com/kilianp07/hive/core/registry"
	corerunlog "github.com/kilianp07/hive/core/runlog"
	"github.com/kilianp07/hive/core/schedule"
	infrarunlog "github.com/kilianp07/hive/infra/runlog"
)

// Registrar adds variants to a registry.
type Registrar func(r *registry.Registry) error

type entry struct {
	name string
	fn   Registrar
}

var (
	mu    sync.Mutex
	extra []entry
)

func builtins() []entry {
	return []entry{
		{"schedule", schedule.Register},
		{"optimizer", optimizer.Register},
		{"qnet", qnet.Register},
		{"env", env.Register},
		{"runlog", corerunlog.Register},
		{"runlog-infra", infrarunlog.Register},
		{"agent", agent.Register},
	}
}

// Add appends a registrar run by Builtin after the built-in ones. Variants
// added this way may replace built-in variants of the same name.
func Add(name string, fn Registrar) {
	mu.Lock()
	defer mu.Unlock()
	extra = append(extra, entry{name, fn})
}

// Builtin registers every built-in variant, then the ones added with Add.
func Builtin(r *registry.Registry) error {
	mu.Lock()
	entries := append(builtins(), extra...)
	mu.Unlock()
	for _, e := range entries {
		if err := e.fn(r); err != nil {
			return fmt.Errorf("register %s: %w", e.name, err)
		}
	}
	return nil
}
