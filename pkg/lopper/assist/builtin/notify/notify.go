// Package notify implements the "notify" builtin assist: it publishes a short JSON event to a NATS subject whenever a
// selected node passes through it, letting an external watcher observe
// a lop pipeline's progress without changing the tree. Grounded on the
// teacher's nats.go-based change-notification plumbing.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/sdt-tools/lopper/pkg/lopper"
)

const compatible = "system-device-tree-v1,lop,assist-v1,notify"

// Assist publishes a node-touched event to a NATS subject.
type Assist struct {
	nc      *nats.Conn
	subject string
}

// New connects to the given NATS URL (e.g. nats://127.0.0.1:4222) and
// binds publications to subject.
func New(url, subject string) (*Assist, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("notify assist: connect %s: %w", url, err)
	}
	return &Assist{nc: nc, subject: subject}, nil
}

// ID implements assist.Assist.
func (a *Assist) ID() string { return "notify" }

// IsCompatible implements assist.Assist.
func (a *Assist) IsCompatible(node *lopper.Node) bool {
	p, ok := node.Property("compatible")
	if !ok {
		return false
	}
	return p.Value.Equal(compatible)
}

type event struct {
	Node   string `json:"node"`
	Labels []string `json:"labels,omitempty"`
}

// Run publishes one event per invocation; errors are warnings upstream
//, so a disconnected broker never aborts a lop run.
func (a *Assist) Run(ctx context.Context, tree *lopper.Tree, node *lopper.Node, args []string) error {
	ev := event{Node: node.AbsPath(), Labels: node.Labels()}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("notify assist: marshal event: %w", err)
	}
	if err := a.nc.Publish(a.subject, payload); err != nil {
		return fmt.Errorf("notify assist: publish: %w", err)
	}
	return a.nc.FlushWithContext(ctx)
}

// Close releases the underlying NATS connection.
func (a *Assist) Close() { a.nc.Close() }
