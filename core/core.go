package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhunt/go-log"
)

const (
	// table edits and lookups are quick or broken
	DefaultShortTimeout = 1 * time.Minute

	// wipes, resizes, formats and filesystem checks legitimately run
	// for a very long time on spinning rust
	DefaultLongTimeout = 30 * time.Minute

	DefaultWipePasses = 3
)

type Core struct {
	Ledger  Ledger
	Invoker Invoker
	Disks   Enumerator
	Priv    Privileges

	Metrics *Metrics

	// operator-configured argv overrides, keyed by tool name
	Overrides map[string][]string

	ShortTimeout time.Duration
	LongTimeout  time.Duration

	lk      sync.Mutex
	targets map[string]*sync.Mutex
}

func (c *Core) short() time.Duration {
	if c.ShortTimeout > 0 {
		return c.ShortTimeout
	}
	return DefaultShortTimeout
}

func (c *Core) long() time.Duration {
	if c.LongTimeout > 0 {
		return c.LongTimeout
	}
	return DefaultLongTimeout
}

// lockTarget serializes destructive operations per disk/partition.
// Two orchestrated operations against the same reference never
// overlap; operations against different references proceed freely.
func (c *Core) lockTarget(ref string) func() {
	c.lk.Lock()
	if c.targets == nil {
		c.targets = make(map[string]*sync.Mutex)
	}
	mu, ok := c.targets[ref]
	if !ok {
		mu = &sync.Mutex{}
		c.targets[ref] = mu
	}
	c.lk.Unlock()

	mu.Lock()
	return mu.Unlock
}

// invoke runs one step through the external invoker, under the given
// deadline.
func (c *Core) invoke(ctx context.Context, timeout time.Duration, inv Invocation) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if exec, ok := c.Overrides[inv.Contract.Tool()]; ok {
		inv.Exec = exec
	}

	log.Debugf("invoking %s (%s) against disk=%s partition=%s",
		inv.Contract.Tool(), inv.Contract.Kind(), inv.Disk, inv.Partition)
	return c.Invoker.Invoke(ctx, inv)
}

// canceled honors a caller cancellation between steps.  Once a step
// has been issued it runs to completion or deadline; we only ever
// check before issuing the next one.
func canceled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("operation canceled by caller: %s", ctx.Err())
	default:
		return nil
	}
}
