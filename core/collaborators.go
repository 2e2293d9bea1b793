package core

import (
	"context"

	"github.com/diskrim/diskrim/capability"
	"github.com/diskrim/diskrim/disk"
)

// Ledger is the durable audit trail every orchestrated operation writes
// through.  The db package provides the real implementation; tests pass
// in doubles.  A ledger write that fails aborts the operation it
// belongs to; no record is worse than a failed record.
type Ledger interface {
	BeginOperation(kind, diskRef, partRef string, params map[string]interface{}) (int64, error)
	CompleteOperation(id int64) error
	FailOperation(id int64, message string) error
	AttachSnapshot(id int64, state disk.State) error
}

// An Invocation hands one tool contract plus its operation inputs to
// the external invoker.  Exec, when set, is an operator-configured
// argv override for the contract's tool; this core parses it out of
// configuration but never executes anything itself.
type Invocation struct {
	Contract  capability.Contract
	Disk      string
	Partition string
	Params    map[string]interface{}
	Exec      []string
}

// Invoker is the external collaborator that actually runs platform
// tools.  A nil error means the tool succeeded; anything else carries
// the tool's failure text verbatim.  The context carries the per-step
// deadline; hitting it is indistinguishable from a tool failure.
type Invoker interface {
	Invoke(ctx context.Context, inv Invocation) error
}

// Enumerator supplies current disk and partition state.  It is
// consulted fresh before every orchestrated operation and never cached
// here.
type Enumerator interface {
	DiskState(diskRef string) (disk.State, error)

	// Partition resolves a partition reference to its current state
	// and the disk that owns it.
	Partition(partRef string) (disk.Partition, string, error)
}

// Privileges reports whether the calling process may perform
// destructive work, and which platform it is on.
type Privileges interface {
	Elevated() bool
	Platform() disk.Platform
}
