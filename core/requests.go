package core

import (
	"github.com/jhunt/go-log"

	"github.com/diskrim/diskrim/disk"
	"github.com/diskrim/diskrim/validate"
)

type CreateRequest struct {
	Disk       string
	Size       uint64
	Filesystem disk.FilesystemKind
	Label      string
	Force      bool
	Progress   chan<- disk.ProgressEvent
}

type DeleteRequest struct {
	Partition  string
	SecureWipe bool
	WipePasses int
	Force      bool
	Progress   chan<- disk.ProgressEvent
}

type ResizeRequest struct {
	Partition string
	NewSize   uint64
	Force     bool
	Progress  chan<- disk.ProgressEvent
}

type FormatRequest struct {
	Partition  string
	Filesystem disk.FilesystemKind
	Label      string
	Force      bool
	Progress   chan<- disk.ProgressEvent
}

type RepairRequest struct {
	Partition string
	Force     bool
	Progress  chan<- disk.ProgressEvent
}

// auditReject records a precondition violation as a failed ledger
// entry, so that rejected attempts stay reviewable alongside attempts
// that actually ran.  Zero tool calls have happened by the time this
// is reached.
func (c *Core) auditReject(kind, diskRef, partRef string, params map[string]interface{}, reason string) Outcome {
	c.Metrics.rejected(kind)

	id, err := c.Ledger.BeginOperation(kind, diskRef, partRef, params)
	if err != nil {
		log.Errorf("unable to record rejected %s operation: %s", kind, err)
		return Outcome{Status: OutcomeFailed, Error: reason}
	}
	if err := c.Ledger.FailOperation(id, reason); err != nil {
		log.Errorf("unable to finalize rejected %s operation %d: %s", kind, id, err)
	}
	return Outcome{Status: OutcomeFailed, Error: reason, ID: id}
}

// failOperation finalizes an in-flight record as failed and shapes the
// caller-facing outcome.
func (c *Core) failOperation(kind string, id int64, reason string) Outcome {
	c.Metrics.failed(kind)

	if err := c.Ledger.FailOperation(id, reason); err != nil {
		log.Errorf("unable to finalize failed %s operation %d: %s", kind, id, err)
	}
	return Outcome{Status: OutcomeFailed, Error: reason, ID: id}
}

func (c *Core) completeOperation(kind string, id int64, warning string) Outcome {
	if err := c.Ledger.CompleteOperation(id); err != nil {
		// the step sequence succeeded, but an unrecorded success is
		// worse than a failed operation
		log.Errorf("unable to finalize %s operation %d: %s", kind, id, err)
		return c.failOperation(kind, id, "ledger write failed: "+err.Error())
	}

	if warning != "" {
		c.Metrics.warned(kind)
		return Outcome{Status: OutcomeWarning, Warning: warning, ID: id}
	}
	c.Metrics.completed(kind)
	return Outcome{Status: OutcomeOK, ID: id}
}

// gate runs the shared precondition checks for a destructive call
// against a resolved target.  Privilege comes first, always.
func (c *Core) gate(ref string, kind validate.RefKind, force bool) validate.Outcome {
	if out := validate.Privilege(c.Priv.Elevated()); !out.OK {
		return out
	}
	if out := validate.Identifier(ref, kind, c.Priv.Platform()); !out.OK {
		return out
	}
	if kind == validate.DiskRef && validate.SystemDisk(ref) && !force {
		return validate.Reject("%s looks like the system disk; pass force to operate on it anyway", ref)
	}
	return validate.Accept()
}

// guardOwner extends the system-disk check to the disk that owns a
// partition target.
func (c *Core) guardOwner(diskRef string, force bool) validate.Outcome {
	if diskRef != "" && validate.SystemDisk(diskRef) && !force {
		return validate.Reject("partition belongs to the likely system disk %s; pass force to operate on it anyway", diskRef)
	}
	return validate.Accept()
}
