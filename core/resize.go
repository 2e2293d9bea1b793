package core

import (
	"context"
	"fmt"

	"github.com/jhunt/go-log"

	"github.com/diskrim/diskrim/capability"
	"github.com/diskrim/diskrim/disk"
	"github.com/diskrim/diskrim/validate"
)

// ResizePartition is a strictly two-phase sequence: move the partition
// boundary, then resize the filesystem to match.  Phase 1 failing
// aborts everything.  Phase 2 failing after a successful phase 1 is a
// warning, not a failure: the boundary change was the primary intent,
// and a filesystem lagging its partition is a recoverable state the
// operator can follow up on separately.
func (c *Core) ResizePartition(ctx context.Context, req ResizeRequest) Outcome {
	prog := newProgress(req.Progress)
	defer prog.Close()

	params := map[string]interface{}{
		"new_size": req.NewSize,
	}
	platform := c.Priv.Platform()

	reject := func(reason string) Outcome {
		return c.auditReject(disk.ResizeOperation, "", req.Partition, params, reason)
	}

	if out := c.gate(req.Partition, validate.PartitionRef, req.Force); !out.OK {
		return reject(out.Reason)
	}

	table, ok := capability.Table(platform, capability.TableResize)
	if !ok {
		return reject(fmt.Sprintf("partition resize is not supported on %s", platform))
	}

	part, owner, err := c.Disks.Partition(req.Partition)
	if err != nil {
		return reject("unable to resolve partition: " + err.Error())
	}
	if out := c.guardOwner(owner, req.Force); !out.OK {
		return reject(out.Reason)
	}

	var min, max uint64
	if part.Filesystem != disk.FilesystemUnknown {
		min = capability.MinimumSize(part.Filesystem)
		max, _ = capability.MaximumSize(part.Filesystem)
	}
	sizeCheck := validate.Size(req.NewSize, min, max)
	if !sizeCheck.OK {
		return reject(sizeCheck.Reason)
	}

	// the filesystem resize contract is resolved up front, so that a
	// shrink against a grow-only filesystem fails closed before the
	// boundary ever moves
	shrink := req.NewSize < part.SizeBytes
	var fsResize capability.ResizeContract
	haveFS := part.Filesystem != disk.FilesystemUnknown
	if haveFS {
		if fsResize, ok = capability.Resize(part.Filesystem, platform, shrink); !ok {
			verb := "resized"
			if shrink {
				verb = "shrunk"
			}
			return reject(fmt.Sprintf("filesystem %s cannot be %s on %s", part.Filesystem, verb, platform))
		}
	}

	unlock := c.lockTarget(req.Partition)
	defer unlock()

	id, err := c.Ledger.BeginOperation(disk.ResizeOperation, owner, req.Partition, params)
	if err != nil {
		log.Errorf("refusing to resize %s: ledger unavailable: %s", req.Partition, err)
		return Outcome{Status: OutcomeFailed, Error: "ledger write failed: " + err.Error()}
	}
	c.Metrics.begun(disk.ResizeOperation)

	state, err := c.Disks.DiskState(owner)
	if err != nil {
		return c.failOperation(disk.ResizeOperation, id, "unable to read disk state: "+err.Error())
	}
	if err := c.Ledger.AttachSnapshot(id, state); err != nil {
		return c.failOperation(disk.ResizeOperation, id, "ledger write failed: "+err.Error())
	}

	if sizeCheck.Warning != "" {
		log.Infof("resize %s: %s", req.Partition, sizeCheck.Warning)
	}
	prog.Send(10, "validating partition")

	if err := canceled(ctx); err != nil {
		return c.failOperation(disk.ResizeOperation, id, err.Error())
	}

	prog.Send(30, "resizing partition")
	err = c.invoke(ctx, c.short(), Invocation{
		Contract:  table,
		Disk:      owner,
		Partition: req.Partition,
		Params:    params,
	})
	if err != nil {
		return c.failOperation(disk.ResizeOperation, id, "partition not resized: "+err.Error())
	}

	// second snapshot, so auditors can see both sides of the boundary
	// change even if the filesystem step goes sideways
	if after, err := c.Disks.DiskState(owner); err == nil {
		if err := c.Ledger.AttachSnapshot(id, after); err != nil {
			return c.failOperation(disk.ResizeOperation, id, "ledger write failed: "+err.Error())
		}
	}

	if !haveFS {
		prog.Send(100, "complete")
		return c.completeOperation(disk.ResizeOperation, id, "")
	}

	prog.Send(70, "resizing filesystem")
	err = c.invoke(ctx, c.long(), Invocation{
		Contract:  fsResize,
		Disk:      owner,
		Partition: req.Partition,
		Params:    params,
	})
	if err != nil {
		warning := fmt.Sprintf("partition resized, but the %s filesystem was not: %s", part.Filesystem, err)
		log.Infof("resize %s: %s", req.Partition, warning)
		prog.Send(100, "complete (with warnings)")
		return c.completeOperation(disk.ResizeOperation, id, warning)
	}

	prog.Send(100, "complete")
	return c.completeOperation(disk.ResizeOperation, id, "")
}
