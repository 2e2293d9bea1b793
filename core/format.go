package core

import (
	"context"
	"fmt"

	"github.com/jhunt/go-log"

	"github.com/diskrim/diskrim/capability"
	"github.com/diskrim/diskrim/disk"
	"github.com/diskrim/diskrim/validate"
)

// FormatPartition lays a fresh filesystem down on an existing
// partition.  Matrix support is checked before the ledger record is
// even opened; an unsupported (filesystem, platform) pair is a
// precondition rejection, never a runtime failure.
func (c *Core) FormatPartition(ctx context.Context, req FormatRequest) Outcome {
	prog := newProgress(req.Progress)
	defer prog.Close()

	params := map[string]interface{}{
		"filesystem": string(req.Filesystem),
		"label":      req.Label,
	}
	platform := c.Priv.Platform()

	reject := func(reason string) Outcome {
		return c.auditReject(disk.FormatOperation, "", req.Partition, params, reason)
	}

	if out := c.gate(req.Partition, validate.PartitionRef, req.Force); !out.OK {
		return reject(out.Reason)
	}
	if req.Filesystem == disk.FilesystemUnknown {
		return reject("a filesystem kind is required to format")
	}
	if out := validate.Label(req.Label, req.Filesystem); !out.OK {
		return reject(out.Reason)
	}

	format, ok := capability.Format(req.Filesystem, platform)
	if !ok {
		return reject(fmt.Sprintf("filesystem %s cannot be formatted on %s", req.Filesystem, platform))
	}

	_, owner, err := c.Disks.Partition(req.Partition)
	if err != nil {
		return reject("unable to resolve partition: " + err.Error())
	}
	if out := c.guardOwner(owner, req.Force); !out.OK {
		return reject(out.Reason)
	}

	unlock := c.lockTarget(req.Partition)
	defer unlock()

	id, err := c.Ledger.BeginOperation(disk.FormatOperation, owner, req.Partition, params)
	if err != nil {
		log.Errorf("refusing to format %s: ledger unavailable: %s", req.Partition, err)
		return Outcome{Status: OutcomeFailed, Error: "ledger write failed: " + err.Error()}
	}
	c.Metrics.begun(disk.FormatOperation)

	state, err := c.Disks.DiskState(owner)
	if err != nil {
		return c.failOperation(disk.FormatOperation, id, "unable to read disk state: "+err.Error())
	}
	if err := c.Ledger.AttachSnapshot(id, state); err != nil {
		return c.failOperation(disk.FormatOperation, id, "ledger write failed: "+err.Error())
	}

	prog.Send(10, "validating partition")

	if err := canceled(ctx); err != nil {
		return c.failOperation(disk.FormatOperation, id, err.Error())
	}

	prog.Send(30, "formatting partition")
	err = c.invoke(ctx, c.long(), Invocation{
		Contract:  format,
		Disk:      owner,
		Partition: req.Partition,
		Params:    params,
	})
	if err != nil {
		return c.failOperation(disk.FormatOperation, id, "format failed: "+err.Error())
	}

	prog.Send(100, "complete")
	return c.completeOperation(disk.FormatOperation, id, "")
}

// RepairFilesystem runs the platform's check/repair tool against a
// partition's current filesystem (as the enumerator reports it).
func (c *Core) RepairFilesystem(ctx context.Context, req RepairRequest) Outcome {
	prog := newProgress(req.Progress)
	defer prog.Close()

	platform := c.Priv.Platform()

	reject := func(reason string) Outcome {
		return c.auditReject(disk.RepairOperation, "", req.Partition, nil, reason)
	}

	if out := c.gate(req.Partition, validate.PartitionRef, req.Force); !out.OK {
		return reject(out.Reason)
	}

	part, owner, err := c.Disks.Partition(req.Partition)
	if err != nil {
		return reject("unable to resolve partition: " + err.Error())
	}
	if part.Filesystem == disk.FilesystemUnknown {
		return reject("partition has no recognizable filesystem to repair")
	}

	repair, ok := capability.Repair(part.Filesystem, platform)
	if !ok {
		return reject(fmt.Sprintf("filesystem %s cannot be checked on %s", part.Filesystem, platform))
	}

	unlock := c.lockTarget(req.Partition)
	defer unlock()

	params := map[string]interface{}{
		"filesystem": string(part.Filesystem),
	}
	id, err := c.Ledger.BeginOperation(disk.RepairOperation, owner, req.Partition, params)
	if err != nil {
		log.Errorf("refusing to repair %s: ledger unavailable: %s", req.Partition, err)
		return Outcome{Status: OutcomeFailed, Error: "ledger write failed: " + err.Error()}
	}
	c.Metrics.begun(disk.RepairOperation)

	state, err := c.Disks.DiskState(owner)
	if err != nil {
		return c.failOperation(disk.RepairOperation, id, "unable to read disk state: "+err.Error())
	}
	if err := c.Ledger.AttachSnapshot(id, state); err != nil {
		return c.failOperation(disk.RepairOperation, id, "ledger write failed: "+err.Error())
	}

	prog.Send(10, "validating partition")

	if err := canceled(ctx); err != nil {
		return c.failOperation(disk.RepairOperation, id, err.Error())
	}

	prog.Send(30, "checking filesystem")
	err = c.invoke(ctx, c.long(), Invocation{
		Contract:  repair,
		Disk:      owner,
		Partition: req.Partition,
		Params:    params,
	})
	if err != nil {
		return c.failOperation(disk.RepairOperation, id, "filesystem check failed: "+err.Error())
	}

	prog.Send(100, "complete")
	return c.completeOperation(disk.RepairOperation, id, "")
}
