package core

import (
	"context"
	"fmt"

	"github.com/jhunt/go-log"

	"github.com/diskrim/diskrim/capability"
	"github.com/diskrim/diskrim/disk"
	"github.com/diskrim/diskrim/validate"
)

// CreatePartition carves a new partition out of a disk and, when a
// filesystem was requested, formats it.  A format failure after a
// successful table edit fails the operation, but with an error that
// says the partition exists.  That disk is in a different state than
// one where the table edit itself failed, and the operator has to
// clean up accordingly.
func (c *Core) CreatePartition(ctx context.Context, req CreateRequest) Outcome {
	prog := newProgress(req.Progress)
	defer prog.Close()

	if req.Filesystem == "" {
		req.Filesystem = disk.FilesystemUnknown
	}
	params := map[string]interface{}{
		"size":       req.Size,
		"filesystem": string(req.Filesystem),
		"label":      req.Label,
	}
	platform := c.Priv.Platform()

	reject := func(reason string) Outcome {
		return c.auditReject(disk.CreateOperation, req.Disk, "", params, reason)
	}

	if out := c.gate(req.Disk, validate.DiskRef, req.Force); !out.OK {
		return reject(out.Reason)
	}

	var min, max uint64
	if req.Filesystem != disk.FilesystemUnknown {
		min = capability.MinimumSize(req.Filesystem)
		max, _ = capability.MaximumSize(req.Filesystem)

		if _, ok := capability.Format(req.Filesystem, platform); !ok {
			return reject(fmt.Sprintf("filesystem %s cannot be formatted on %s", req.Filesystem, platform))
		}
		if out := validate.Label(req.Label, req.Filesystem); !out.OK {
			return reject(out.Reason)
		}
	}
	sizeCheck := validate.Size(req.Size, min, max)
	if !sizeCheck.OK {
		return reject(sizeCheck.Reason)
	}

	table, ok := capability.Table(platform, capability.TableCreate)
	if !ok {
		return reject(fmt.Sprintf("partition creation is not supported on %s", platform))
	}

	unlock := c.lockTarget(req.Disk)
	defer unlock()

	id, err := c.Ledger.BeginOperation(disk.CreateOperation, req.Disk, "", params)
	if err != nil {
		log.Errorf("refusing to create partition on %s: ledger unavailable: %s", req.Disk, err)
		return Outcome{Status: OutcomeFailed, Error: "ledger write failed: " + err.Error()}
	}
	c.Metrics.begun(disk.CreateOperation)

	state, err := c.Disks.DiskState(req.Disk)
	if err != nil {
		return c.failOperation(disk.CreateOperation, id, "unable to read disk state: "+err.Error())
	}
	if err := c.Ledger.AttachSnapshot(id, state); err != nil {
		return c.failOperation(disk.CreateOperation, id, "ledger write failed: "+err.Error())
	}

	if sizeCheck.Warning != "" {
		log.Infof("create %s: %s", req.Disk, sizeCheck.Warning)
	}
	prog.Send(10, "validating disk")

	if err := canceled(ctx); err != nil {
		return c.failOperation(disk.CreateOperation, id, err.Error())
	}

	prog.Send(30, "creating partition")
	err = c.invoke(ctx, c.short(), Invocation{
		Contract: table,
		Disk:     req.Disk,
		Params:   params,
	})
	if err != nil {
		return c.failOperation(disk.CreateOperation, id,
			"partition not created: "+err.Error())
	}

	if req.Filesystem != disk.FilesystemUnknown {
		if err := canceled(ctx); err != nil {
			return c.failOperation(disk.CreateOperation, id,
				"partition created, but format was not attempted: "+err.Error())
		}

		format, _ := capability.Format(req.Filesystem, platform)
		prog.Send(60, "formatting partition")
		err = c.invoke(ctx, c.long(), Invocation{
			Contract: format,
			Disk:     req.Disk,
			Params:   params,
		})
		if err != nil {
			return c.failOperation(disk.CreateOperation, id,
				"partition created, but format failed: "+err.Error())
		}
	}

	prog.Send(100, "complete")
	return c.completeOperation(disk.CreateOperation, id, "")
}
