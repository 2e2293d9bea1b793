package core

import (
	"context"
	"fmt"

	"github.com/diskrim/diskrim/capability"
	"github.com/diskrim/diskrim/disk"
	"github.com/diskrim/diskrim/validate"

	"github.com/jhunt/go-log"
)

// DeletePartition removes a partition-table entry, optionally after a
// secure multi-pass wipe of its contents.  When a wipe was requested,
// the table entry must not be removed unless every pass finished:
// deleting the entry while the operator believes the data was wiped
// is a safety violation, not a degraded outcome.
func (c *Core) DeletePartition(ctx context.Context, req DeleteRequest) Outcome {
	prog := newProgress(req.Progress)
	defer prog.Close()

	passes := req.WipePasses
	if passes <= 0 {
		passes = DefaultWipePasses
	}

	kind := disk.DeleteOperation
	if req.SecureWipe {
		kind = disk.WipeOperation
	}
	params := map[string]interface{}{
		"secure_wipe": req.SecureWipe,
		"passes":      passes,
	}
	platform := c.Priv.Platform()

	reject := func(reason string) Outcome {
		return c.auditReject(kind, "", req.Partition, params, reason)
	}

	if out := c.gate(req.Partition, validate.PartitionRef, req.Force); !out.OK {
		return reject(out.Reason)
	}

	table, ok := capability.Table(platform, capability.TableRemove)
	if !ok {
		return reject(fmt.Sprintf("partition removal is not supported on %s", platform))
	}

	var wipe capability.WipeContract
	if req.SecureWipe {
		if wipe, ok = capability.Wipe(platform); !ok {
			return reject(fmt.Sprintf("secure wipe is not supported on %s", platform))
		}
	}

	part, owner, err := c.Disks.Partition(req.Partition)
	if err != nil {
		return reject("unable to resolve partition: " + err.Error())
	}
	if out := c.guardOwner(owner, req.Force); !out.OK {
		return reject(out.Reason)
	}

	unlock := c.lockTarget(req.Partition)
	defer unlock()

	id, err := c.Ledger.BeginOperation(kind, owner, req.Partition, params)
	if err != nil {
		log.Errorf("refusing to delete %s: ledger unavailable: %s", req.Partition, err)
		return Outcome{Status: OutcomeFailed, Error: "ledger write failed: " + err.Error()}
	}
	c.Metrics.begun(kind)

	state, err := c.Disks.DiskState(owner)
	if err != nil {
		return c.failOperation(kind, id, "unable to read disk state: "+err.Error())
	}
	if err := c.Ledger.AttachSnapshot(id, state); err != nil {
		return c.failOperation(kind, id, "ledger write failed: "+err.Error())
	}

	prog.Send(10, "validating partition")

	if req.SecureWipe {
		if err := c.wipePartition(ctx, prog, id, kind, wipe, part, owner, passes); err != nil {
			return c.failOperation(kind, id, err.Error())
		}
	}

	if err := canceled(ctx); err != nil {
		return c.failOperation(kind, id, err.Error())
	}

	prog.Send(90, "deleting partition")
	err = c.invoke(ctx, c.short(), Invocation{
		Contract:  table,
		Disk:      owner,
		Partition: req.Partition,
		Params:    params,
	})
	if err != nil {
		return c.failOperation(kind, id, "partition not deleted: "+err.Error())
	}

	prog.Send(100, "complete")
	return c.completeOperation(kind, id, "")
}

// wipePartition runs the configured number of overwrite passes, each a
// single blocking invocation.  There is no partial-pass resume: any
// failure aborts the delete before the partition table is touched.
func (c *Core) wipePartition(ctx context.Context, prog *progress, id int64, kind string, wipe capability.WipeContract, part disk.Partition, owner string, passes int) error {
	prog.Send(15, fmt.Sprintf("securely wiping data (%d passes)", passes))

	for i := 1; i <= passes; i++ {
		if err := canceled(ctx); err != nil {
			return err
		}

		err := c.invoke(ctx, c.long(), Invocation{
			Contract:  wipe,
			Disk:      owner,
			Partition: part.Ref,
			Params: map[string]interface{}{
				"pass":   i,
				"passes": passes,
				"size":   part.SizeBytes,
			},
		})
		if err != nil {
			return fmt.Errorf("secure wipe failed on pass %d of %d: %s", i, passes, err)
		}

		prog.Send(15+(i*70)/passes, fmt.Sprintf("wipe pass %d of %d complete", i, passes))
	}

	return nil
}
