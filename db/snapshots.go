package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pborman/uuid"

	"github.com/diskrim/diskrim/disk"
)

// A Snapshot is a write-once, point-in-time capture of a disk's
// partition table and filesystem metadata, tied to the operation that
// was about to change it.  Snapshots exist for forensic review only;
// nothing in this core ever replays one.
type Snapshot struct {
	UUID           string `json:"uuid"`
	OperationID    int64  `json:"operation_id"`
	Disk           string `json:"disk"`
	TakenAt        int64  `json:"taken_at"`
	PartitionTable string `json:"partition_table,omitempty"`
	FilesystemInfo string `json:"filesystem_info,omitempty"`
}

type SnapshotFilter struct {
	ForOperation int64
}

func (f *SnapshotFilter) Query() (string, []interface{}) {
	wheres := []string{"s.uuid = s.uuid"}
	var args []interface{}

	if f.ForOperation != 0 {
		wheres = append(wheres, "s.operation_id = ?")
		args = append(args, f.ForOperation)
	}

	return `
	    SELECT s.uuid, s.operation_id, s.disk, s.taken_at,
	           s.partition_table, s.filesystem_info

	      FROM snapshots s

	     WHERE ` + strings.Join(wheres, " AND ") + `
	  ORDER BY s.taken_at ASC, s.uuid ASC`, args
}

func (db *DB) GetAllSnapshots(filter *SnapshotFilter) ([]*Snapshot, error) {
	if filter == nil {
		filter = &SnapshotFilter{}
	}

	l := []*Snapshot{}
	query, args := filter.Query()
	r, err := db.Query(query, args...)
	if err != nil {
		return l, err
	}
	defer r.Close()

	for r.Next() {
		snap := &Snapshot{}
		var table, fsinfo sql.NullString
		if err = r.Scan(
			&snap.UUID, &snap.OperationID, &snap.Disk, &snap.TakenAt,
			&table, &fsinfo); err != nil {
			return l, err
		}
		if table.Valid {
			snap.PartitionTable = table.String
		}
		if fsinfo.Valid {
			snap.FilesystemInfo = fsinfo.String
		}

		l = append(l, snap)
	}

	return l, nil
}

// AttachSnapshot records the given disk state against an operation
// still in flight.  It may be called any number of times per record
// (before and after a resize, say) but never once the record has gone
// terminal.
func (db *DB) AttachSnapshot(id int64, state disk.State) error {
	op, err := db.GetOperation(id)
	if err != nil {
		return err
	}
	if op == nil {
		return NewErrNotFound("operation %d does not exist", id)
	}
	if op.Finalized() {
		return NewErrFinalized("operation %d is already %s", id, op.Status)
	}

	table, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("unable to encode partition table for snapshot: %s", err)
	}

	fsinfo := make(map[string]string)
	for _, p := range state.Partitions {
		fsinfo[p.Ref] = string(p.Filesystem)
	}
	info, err := json.Marshal(fsinfo)
	if err != nil {
		return fmt.Errorf("unable to encode filesystem info for snapshot: %s", err)
	}

	return db.Exec(
		`INSERT INTO snapshots (uuid, operation_id, disk, taken_at, partition_table, filesystem_info)
		      VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewRandom().String(), id, state.Disk, time.Now().Unix(),
		string(table), string(info),
	)
}
