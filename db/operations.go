package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	StartedStatus   = "started"
	CompletedStatus = "completed"
	FailedStatus    = "failed"
)

// An Operation is the durable audit unit for one orchestrated
// destructive action, from intent to terminal outcome.  Records are
// created in `started`, move exactly once to `completed` or `failed`,
// and are never deleted.
type Operation struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	Disk        string `json:"disk,omitempty"`
	Partition   string `json:"partition,omitempty"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	CompletedAt int64  `json:"completed_at,omitempty"`

	Params    map[string]interface{} `json:"params,omitempty"`
	RawParams string                 `json:"-"`
}

func (op *Operation) Finalized() bool {
	return op.Status != StartedStatus
}

type OperationFilter struct {
	ForID        int64
	ForKind      string
	ForStatus    string
	ForDisk      string
	ForPartition string
	Limit        int
}

func (f *OperationFilter) Query() (string, []interface{}) {
	wheres := []string{"o.id = o.id"}
	var args []interface{}

	if f.ForID != 0 {
		wheres = append(wheres, "o.id = ?")
		args = append(args, f.ForID)
	}

	if f.ForKind != "" {
		wheres = append(wheres, "o.kind = ?")
		args = append(args, f.ForKind)
	}

	if f.ForStatus != "" {
		wheres = append(wheres, "o.status = ?")
		args = append(args, f.ForStatus)
	}

	if f.ForDisk != "" {
		wheres = append(wheres, "o.disk = ?")
		args = append(args, f.ForDisk)
	}

	if f.ForPartition != "" {
		wheres = append(wheres, "o.part = ?")
		args = append(args, f.ForPartition)
	}

	limit := ""
	if f.Limit > 0 {
		limit = " LIMIT ?"
		args = append(args, f.Limit)
	}

	return `
	    SELECT o.id, o.kind, o.disk, o.part, o.params,
	           o.status, o.error, o.created_at, o.completed_at

	      FROM operations o

	     WHERE ` + strings.Join(wheres, " AND ") + `
	  ORDER BY o.created_at DESC, o.id DESC
	` + limit, args
}

// GetAllOperations returns the audit history matching the filter, most
// recently created first.
func (db *DB) GetAllOperations(filter *OperationFilter) ([]*Operation, error) {
	if filter == nil {
		filter = &OperationFilter{}
	}

	l := []*Operation{}
	query, args := filter.Query()
	r, err := db.Query(query, args...)
	if err != nil {
		return l, err
	}
	defer r.Close()

	for r.Next() {
		op := &Operation{}
		var (
			diskRef, partRef, params, errText sql.NullString
			completed                         *int64
		)
		if err = r.Scan(
			&op.ID, &op.Kind, &diskRef, &partRef, &params,
			&op.Status, &errText, &op.CreatedAt, &completed); err != nil {
			return l, err
		}

		if diskRef.Valid {
			op.Disk = diskRef.String
		}
		if partRef.Valid {
			op.Partition = partRef.String
		}
		if errText.Valid {
			op.Error = errText.String
		}
		if completed != nil {
			op.CompletedAt = *completed
		}
		if params.Valid && params.String != "" {
			op.RawParams = params.String
			if err := json.Unmarshal([]byte(params.String), &op.Params); err != nil {
				return l, fmt.Errorf("operation %d has unparseable parameters: %s", op.ID, err)
			}
		}

		l = append(l, op)
	}

	return l, nil
}

func (db *DB) GetOperation(id int64) (*Operation, error) {
	l, err := db.GetAllOperations(&OperationFilter{ForID: id})
	if err != nil {
		return nil, err
	}
	if len(l) == 0 {
		return nil, nil
	}
	return l[0], nil
}

// BeginOperation creates a record in `started` and hands back its
// identity.  Nothing destructive may run until this has succeeded; a
// caller that cannot write the ledger must abort before touching
// storage.
func (db *DB) BeginOperation(kind, diskRef, partRef string, params map[string]interface{}) (int64, error) {
	if kind == "" {
		return 0, fmt.Errorf("cannot record an operation without a kind")
	}
	if diskRef == "" && partRef == "" {
		return 0, fmt.Errorf("cannot record an operation without a disk or partition target")
	}

	raw := ""
	if len(params) != 0 {
		b, err := json.Marshal(params)
		if err != nil {
			return 0, fmt.Errorf("unable to encode operation parameters: %s", err)
		}
		raw = string(b)
	}

	return db.ExecLastID(
		`INSERT INTO operations (kind, disk, part, params, status, created_at)
		      VALUES (?, ?, ?, ?, ?, ?)`,
		kind, orNil(diskRef), orNil(partRef), orNil(raw), StartedStatus, time.Now().Unix(),
	)
}

// CompleteOperation transitions `started -> completed` and stamps the
// completion time.  Records already in a terminal state are rejected.
func (db *DB) CompleteOperation(id int64) error {
	return db.finalizeOperation(id, CompletedStatus, "")
}

// FailOperation transitions `started -> failed`, stamps the completion
// time, and stores the failure text.  Same terminal-state rejection
// rule as CompleteOperation.
func (db *DB) FailOperation(id int64, message string) error {
	if message == "" {
		message = "unknown error"
	}
	return db.finalizeOperation(id, FailedStatus, message)
}

func (db *DB) finalizeOperation(id int64, status, message string) error {
	n, err := db.ExecAffected(
		`UPDATE operations SET status = ?, error = ?, completed_at = ?
		  WHERE id = ? AND status = ?`,
		status, orNil(message), time.Now().Unix(), id, StartedStatus,
	)
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	// figure out whether the record is missing or already terminal,
	// so misuse gets a useful error
	op, err := db.GetOperation(id)
	if err != nil {
		return err
	}
	if op == nil {
		return NewErrNotFound("operation %d does not exist", id)
	}
	return NewErrFinalized("operation %d is already %s", id, op.Status)
}

func orNil(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
