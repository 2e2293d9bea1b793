package core_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/diskrim/diskrim/core"
	"github.com/diskrim/diskrim/disk"
)

type fakeRecord struct {
	Kind      string
	Disk      string
	Partition string
	Params    map[string]interface{}
	Status    string
	Error     string
	Snapshots int
}

// FakeLedger tracks records in memory with the same terminal-state
// rules as the real ledger.
type FakeLedger struct {
	mu      sync.Mutex
	nextID  int64
	Records map[int64]*fakeRecord

	FailBegin    bool
	FailComplete bool
}

func NewFakeLedger() *FakeLedger {
	return &FakeLedger{Records: map[int64]*fakeRecord{}}
}

func (l *FakeLedger) BeginOperation(kind, diskRef, partRef string, params map[string]interface{}) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.FailBegin {
		return 0, fmt.Errorf("ledger is on fire")
	}
	if diskRef == "" && partRef == "" {
		return 0, fmt.Errorf("cannot record an operation without a target")
	}

	l.nextID++
	l.Records[l.nextID] = &fakeRecord{
		Kind:      kind,
		Disk:      diskRef,
		Partition: partRef,
		Params:    params,
		Status:    "started",
	}
	return l.nextID, nil
}

func (l *FakeLedger) CompleteOperation(id int64) error {
	return l.finalize(id, "completed", "")
}

func (l *FakeLedger) FailOperation(id int64, message string) error {
	return l.finalize(id, "failed", message)
}

func (l *FakeLedger) finalize(id int64, status, message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if status == "completed" && l.FailComplete {
		return fmt.Errorf("ledger is on fire")
	}

	rec, ok := l.Records[id]
	if !ok {
		return fmt.Errorf("operation %d does not exist", id)
	}
	if rec.Status != "started" {
		return fmt.Errorf("operation %d is already %s", id, rec.Status)
	}
	rec.Status = status
	rec.Error = message
	return nil
}

func (l *FakeLedger) AttachSnapshot(id int64, state disk.State) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.Records[id]
	if !ok {
		return fmt.Errorf("operation %d does not exist", id)
	}
	if rec.Status != "started" {
		return fmt.Errorf("operation %d is already %s", id, rec.Status)
	}
	rec.Snapshots++
	return nil
}

func (l *FakeLedger) Record(id int64) *fakeRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Records[id]
}

func (l *FakeLedger) Only() *fakeRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.Records) != 1 {
		return nil
	}
	for _, rec := range l.Records {
		return rec
	}
	return nil
}

// FakeInvoker records every invocation and answers with whatever the
// Respond hook says (nil hook = everything succeeds).
type FakeInvoker struct {
	mu    sync.Mutex
	calls []core.Invocation

	Respond func(inv core.Invocation) error

	// Block, when set, is received from before every call returns;
	// lets a test hold an operation mid-step.
	Block chan struct{}
}

func (f *FakeInvoker) Invoke(ctx context.Context, inv core.Invocation) error {
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	f.mu.Unlock()

	if f.Block != nil {
		<-f.Block
	}
	if f.Respond != nil {
		return f.Respond(inv)
	}
	return nil
}

func (f *FakeInvoker) Calls() []core.Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Invocation, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *FakeInvoker) Tools() []string {
	var l []string
	for _, inv := range f.Calls() {
		l = append(l, inv.Contract.Tool())
	}
	return l
}

// FakeEnumerator serves a single fixed disk layout.
type FakeEnumerator struct {
	State      disk.State
	Partitions map[string]disk.Partition
}

func (f *FakeEnumerator) DiskState(diskRef string) (disk.State, error) {
	if diskRef != f.State.Disk {
		return disk.State{}, fmt.Errorf("no such disk %s", diskRef)
	}
	return f.State, nil
}

func (f *FakeEnumerator) Partition(partRef string) (disk.Partition, string, error) {
	p, ok := f.Partitions[partRef]
	if !ok {
		return disk.Partition{}, "", fmt.Errorf("no such partition %s", partRef)
	}
	return p, f.State.Disk, nil
}

type FakePrivileges struct {
	Admin bool
	OS    disk.Platform
}

func (f FakePrivileges) Elevated() bool          { return f.Admin }
func (f FakePrivileges) Platform() disk.Platform { return f.OS }
