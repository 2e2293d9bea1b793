package capability

import (
	"github.com/diskrim/diskrim/disk"
)

// A Contract names the platform tool an external invoker should run
// for one step of an orchestrated operation.  This core never builds
// command lines from it; it is an opaque token as far as the
// orchestrator is concerned.
type Contract interface {
	Tool() string
	Kind() Operation
}

type FormatContract struct {
	Command    string
	Filesystem disk.FilesystemKind
}

func (c FormatContract) Tool() string    { return c.Command }
func (c FormatContract) Kind() Operation { return FormatOp }

type ResizeContract struct {
	Command    string
	Filesystem disk.FilesystemKind
	GrowOnly   bool
}

func (c ResizeContract) Tool() string    { return c.Command }
func (c ResizeContract) Kind() Operation { return ResizeOp }

type RepairContract struct {
	Command    string
	Filesystem disk.FilesystemKind
}

func (c RepairContract) Tool() string    { return c.Command }
func (c RepairContract) Kind() Operation { return RepairOp }

type TableAction string

const (
	TableCreate TableAction = "mkpart"
	TableRemove TableAction = "rm"
	TableResize TableAction = "resizepart"
)

// TableContract covers partition-table edits, which are keyed on the
// platform's partitioning tool rather than on a filesystem.
type TableContract struct {
	Command string
	Action  TableAction
}

func (c TableContract) Tool() string    { return c.Command }
func (c TableContract) Kind() Operation { return Operation("table:" + string(c.Action)) }

// WipeContract covers one secure-overwrite pass.  The data pattern
// written is the invoker's concern, not ours.
type WipeContract struct {
	Command string
}

func (c WipeContract) Tool() string    { return c.Command }
func (c WipeContract) Kind() Operation { return Operation("wipe") }
