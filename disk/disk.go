package disk

import (
	"fmt"
)

type FilesystemKind string

const (
	FilesystemNTFS    FilesystemKind = "ntfs"
	FilesystemExFAT   FilesystemKind = "exfat"
	FilesystemFAT32   FilesystemKind = "fat32"
	FilesystemExt2    FilesystemKind = "ext2"
	FilesystemExt3    FilesystemKind = "ext3"
	FilesystemExt4    FilesystemKind = "ext4"
	FilesystemXFS     FilesystemKind = "xfs"
	FilesystemBtrfs   FilesystemKind = "btrfs"
	FilesystemSwap    FilesystemKind = "swap"
	FilesystemUnknown FilesystemKind = "unknown"
)

type Platform string

const (
	PlatformLinux   Platform = "linux"
	PlatformWindows Platform = "windows"
)

const (
	CreateOperation = "create_partition"
	DeleteOperation = "delete_partition"
	ResizeOperation = "resize_partition"
	FormatOperation = "format_partition"
	RepairOperation = "repair_filesystem"
	WipeOperation   = "secure_erase"
)

// ParseFilesystem maps a user-supplied filesystem name onto a known
// FilesystemKind, falling back to FilesystemUnknown.
func ParseFilesystem(s string) FilesystemKind {
	for _, fs := range []FilesystemKind{
		FilesystemNTFS, FilesystemExFAT, FilesystemFAT32,
		FilesystemExt2, FilesystemExt3, FilesystemExt4,
		FilesystemXFS, FilesystemBtrfs, FilesystemSwap,
	} {
		if s == string(fs) {
			return fs
		}
	}
	return FilesystemUnknown
}

func (fs FilesystemKind) ExtFamily() bool {
	return fs == FilesystemExt2 || fs == FilesystemExt3 || fs == FilesystemExt4
}

type Partition struct {
	Ref        string         `json:"ref"`
	Number     int            `json:"number"`
	SizeBytes  uint64         `json:"size_bytes"`
	Filesystem FilesystemKind `json:"filesystem"`
	Label      string         `json:"label"`
}

// State is what the enumeration collaborator reports for one disk at a
// point in time.  The orchestrator passes it verbatim to the ledger as
// snapshot material; nothing in this core interprets it beyond that.
type State struct {
	Disk       string      `json:"disk"`
	TableType  string      `json:"table_type"`
	SizeBytes  uint64      `json:"size_bytes"`
	Partitions []Partition `json:"partitions"`
}

type ProgressEvent struct {
	Percent int
	Message string
}

func (ev ProgressEvent) String() string {
	return fmt.Sprintf("%3d%% %s", ev.Percent, ev.Message)
}
