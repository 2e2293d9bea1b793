package capability

import (
	"sort"

	"github.com/diskrim/diskrim/disk"
)

// The matrix is a static data table.  Lookups never fail with an error;
// a combination the table does not know is simply unsupported, which is
// a normal outcome (XFS cannot shrink, Windows cannot format ext4).

type Operation string

const (
	FormatOp Operation = "format"
	ResizeOp Operation = "resize"
	RepairOp Operation = "repair"
)

type tools struct {
	format   string
	resize   string
	growOnly bool
	repair   string
}

var matrix = map[disk.FilesystemKind]map[disk.Platform]tools{
	disk.FilesystemNTFS: {
		disk.PlatformWindows: {format: "format", repair: "chkdsk"},
		disk.PlatformLinux:   {format: "mkfs.ntfs", resize: "ntfsresize", repair: "ntfsfix"},
	},
	disk.FilesystemExFAT: {
		disk.PlatformWindows: {format: "format"},
		disk.PlatformLinux:   {format: "mkfs.exfat", repair: "fsck.exfat"},
	},
	disk.FilesystemFAT32: {
		disk.PlatformWindows: {format: "format"},
		disk.PlatformLinux:   {format: "mkfs.vfat", repair: "fsck.vfat"},
	},
	disk.FilesystemExt2: {
		disk.PlatformLinux: {format: "mkfs.ext2", resize: "resize2fs", repair: "e2fsck"},
	},
	disk.FilesystemExt3: {
		disk.PlatformLinux: {format: "mkfs.ext3", resize: "resize2fs", repair: "e2fsck"},
	},
	disk.FilesystemExt4: {
		disk.PlatformLinux: {format: "mkfs.ext4", resize: "resize2fs", repair: "e2fsck"},
	},
	disk.FilesystemXFS: {
		// xfs_growfs can only ever grow; shrink lookups are refused below
		disk.PlatformLinux: {format: "mkfs.xfs", resize: "xfs_growfs", growOnly: true, repair: "xfs_repair"},
	},
	disk.FilesystemBtrfs: {
		disk.PlatformLinux: {format: "mkfs.btrfs", resize: "btrfs", repair: "btrfs"},
	},
	disk.FilesystemSwap: {
		disk.PlatformLinux: {format: "mkswap"},
	},
}

// Filesystem minimum viable sizes, in bytes.  A create below these is
// rejected before anything touches the disk.
var minimumSizes = map[disk.FilesystemKind]uint64{
	disk.FilesystemNTFS:  16 << 20,
	disk.FilesystemExt2:  16 << 20,
	disk.FilesystemExt3:  16 << 20,
	disk.FilesystemExt4:  16 << 20,
	disk.FilesystemXFS:   300 << 20,
	disk.FilesystemBtrfs: 256 << 20,
}

// FAT32 tops out at 2TiB; nothing else in the table carries a ceiling.
var maximumSizes = map[disk.FilesystemKind]uint64{
	disk.FilesystemFAT32: 2 << 40,
}

func Format(fs disk.FilesystemKind, platform disk.Platform) (FormatContract, bool) {
	t, ok := matrix[fs][platform]
	if !ok || t.format == "" {
		return FormatContract{}, false
	}
	return FormatContract{Command: t.format, Filesystem: fs}, true
}

// Resize returns the resize contract for a filesystem, refusing shrink
// requests against grow-only filesystems regardless of platform.
func Resize(fs disk.FilesystemKind, platform disk.Platform, shrink bool) (ResizeContract, bool) {
	t, ok := matrix[fs][platform]
	if !ok || t.resize == "" {
		return ResizeContract{}, false
	}
	if shrink && t.growOnly {
		return ResizeContract{}, false
	}
	return ResizeContract{Command: t.resize, Filesystem: fs, GrowOnly: t.growOnly}, true
}

func Repair(fs disk.FilesystemKind, platform disk.Platform) (RepairContract, bool) {
	t, ok := matrix[fs][platform]
	if !ok || t.repair == "" {
		return RepairContract{}, false
	}
	return RepairContract{Command: t.repair, Filesystem: fs}, true
}

// Partition-table editing is keyed on platform alone.
var tableTools = map[disk.Platform]string{
	disk.PlatformLinux:   "parted",
	disk.PlatformWindows: "diskpart",
}

func Table(platform disk.Platform, action TableAction) (TableContract, bool) {
	tool, ok := tableTools[platform]
	if !ok {
		return TableContract{}, false
	}
	// diskpart has no resizepart equivalent this core will drive
	if platform == disk.PlatformWindows && action == TableResize {
		return TableContract{}, false
	}
	return TableContract{Command: tool, Action: action}, true
}

// Wipe returns the overwrite-pass contract.  Windows has no supported
// wipe tool, so secure deletes there are refused up front.
func Wipe(platform disk.Platform) (WipeContract, bool) {
	if platform != disk.PlatformLinux {
		return WipeContract{}, false
	}
	return WipeContract{Command: "shred"}, true
}

func MinimumSize(fs disk.FilesystemKind) uint64 {
	return minimumSizes[fs]
}

func MaximumSize(fs disk.FilesystemKind) (uint64, bool) {
	max, ok := maximumSizes[fs]
	return max, ok
}

// SupportedFilesystems lists the filesystems that can be formatted on
// the given platform, sorted for stable presentation.
func SupportedFilesystems(platform disk.Platform) []disk.FilesystemKind {
	var l []disk.FilesystemKind
	for fs, platforms := range matrix {
		if t, ok := platforms[platform]; ok && t.format != "" {
			l = append(l, fs)
		}
	}
	sort.Slice(l, func(i, j int) bool { return l[i] < l[j] })
	return l
}
