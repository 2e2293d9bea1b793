package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/diskrim/diskrim/disk"
)

// Every gate in this package is a pure function: parameters in,
// Outcome out, no side effects.  The orchestrator treats any rejection
// as a fatal pre-execution failure and records it in the ledger.

type Outcome struct {
	OK      bool
	Reason  string
	Warning string
}

func Accept() Outcome {
	return Outcome{OK: true}
}

func AcceptWithWarning(format string, args ...interface{}) Outcome {
	return Outcome{OK: true, Warning: fmt.Sprintf(format, args...)}
}

func Reject(format string, args ...interface{}) Outcome {
	return Outcome{Reason: fmt.Sprintf(format, args...)}
}

type RefKind int

const (
	DiskRef RefKind = iota
	PartitionRef
)

var (
	linuxDisk      = regexp.MustCompile(`^/dev/(sd[a-z]|hd[a-z]|vd[a-z]|nvme\d+n\d+|mmcblk\d+)$`)
	linuxPartition = regexp.MustCompile(`^/dev/(sd[a-z]\d+|hd[a-z]\d+|vd[a-z]\d+|nvme\d+n\d+p\d+|mmcblk\d+p\d+)$`)
	windowsDisk    = regexp.MustCompile(`^\\\\\.\\PhysicalDrive\d+$`)
	windowsVolume  = regexp.MustCompile(`^[A-Z]:$`)
)

// Identifier rejects malformed disk/partition references.  This is a
// hard precondition, not a warning; anything that does not match the
// platform's device syntax fails closed.
func Identifier(ref string, kind RefKind, platform disk.Platform) Outcome {
	if ref == "" {
		return Reject("empty %s identifier", refName(kind))
	}

	var pattern *regexp.Regexp
	switch platform {
	case disk.PlatformLinux:
		if kind == DiskRef {
			pattern = linuxDisk
		} else {
			pattern = linuxPartition
		}
	case disk.PlatformWindows:
		if kind == DiskRef {
			pattern = windowsDisk
		} else {
			pattern = windowsVolume
		}
	default:
		return Reject("unrecognized platform '%s'", platform)
	}

	if !pattern.MatchString(ref) {
		return Reject("invalid %s identifier '%s'", refName(kind), ref)
	}
	return Accept()
}

func refName(kind RefKind) string {
	if kind == DiskRef {
		return "disk"
	}
	return "partition"
}

// SystemDisk reports whether a reference looks like the disk the host
// booted from.  Heuristic; destructive calls against these require an
// explicit force flag from the caller.
func SystemDisk(ref string) bool {
	switch ref {
	case "/dev/sda", "/dev/hda", "/dev/nvme0n1", `\\.\PhysicalDrive0`:
		return true
	}
	return false
}

// AbsoluteSizeFloor is the smallest partition this core will create.
const AbsoluteSizeFloor uint64 = 1 << 20 // 1 MiB

// Size checks a byte count against a floor and an optional ceiling
// (pass 0 for no ceiling).  Sizes that are not whole MiB multiples are
// accepted but flagged, since the table tool will round them.
func Size(size, min, max uint64) Outcome {
	if min < AbsoluteSizeFloor {
		min = AbsoluteSizeFloor
	}
	if size < min {
		return Reject("size %s is below the minimum of %s", FormatSize(size), FormatSize(min))
	}
	if max > 0 && size > max {
		return Reject("size %s is above the maximum of %s", FormatSize(size), FormatSize(max))
	}
	if size%(1<<20) != 0 {
		return AcceptWithWarning("size %d is not MiB-aligned and will be rounded", size)
	}
	return Accept()
}

const forbiddenLabelChars = `<>:"/\|?*`

// Label enforces per-filesystem label length ceilings and the shared
// forbidden-character set.  FAT32 labels must already be uppercase;
// mismatched case is rejected, never silently corrected.
func Label(label string, fs disk.FilesystemKind) Outcome {
	if label == "" {
		return Accept()
	}

	switch {
	case fs == disk.FilesystemNTFS:
		if len(label) > 32 {
			return Reject("ntfs labels must be 32 characters or less")
		}
	case fs == disk.FilesystemFAT32:
		if len(label) > 11 {
			return Reject("fat32 labels must be 11 characters or less")
		}
		if label != strings.ToUpper(label) {
			return Reject("fat32 labels must be uppercase (got '%s')", label)
		}
	case fs.ExtFamily():
		if len(label) > 16 {
			return Reject("ext labels must be 16 characters or less")
		}
	}

	if i := strings.IndexAny(label, forbiddenLabelChars); i >= 0 {
		return Reject("label contains forbidden character '%c'", label[i])
	}
	return Accept()
}

// Privilege is the first gate for every destructive operation kind.
func Privilege(elevated bool) Outcome {
	if !elevated {
		return Reject("administrator/root privileges required")
	}
	return Accept()
}
