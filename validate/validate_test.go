package validate_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/diskrim/diskrim/disk"
	"github.com/diskrim/diskrim/validate"
)

var _ = Describe("Validators", func() {
	Describe("Identifier", func() {
		It("accepts well-formed linux disk references", func() {
			for _, ref := range []string{"/dev/sda", "/dev/sdz", "/dev/hdb", "/dev/vdc", "/dev/nvme0n1", "/dev/nvme12n3", "/dev/mmcblk0"} {
				out := validate.Identifier(ref, validate.DiskRef, disk.PlatformLinux)
				Ω(out.OK).Should(BeTrue(), "expected %s to be accepted", ref)
			}
		})

		It("rejects malformed linux disk references", func() {
			for _, ref := range []string{"", "sda", "/dev/sda1", "/dev/sdaa", "/dev/nvme0", "/etc/passwd", "/dev/sda; rm -rf /"} {
				out := validate.Identifier(ref, validate.DiskRef, disk.PlatformLinux)
				Ω(out.OK).Should(BeFalse(), "expected %s to be rejected", ref)
			}
		})

		It("tells partitions and whole disks apart on linux", func() {
			out := validate.Identifier("/dev/sda1", validate.PartitionRef, disk.PlatformLinux)
			Ω(out.OK).Should(BeTrue())

			out = validate.Identifier("/dev/nvme0n1p2", validate.PartitionRef, disk.PlatformLinux)
			Ω(out.OK).Should(BeTrue())

			out = validate.Identifier("/dev/mmcblk0p1", validate.PartitionRef, disk.PlatformLinux)
			Ω(out.OK).Should(BeTrue())

			out = validate.Identifier("/dev/sda", validate.PartitionRef, disk.PlatformLinux)
			Ω(out.OK).Should(BeFalse())

			out = validate.Identifier("/dev/nvme0n1", validate.PartitionRef, disk.PlatformLinux)
			Ω(out.OK).Should(BeFalse())
		})

		It("handles windows physical drives and volumes", func() {
			out := validate.Identifier(`\\.\PhysicalDrive0`, validate.DiskRef, disk.PlatformWindows)
			Ω(out.OK).Should(BeTrue())

			out = validate.Identifier(`\\.\PhysicalDrive17`, validate.DiskRef, disk.PlatformWindows)
			Ω(out.OK).Should(BeTrue())

			out = validate.Identifier("C:", validate.PartitionRef, disk.PlatformWindows)
			Ω(out.OK).Should(BeTrue())

			out = validate.Identifier("c:", validate.PartitionRef, disk.PlatformWindows)
			Ω(out.OK).Should(BeFalse())

			out = validate.Identifier(`C:\`, validate.PartitionRef, disk.PlatformWindows)
			Ω(out.OK).Should(BeFalse())

			out = validate.Identifier("/dev/sda", validate.DiskRef, disk.PlatformWindows)
			Ω(out.OK).Should(BeFalse())
		})
	})

	Describe("SystemDisk", func() {
		It("flags the usual boot disks", func() {
			Ω(validate.SystemDisk("/dev/sda")).Should(BeTrue())
			Ω(validate.SystemDisk("/dev/nvme0n1")).Should(BeTrue())
			Ω(validate.SystemDisk(`\\.\PhysicalDrive0`)).Should(BeTrue())

			Ω(validate.SystemDisk("/dev/sdb")).Should(BeFalse())
			Ω(validate.SystemDisk("/dev/nvme1n1")).Should(BeFalse())
			Ω(validate.SystemDisk(`\\.\PhysicalDrive1`)).Should(BeFalse())
		})
	})

	Describe("Size", func() {
		It("enforces the absolute floor even with no filesystem minimum", func() {
			out := validate.Size(512<<10, 0, 0)
			Ω(out.OK).Should(BeFalse())
			Ω(out.Reason).Should(ContainSubstring("below the minimum"))

			out = validate.Size(1<<20, 0, 0)
			Ω(out.OK).Should(BeTrue())
		})

		It("enforces filesystem minimums at the exact boundary", func() {
			out := validate.Size(299<<20, 300<<20, 0)
			Ω(out.OK).Should(BeFalse())

			out = validate.Size(300<<20, 300<<20, 0)
			Ω(out.OK).Should(BeTrue())
		})

		It("enforces ceilings when the filesystem has one", func() {
			out := validate.Size(3<<40, 0, 2<<40)
			Ω(out.OK).Should(BeFalse())
			Ω(out.Reason).Should(ContainSubstring("above the maximum"))

			out = validate.Size(2<<40, 0, 2<<40)
			Ω(out.OK).Should(BeTrue())
		})

		It("accepts unaligned sizes with a warning", func() {
			out := validate.Size(10<<20+512, 0, 0)
			Ω(out.OK).Should(BeTrue())
			Ω(out.Warning).Should(ContainSubstring("not MiB-aligned"))

			out = validate.Size(10<<20, 0, 0)
			Ω(out.OK).Should(BeTrue())
			Ω(out.Warning).Should(BeEmpty())
		})
	})

	Describe("Label", func() {
		It("always accepts the empty label", func() {
			Ω(validate.Label("", disk.FilesystemFAT32).OK).Should(BeTrue())
			Ω(validate.Label("", disk.FilesystemNTFS).OK).Should(BeTrue())
		})

		It("enforces per-filesystem length ceilings", func() {
			Ω(validate.Label("abcdefghijklmnopqrstuvwxyz012345", disk.FilesystemNTFS).OK).Should(BeTrue())
			Ω(validate.Label("abcdefghijklmnopqrstuvwxyz0123456", disk.FilesystemNTFS).OK).Should(BeFalse())

			Ω(validate.Label("sixteen_chars_ok", disk.FilesystemExt4).OK).Should(BeTrue())
			Ω(validate.Label("seventeen_chars__", disk.FilesystemExt4).OK).Should(BeFalse())
		})

		It("rejects lowercase fat32 labels for their case, not their length", func() {
			out := validate.Label("BACKUPDRIVE", disk.FilesystemFAT32)
			Ω(out.OK).Should(BeTrue())

			out = validate.Label("backupdrive", disk.FilesystemFAT32)
			Ω(out.OK).Should(BeFalse())
			Ω(out.Reason).Should(ContainSubstring("uppercase"))

			out = validate.Label("BACKUPDRIVES", disk.FilesystemFAT32)
			Ω(out.OK).Should(BeFalse())
			Ω(out.Reason).Should(ContainSubstring("11 characters"))
		})

		It("rejects the forbidden character set everywhere", func() {
			for _, label := range []string{"a<b", "a>b", "a:b", `a"b`, "a/b", `a\b`, "a|b", "a?b", "a*b"} {
				out := validate.Label(label, disk.FilesystemNTFS)
				Ω(out.OK).Should(BeFalse(), "expected label %q to be rejected", label)
				Ω(out.Reason).Should(ContainSubstring("forbidden character"))
			}
		})
	})

	Describe("Privilege", func() {
		It("is a hard gate", func() {
			Ω(validate.Privilege(true).OK).Should(BeTrue())

			out := validate.Privilege(false)
			Ω(out.OK).Should(BeFalse())
			Ω(out.Reason).Should(ContainSubstring("privileges required"))
		})
	})
})
