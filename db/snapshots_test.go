package db_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/diskrim/diskrim/disk"

	. "github.com/diskrim/diskrim/db"
)

var _ = Describe("Snapshots", func() {
	var db *DB
	var id int64

	state := disk.State{
		Disk:      "/dev/sdb",
		TableType: "gpt",
		SizeBytes: 500 << 30,
		Partitions: []disk.Partition{
			{Ref: "/dev/sdb1", Number: 1, SizeBytes: 100 << 30, Filesystem: disk.FilesystemExt4, Label: "data"},
			{Ref: "/dev/sdb2", Number: 2, SizeBytes: 400 << 30, Filesystem: disk.FilesystemXFS},
		},
	}

	BeforeEach(func() {
		db = &DB{
			Driver: "sqlite3",
			DSN:    ":memory:",
		}
		Ω(db.Connect()).Should(Succeed())
		Ω(db.Setup()).Should(Succeed())

		var err error
		id, err = db.BeginOperation(disk.ResizeOperation, "", "/dev/sdb1", nil)
		Ω(err).ShouldNot(HaveOccurred())
	})

	AfterEach(func() {
		db.Disconnect()
	})

	It("attaches snapshots to an in-flight operation", func() {
		Ω(db.AttachSnapshot(id, state)).Should(Succeed())
		Ω(db.AttachSnapshot(id, state)).Should(Succeed())

		l, err := db.GetAllSnapshots(&SnapshotFilter{ForOperation: id})
		Ω(err).ShouldNot(HaveOccurred())
		Ω(l).Should(HaveLen(2))
		Ω(l[0].Disk).Should(Equal("/dev/sdb"))
		Ω(l[0].UUID).ShouldNot(Equal(l[1].UUID))
		Ω(l[0].PartitionTable).Should(ContainSubstring(`"table_type":"gpt"`))
		Ω(l[0].FilesystemInfo).Should(ContainSubstring(`"/dev/sdb1":"ext4"`))
	})

	It("refuses snapshots against terminal records", func() {
		Ω(db.CompleteOperation(id)).Should(Succeed())

		err := db.AttachSnapshot(id, state)
		Ω(err).Should(HaveOccurred())
		Ω(err).Should(BeAssignableToTypeOf(ErrFinalized{}))
	})

	It("refuses snapshots against records that do not exist", func() {
		err := db.AttachSnapshot(31337, state)
		Ω(err).Should(BeAssignableToTypeOf(ErrNotFound{}))
	})
})
