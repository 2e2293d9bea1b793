package db_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/diskrim/diskrim/disk"

	. "github.com/diskrim/diskrim/db"
)

var _ = Describe("Operation Ledger", func() {
	var db *DB

	BeforeEach(func() {
		db = &DB{
			Driver: "sqlite3",
			DSN:    ":memory:",
		}
		Ω(db.Connect()).Should(Succeed())
		Ω(db.Setup()).Should(Succeed())
	})

	AfterEach(func() {
		db.Disconnect()
	})

	Describe("Beginning operations", func() {
		It("assigns monotonically increasing identities", func() {
			first, err := db.BeginOperation(disk.CreateOperation, "/dev/sdb", "", nil)
			Ω(err).ShouldNot(HaveOccurred())

			second, err := db.BeginOperation(disk.DeleteOperation, "", "/dev/sdb1", nil)
			Ω(err).ShouldNot(HaveOccurred())

			Ω(second).Should(BeNumerically(">", first))
		})

		It("refuses a record without any target", func() {
			_, err := db.BeginOperation(disk.CreateOperation, "", "", nil)
			Ω(err).Should(HaveOccurred())
		})

		It("refuses a record without a kind", func() {
			_, err := db.BeginOperation("", "/dev/sdb", "", nil)
			Ω(err).Should(HaveOccurred())
		})

		It("stores parameters verbatim for later audit", func() {
			id, err := db.BeginOperation(disk.CreateOperation, "/dev/sdb", "", map[string]interface{}{
				"size":       1073741824,
				"filesystem": "ext4",
				"label":      "scratch",
			})
			Ω(err).ShouldNot(HaveOccurred())

			op, err := db.GetOperation(id)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(op).ShouldNot(BeNil())
			Ω(op.Params["filesystem"]).Should(Equal("ext4"))
			Ω(op.Params["label"]).Should(Equal("scratch"))
		})

		It("starts records in the started state with no completion time", func() {
			id, err := db.BeginOperation(disk.FormatOperation, "", "/dev/sdb1", nil)
			Ω(err).ShouldNot(HaveOccurred())

			op, err := db.GetOperation(id)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(op.Status).Should(Equal(StartedStatus))
			Ω(op.CreatedAt).ShouldNot(BeZero())
			Ω(op.CompletedAt).Should(BeZero())
			Ω(op.Finalized()).Should(BeFalse())
		})
	})

	Describe("Completing and failing operations", func() {
		var id int64

		BeforeEach(func() {
			var err error
			id, err = db.BeginOperation(disk.ResizeOperation, "", "/dev/sdb1", nil)
			Ω(err).ShouldNot(HaveOccurred())
		})

		It("transitions started -> completed and stamps the completion time", func() {
			Ω(db.CompleteOperation(id)).Should(Succeed())

			op, err := db.GetOperation(id)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(op.Status).Should(Equal(CompletedStatus))
			Ω(op.CompletedAt).ShouldNot(BeZero())
			Ω(op.Error).Should(Equal(""))
		})

		It("transitions started -> failed and keeps the error text", func() {
			Ω(db.FailOperation(id, "parted exited 1")).Should(Succeed())

			op, err := db.GetOperation(id)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(op.Status).Should(Equal(FailedStatus))
			Ω(op.CompletedAt).ShouldNot(BeZero())
			Ω(op.Error).Should(Equal("parted exited 1"))
		})

		It("never reopens a completed record", func() {
			Ω(db.CompleteOperation(id)).Should(Succeed())

			err := db.CompleteOperation(id)
			Ω(err).Should(HaveOccurred())
			Ω(err).Should(BeAssignableToTypeOf(ErrFinalized{}))

			err = db.FailOperation(id, "too late")
			Ω(err).Should(BeAssignableToTypeOf(ErrFinalized{}))

			op, _ := db.GetOperation(id)
			Ω(op.Status).Should(Equal(CompletedStatus))
			Ω(op.Error).Should(Equal(""))
		})

		It("never reopens a failed record", func() {
			Ω(db.FailOperation(id, "boom")).Should(Succeed())

			err := db.CompleteOperation(id)
			Ω(err).Should(BeAssignableToTypeOf(ErrFinalized{}))

			op, _ := db.GetOperation(id)
			Ω(op.Status).Should(Equal(FailedStatus))
			Ω(op.Error).Should(Equal("boom"))
		})

		It("rejects transitions on records that do not exist", func() {
			err := db.CompleteOperation(42424242)
			Ω(err).Should(BeAssignableToTypeOf(ErrNotFound{}))
		})
	})

	Describe("History queries", func() {
		It("returns the most recent records first, bounded by the limit", func() {
			var ids []int64
			for i := 0; i < 10; i++ {
				id, err := db.BeginOperation(disk.CreateOperation, "/dev/sdb", "", nil)
				Ω(err).ShouldNot(HaveOccurred())
				ids = append(ids, id)
			}

			l, err := db.GetAllOperations(&OperationFilter{Limit: 5})
			Ω(err).ShouldNot(HaveOccurred())
			Ω(l).Should(HaveLen(5))

			for i, op := range l {
				Ω(op.ID).Should(Equal(ids[9-i]))
			}
		})

		It("filters by status", func() {
			a, err := db.BeginOperation(disk.CreateOperation, "/dev/sdb", "", nil)
			Ω(err).ShouldNot(HaveOccurred())
			_, err = db.BeginOperation(disk.DeleteOperation, "", "/dev/sdb1", nil)
			Ω(err).ShouldNot(HaveOccurred())

			Ω(db.FailOperation(a, "nope")).Should(Succeed())

			l, err := db.GetAllOperations(&OperationFilter{ForStatus: FailedStatus})
			Ω(err).ShouldNot(HaveOccurred())
			Ω(l).Should(HaveLen(1))
			Ω(l[0].ID).Should(Equal(a))
		})

		It("filters by target partition", func() {
			_, err := db.BeginOperation(disk.DeleteOperation, "", "/dev/sdb1", nil)
			Ω(err).ShouldNot(HaveOccurred())
			_, err = db.BeginOperation(disk.DeleteOperation, "", "/dev/sdb2", nil)
			Ω(err).ShouldNot(HaveOccurred())

			l, err := db.GetAllOperations(&OperationFilter{ForPartition: "/dev/sdb2"})
			Ω(err).ShouldNot(HaveOccurred())
			Ω(l).Should(HaveLen(1))
			Ω(l[0].Partition).Should(Equal("/dev/sdb2"))
		})
	})
})
