package db_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	// sql drivers
	_ "github.com/mattn/go-sqlite3"

	. "github.com/diskrim/diskrim/db"
)

var _ = Describe("Database", func() {
	Describe("Connecting to the database", func() {
		Context("With an invalid DSN", func() {
			It("should fail", func() {
				db := &DB{
					Driver: "invalid",
					DSN:    "does-not-matter",
				}

				Ω(db.Connect()).Should(HaveOccurred())
				Ω(db.Connected()).Should(BeFalse())
				Ω(db.Disconnect()).Should(Succeed())
			})
		})

		Context("With an in-memory SQLite database", func() {
			It("should succeed", func() {
				db := &DB{
					Driver: "sqlite3",
					DSN:    ":memory:",
				}

				Ω(db.Connect()).Should(Succeed())
				Ω(db.Connected()).Should(BeTrue())
				Ω(db.Disconnect()).Should(Succeed())
			})
		})
	})

	Describe("Deploying the schema", func() {
		var db *DB

		BeforeEach(func() {
			db = &DB{
				Driver: "sqlite3",
				DSN:    ":memory:",
			}
			Ω(db.Connect()).Should(Succeed())
		})

		AfterEach(func() {
			db.Disconnect()
		})

		It("reports version 0 on an empty database", func() {
			v, err := db.SchemaVersion()
			Ω(err).ShouldNot(HaveOccurred())
			Ω(v).Should(Equal(0))
		})

		It("deploys to the current schema version", func() {
			Ω(db.Setup()).Should(Succeed())

			v, err := db.SchemaVersion()
			Ω(err).ShouldNot(HaveOccurred())
			Ω(v).Should(Equal(CurrentSchema))
		})

		It("is a no-op when already at the current version", func() {
			Ω(db.Setup()).Should(Succeed())
			Ω(db.Setup()).Should(Succeed())
		})
	})
})
