package db

import (
	"fmt"
)

type v1Schema struct{}

func (s v1Schema) Deploy(db *DB) error {
	err := db.Exec(`CREATE TABLE schema_info (
               version INTEGER
             )`)
	if err != nil {
		return err
	}

	err = db.Exec(`INSERT INTO schema_info VALUES (1)`)
	if err != nil {
		return err
	}

	switch db.Driver {
	case "mysql":
		err = db.Exec(`CREATE TABLE operations (
               id            INTEGER NOT NULL AUTO_INCREMENT,
               kind          TEXT NOT NULL,
               disk          TEXT,
               part          TEXT,
               params        TEXT,
               status        TEXT NOT NULL DEFAULT 'started',
               error         TEXT,
               created_at    INTEGER NOT NULL,
               completed_at  INTEGER,
               PRIMARY KEY (id)
             )`)
	case "sqlite3":
		err = db.Exec(`CREATE TABLE operations (
               id            INTEGER PRIMARY KEY AUTOINCREMENT,
               kind          TEXT NOT NULL,
               disk          TEXT,
               part          TEXT,
               params        TEXT,
               status        TEXT NOT NULL DEFAULT 'started',
               error         TEXT,
               created_at    INTEGER NOT NULL,
               completed_at  INTEGER
             )`)
	default:
		err = fmt.Errorf("unsupported database driver '%s'", db.Driver)
	}
	if err != nil {
		return err
	}

	switch db.Driver {
	case "mysql":
		err = db.Exec(`CREATE TABLE snapshots (
               uuid             VARCHAR(36) NOT NULL,
               operation_id     INTEGER NOT NULL,
               disk             TEXT NOT NULL,
               taken_at         INTEGER NOT NULL,
               partition_table  TEXT,
               filesystem_info  TEXT,
               PRIMARY KEY (uuid)
             )`)
	case "sqlite3":
		err = db.Exec(`CREATE TABLE snapshots (
               uuid             UUID PRIMARY KEY,
               operation_id     INTEGER NOT NULL
                                REFERENCES operations (id),
               disk             TEXT NOT NULL,
               taken_at         INTEGER NOT NULL,
               partition_table  TEXT,
               filesystem_info  TEXT
             )`)
	}
	if err != nil {
		return err
	}

	return nil
}
