package db

import (
	"fmt"
	"sort"

	"github.com/go-sql-driver/mysql"
)

var CurrentSchema int = currentSchema()

var Schemas = map[int]Schema{
	1: v1Schema{},
	2: v2Schema{},
}

type Schema interface {
	Deploy(*DB) error
}

func (db *DB) Setup() error {
	current, err := db.SchemaVersion()
	if err != nil {
		return err
	}

	if current > CurrentSchema {
		return fmt.Errorf("schema version %d is newer than this version of diskrim (%d)", current, CurrentSchema)
	}

	for _, version := range schemaVersions() {
		if current < version {
			if err := Schemas[version].Deploy(db); err != nil {
				return err
			}
		}
	}

	return nil
}

func schemaVersions() []int {
	var versions []int
	for k := range Schemas {
		versions = append(versions, k)
	}
	sort.Ints(versions)
	return versions
}

func currentSchema() int {
	versions := schemaVersions()
	return versions[len(versions)-1]
}

// missingSchemaTable recognizes the errors a fresh database raises
// when schema_info has never been deployed; the two drivers phrase
// this differently (mysql raises error 1146, sqlite a bare string).
func missingSchemaTable(err error) bool {
	if e, ok := err.(*mysql.MySQLError); ok {
		return e.Number == 1146
	}
	return err.Error() == "no such table: schema_info"
}

func (db *DB) SchemaVersion() (int, error) {
	r, err := db.Query(`SELECT version FROM schema_info LIMIT 1`)
	if err != nil {
		if missingSchemaTable(err) {
			return 0, nil
		}
		return 0, err
	}
	defer r.Close()

	// no records = no schema
	if !r.Next() {
		return 0, nil
	}

	var v int
	if err := r.Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %s", err)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid schema version %d found", v)
	}

	return v, nil
}
