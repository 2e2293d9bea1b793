package db

type v2Schema struct{}

// v2 indexes the history and snapshot lookup paths, which get slow once
// an install has a few thousand audited operations behind it.
func (s v2Schema) Deploy(db *DB) error {
	err := db.Exec(`CREATE INDEX ix_operations_created_at
                      ON operations (created_at)`)
	if err != nil {
		return err
	}

	err = db.Exec(`CREATE INDEX ix_snapshots_operation_id
                      ON snapshots (operation_id)`)
	if err != nil {
		return err
	}

	return db.Exec(`UPDATE schema_info SET version = 2`)
}
