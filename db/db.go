package db

import (
	"database/sql"
	"fmt"

	"github.com/jhunt/go-log"
)

type DB struct {
	connection *sql.DB
	Driver     string
	DSN        string

	qCache map[string]*sql.Stmt
}

func (db *DB) Copy() *DB {
	return &DB{
		Driver: db.Driver,
		DSN:    db.DSN,
	}
}

// Are we connected?
func (db *DB) Connected() bool {
	return db.connection != nil
}

// Connect to the backend database
func (db *DB) Connect() error {
	connection, err := sql.Open(db.Driver, db.DSN)
	if err != nil {
		return err
	}

	db.connection = connection
	if db.qCache == nil {
		db.qCache = make(map[string]*sql.Stmt)
	}
	return nil
}

// Disconnect from the backend database
func (db *DB) Disconnect() error {
	if db.connection != nil {
		if err := db.connection.Close(); err != nil {
			return err
		}
		db.connection = nil
		db.qCache = make(map[string]*sql.Stmt)
	}
	return nil
}

// Execute a non-data query (INSERT, UPDATE, DELETE, etc.)
func (db *DB) Exec(query string, args ...interface{}) error {
	_, err := db.exec(query, args...)
	return err
}

// Execute an INSERT and return the row id it assigned
func (db *DB) ExecLastID(query string, args ...interface{}) (int64, error) {
	r, err := db.exec(query, args...)
	if err != nil {
		return 0, err
	}
	return r.LastInsertId()
}

// Execute an UPDATE and return how many rows it touched
func (db *DB) ExecAffected(query string, args ...interface{}) (int64, error) {
	r, err := db.exec(query, args...)
	if err != nil {
		return 0, err
	}
	return r.RowsAffected()
}

func (db *DB) exec(query string, args ...interface{}) (sql.Result, error) {
	s, err := db.statement(query)
	if err != nil {
		return nil, err
	}

	log.Debugf("parameters: %v", args)
	return s.Exec(args...)
}

// Execute a data query (SELECT)
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	s, err := db.statement(query)
	if err != nil {
		return nil, err
	}

	log.Debugf("parameters: %v", args)
	r, err := s.Query(args...)
	if err != nil {
		return nil, err
	}

	return r, nil
}

// Execute a data query (SELECT) and return how many rows were returned
func (db *DB) Count(query string, args ...interface{}) (uint, error) {
	r, err := db.Query(query, args...)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	var n uint = 0
	for r.Next() {
		n++
	}
	return n, nil
}

// Return the prepared Statement for a given SQL query
func (db *DB) statement(query string) (*sql.Stmt, error) {
	if db.connection == nil {
		return nil, fmt.Errorf("not connected to database")
	}

	log.Debugf("executing SQL: %s", query)

	if q, ok := db.qCache[query]; ok {
		return q, nil
	}

	stmt, err := db.connection.Prepare(query)
	if err != nil {
		return nil, err
	}
	db.qCache[query] = stmt
	return stmt, nil
}
