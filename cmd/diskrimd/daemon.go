package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/jhunt/go-log"

	"github.com/diskrim/diskrim/core"
	"github.com/diskrim/diskrim/db"
)

// Daemon is the read-only surface over the operation ledger: history
// queries and per-operation snapshots for auditors, plus the
// prometheus scrape endpoint.  Nothing here mutates the ledger.
type Daemon struct {
	DB      *db.DB
	Metrics *core.Metrics
}

func (d *Daemon) Run(bind string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", d.Metrics.Handler())
	mux.HandleFunc("/v1/operations", d.getOperations)
	mux.HandleFunc("/v1/operations/", d.getSnapshots)
	return http.ListenAndServe(bind, mux)
}

func (d *Daemon) getOperations(w http.ResponseWriter, req *http.Request) {
	if req.Method != "GET" {
		w.WriteHeader(405)
		return
	}

	filter := db.OperationFilter{
		ForKind:      req.FormValue("kind"),
		ForStatus:    req.FormValue("status"),
		ForDisk:      req.FormValue("disk"),
		ForPartition: req.FormValue("partition"),
	}
	if s := req.FormValue("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			respond(w, 400, map[string]string{"error": "invalid limit parameter"})
			return
		}
		filter.Limit = n
	}

	l, err := d.DB.GetAllOperations(&filter)
	if err != nil {
		log.Errorf("failed to retrieve operations: %s", err)
		respond(w, 500, map[string]string{"error": "unable to query the ledger"})
		return
	}
	respond(w, 200, l)
}

func (d *Daemon) getSnapshots(w http.ResponseWriter, req *http.Request) {
	if req.Method != "GET" {
		w.WriteHeader(405)
		return
	}

	// /v1/operations/<id>/snapshots
	parts := strings.Split(strings.Trim(req.URL.Path, "/"), "/")
	if len(parts) != 4 || parts[3] != "snapshots" {
		w.WriteHeader(404)
		return
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		w.WriteHeader(404)
		return
	}

	op, err := d.DB.GetOperation(id)
	if err != nil {
		log.Errorf("failed to retrieve operation %d: %s", id, err)
		respond(w, 500, map[string]string{"error": "unable to query the ledger"})
		return
	}
	if op == nil {
		respond(w, 404, map[string]string{"error": "no such operation"})
		return
	}

	l, err := d.DB.GetAllSnapshots(&db.SnapshotFilter{ForOperation: id})
	if err != nil {
		log.Errorf("failed to retrieve snapshots for operation %d: %s", id, err)
		respond(w, 500, map[string]string{"error": "unable to query the ledger"})
		return
	}
	respond(w, 200, l)
}

func respond(w http.ResponseWriter, code int, thing interface{}) {
	b, err := json.Marshal(thing)
	if err != nil {
		w.WriteHeader(500)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(b)
	w.Write([]byte("\n"))
}
