package main

import (
	"bytes"
	"encoding/json"
	"os"

	fmt "github.com/jhunt/go-ansi"
	"github.com/mattn/go-isatty"

	"github.com/diskrim/diskrim/db"
)

func fail(rc int, m string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, m, args...)
	os.Exit(rc)
}

func bail(err error) {
	if err != nil {
		if opts.JSON {
			fmt.Fprintf(os.Stderr, "%s\n", asJSON(struct {
				Error string `json:"error"`
			}{
				Error: err.Error(),
			}))
			os.Exit(1)
		}

		fmt.Fprintf(os.Stderr, "@R{!!! %s}\n", err)
		os.Exit(1)
	}
}

// colorStatus renders a ledger status for a terminal, leaving it bare
// when output is being piped somewhere.
func colorStatus(status string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return status
	}
	switch status {
	case db.CompletedStatus:
		return fmt.Sprintf("@G{%s}", status)
	case db.FailedStatus:
		return fmt.Sprintf("@R{%s}", status)
	default:
		return fmt.Sprintf("@Y{%s}", status)
	}
}

func asJSON(x interface{}) string {
	var raw []byte
	if s, ok := x.(string); ok {
		raw = []byte(s)

	} else if b, ok := x.([]byte); ok {
		raw = b

	} else {
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		raw = b
	}

	tmp := bytes.Buffer{}
	if json.Indent(&tmp, raw, "", " ") != nil {
		return string(raw)
	}
	return tmp.String()
}
