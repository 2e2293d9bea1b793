package core

const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeWarning = "warning"
)

// An Outcome is what every orchestrator entry point hands back:
// success, failure with a reason, or success-with-warning for the
// partial states a caller must present differently (partition resized
// but filesystem left behind, say).  ID is the ledger record identity,
// zero if the ledger could not even be written.
type Outcome struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
	ID      int64  `json:"id,omitempty"`
}

func (o Outcome) OK() bool     { return o.Status != OutcomeFailed }
func (o Outcome) Failed() bool { return o.Status == OutcomeFailed }
