package lifecycle

// Status is a store's position in the provisioning lifecycle as reported by
// the server. Transitions are entirely server-driven; the client only
// reflects the latest polled value and never computes a transition itself.
type Status string

const (
	StatusQueued       Status = "QUEUED"
	StatusProvisioning Status = "PROVISIONING"
	StatusReady        Status = "READY"
	StatusFailed       Status = "FAILED"
	StatusDeleting     Status = "DELETING"
	StatusDeleted      Status = "DELETED"
)

// transitions is the lifecycle graph:
// QUEUED → PROVISIONING → {READY, FAILED}; READY|FAILED → DELETING → DELETED.
var transitions = map[Status][]Status{
	StatusQueued:       {StatusProvisioning},
	StatusProvisioning: {StatusReady, StatusFailed},
	StatusReady:        {StatusDeleting},
	StatusFailed:       {StatusDeleting},
	StatusDeleting:     {StatusDeleted},
}

// IsWorking reports whether the backend is actively mutating the store.
// Working stores get a busy indicator and destructive actions are suppressed.
func IsWorking(s Status) bool {
	return s == StatusProvisioning || s == StatusDeleting
}

// CanDelete reports whether a delete may be submitted for a store in this
// state. Deletion is idempotent server-side; suppressing it during DELETING
// only avoids redundant calls and duplicate confirmations.
func CanDelete(s Status) bool {
	return s != StatusDeleting
}

// IsTerminal reports whether the backend will not move the store further on
// its own. FAILED is terminal but actionable: cleanup requires an explicit
// user-initiated delete, never an automatic retry.
func IsTerminal(s Status) bool {
	return s == StatusReady || s == StatusFailed || s == StatusDeleted
}

// CanTransition reports whether the lifecycle graph permits moving from one
// status to another. The client uses this only to flag server regressions in
// debug logs; the polled value always wins.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Tone classifies a status for terminal coloring.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneWarning
	ToneSuccess
	ToneDanger
	ToneMuted
)

// Presentation is the UI affordance derived from a status.
type Presentation struct {
	Label string
	Tone  Tone
	Busy  bool
}

var presentations = map[Status]Presentation{
	StatusQueued:       {Label: "Queued", Tone: ToneNeutral},
	StatusProvisioning: {Label: "Provisioning...", Tone: ToneWarning, Busy: true},
	StatusReady:        {Label: "Online", Tone: ToneSuccess},
	StatusFailed:       {Label: "Provisioning Failed", Tone: ToneDanger},
	StatusDeleting:     {Label: "Deleting...", Tone: ToneMuted, Busy: true},
	StatusDeleted:      {Label: "Deleted", Tone: ToneMuted},
}

// PresentationFor maps a status to its UI affordance. Unrecognized statuses
// fall back to the QUEUED presentation so a newer server can add states
// without breaking older clients.
func PresentationFor(s Status) Presentation {
	if p, ok := presentations[s]; ok {
		return p
	}
	return presentations[StatusQueued]
}
