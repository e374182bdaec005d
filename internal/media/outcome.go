package media

// Status is the final state of one processed file.
type Status int

const (
	StatusSuccess Status = iota
	StatusSkipped
	StatusDryRun
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSkipped:
		return "skipped"
	case StatusDryRun:
		return "dry-run"
	default:
		return "failed"
	}
}

// Reason classifies why a file failed.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonIdentity   Reason = "identity"
	ReasonNoMatch    Reason = "no_match"
	ReasonAuth       Reason = "auth"
	ReasonTransient  Reason = "transient"
	ReasonLookup     Reason = "lookup"
	ReasonFormat     Reason = "format"
	ReasonCollision  Reason = "collision"
	ReasonFilesystem Reason = "filesystem"
)

// Outcome is the result of processing a single file.
type Outcome struct {
	OriginalPath string
	ProposedPath string // empty when no name could be formed
	FinalPath    string // set only when the file was moved
	Status       Status
	Reason       Reason
	Detail       string   // required when Status is StatusFailed
	Warnings     []string // non-fatal issues such as attribute preservation
}

// Failed builds a failed outcome for path.
func Failed(path string, reason Reason, detail string) Outcome {
	return Outcome{
		OriginalPath: path,
		Status:       StatusFailed,
		Reason:       reason,
		Detail:       detail,
	}
}

// Summary aggregates outcomes for a whole run.
type Summary struct {
	Outcomes []Outcome
	Counts   map[Status]int
}

// NewSummary returns an empty summary.
func NewSummary() *Summary {
	return &Summary{Counts: make(map[Status]int)}
}

// Add records an outcome.
func (s *Summary) Add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	s.Counts[o.Status]++
}

// Total returns the number of recorded outcomes.
func (s *Summary) Total() int { return len(s.Outcomes) }

// AnyFailed reports whether at least one file ended Failed.
func (s *Summary) AnyFailed() bool { return s.Counts[StatusFailed] > 0 }

// AuthFailed reports whether any file failed because provider
// credentials were rejected.
func (s *Summary) AuthFailed() bool {
	for _, o := range s.Outcomes {
		if o.Reason == ReasonAuth {
			return true
		}
	}
	return false
}

// Failures returns the failed outcomes in processing order.
func (s *Summary) Failures() []Outcome {
	var out []Outcome
	for _, o := range s.Outcomes {
		if o.Status == StatusFailed {
			out = append(out, o)
		}
	}
	return out
}
