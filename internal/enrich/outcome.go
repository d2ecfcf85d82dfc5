package enrich

// OutcomeStatus classifies the result of one resolution attempt.
type OutcomeStatus int

const (
	// OutcomeFound means a provider produced a usable match.
	OutcomeFound OutcomeStatus = iota
	// OutcomeNotFound means every strategy was tried and no provider matched.
	OutcomeNotFound
	// OutcomeTransient means the attempt failed on a retryable error and the
	// item may succeed on a later run.
	OutcomeTransient
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Resolution identifies a matched provider record. It is the payload stored
// in positive cache entries.
type Resolution struct {
	TMDBID    int64  `json:"tmdb_id"`
	MediaType string `json:"media_type"`
	Title     string `json:"title,omitempty"`
	Date      string `json:"date,omitempty"`
}

// Outcome is the explicit result of resolving one item: either a match, a
// definitive miss, or a transient failure whose cause is kept for logging.
type Outcome struct {
	Status     OutcomeStatus
	Resolution Resolution
	Cause      error
}

// Found builds a successful outcome.
func Found(res Resolution) Outcome {
	return Outcome{Status: OutcomeFound, Resolution: res}
}

// NotFound builds a definitive-miss outcome.
func NotFound() Outcome {
	return Outcome{Status: OutcomeNotFound}
}

// Transient builds a retry-later outcome preserving the original failure.
func Transient(cause error) Outcome {
	return Outcome{Status: OutcomeTransient, Cause: cause}
}
