package sportsfeed

// Result is the legacy flat shape of a sports result. Winners is nil when no winners
// were reported.
type Result struct {
	SportKey  int
	SportType string
	Winners   []string
	IsWarning bool
}

// Kind identifies a SportEvent variant.
type Kind uint8

const (
	// KindSuccess tags a ResultSuccess.
	KindSuccess Kind = iota + 1
	// KindError tags a ResultError.
	KindError
	// KindAd tags an AdEvent.
	KindAd
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	case KindAd:
		return "ad"
	default:
		return "unknown"
	}
}

// SportEvent is the closed family of tagged feed events: ResultSuccess, ResultError and AdEvent.
type SportEvent interface {
	Kind() Kind
	sportEvent()
}

// ResultSuccess is a successfully reported result.
type ResultSuccess struct {
	SportKey  int
	SportType string
	Winners   []string
	IsWarning bool
}

// ResultError reports a failure to obtain a result.
type ResultError struct {
	ErrorKey  int
	ErrorType string
}

// AdEvent marks an advertisement interaction. It carries no data.
type AdEvent struct{}

func (ResultSuccess) Kind() Kind { return KindSuccess }
func (ResultError) Kind() Kind   { return KindError }
func (AdEvent) Kind() Kind       { return KindAd }

func (ResultSuccess) sportEvent() {}
func (ResultError) sportEvent()   {}
func (AdEvent) sportEvent()       {}

// Match dispatches ev to the function for its variant and returns its result.
// A nil ev yields the zero value of R.
//
// Example:
//
//	line := sportsfeed.Match(ev,
//	    func(s sportsfeed.ResultSuccess) string { return s.SportType },
//	    func(e sportsfeed.ResultError) string { return e.ErrorType },
//	    func(sportsfeed.AdEvent) string { return "ad" },
//	)
func Match[R any](ev SportEvent, onSuccess func(ResultSuccess) R, onError func(ResultError) R, onAd func(AdEvent) R) R {
	switch v := ev.(type) {
	case ResultSuccess:
		return onSuccess(v)
	case ResultError:
		return onError(v)
	case AdEvent:
		return onAd(v)
	default:
		var zero R
		return zero
	}
}
