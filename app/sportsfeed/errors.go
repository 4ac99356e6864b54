package sportsfeed

import "errors"

var (
	ErrInvalidLocale = errors.New("invalid locale")
	ErrInvalidDelay  = errors.New("invalid feed delay")
	ErrInvalidFactor = errors.New("ad delay factor must be at least 1")
	ErrNilBus        = errors.New("event bus cannot be nil")
	ErrNilLogger     = errors.New("logger cannot be nil")
	ErrNilOutput     = errors.New("output cannot be nil")
	ErrNilObserver   = errors.New("observer cannot be nil")
	ErrAlreadyRan    = errors.New("sports feed already ran")
)
