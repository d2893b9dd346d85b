package git

import "time"

// Exec implements Service by running the git executable against the
// repository root passed to each call.
type Exec struct {
	Now func() time.Time
}

var _ Service = Exec{}

func NewService() Exec {
	return Exec{Now: time.Now}
}

func (e Exec) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}
