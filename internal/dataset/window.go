package dataset

import (
	"fmt"
	"time"
)

// WindowLayout is the "M-D-YYYY" date layout used by experiment windows.
const WindowLayout = "1-2-2006"

// Window is the half-open time range [Start, End) a read is restricted to.
type Window struct {
	Start time.Time
	End   time.Time
}

// ParseWindow parses start and end dates in WindowLayout as UTC midnight.
func ParseWindow(start, end string) (Window, error) {
	s, err := time.Parse(WindowLayout, start)
	if err != nil {
		return Window{}, fmt.Errorf("%w: start %q: %v", ErrInvalidWindow, start, err)
	}
	e, err := time.Parse(WindowLayout, end)
	if err != nil {
		return Window{}, fmt.Errorf("%w: end %q: %v", ErrInvalidWindow, end, err)
	}
	w := Window{Start: s, End: e}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate reports ErrInvalidWindow unless End is after Start.
func (w Window) Validate() error {
	if !w.End.After(w.Start) {
		return fmt.Errorf("%w: end %s is not after start %s", ErrInvalidWindow,
			w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	return nil
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func (w Window) String() string {
	return w.Start.UTC().Format(WindowLayout) + ".." + w.End.UTC().Format(WindowLayout)
}
