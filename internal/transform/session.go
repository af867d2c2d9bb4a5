package transform

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is one step of the editing lifecycle. Applying and Saving are the
// transient states held while the external call (credit debit, image save)
// is in flight.
type State string

const (
	StateEditing  State = "editing"
	StateApplying State = "applying"
	StateApplied  State = "applied"
	StateSaving   State = "saving"
	StateSaved    State = "saved"
)

var (
	ErrInvalidTransition = errors.New("invalid session state transition")
	ErrUnknownField      = errors.New("unknown field for transformation type")
	ErrNothingToApply    = errors.New("no pending edits to apply")
)

// Session holds the two-stage configuration of one editing flow: pending
// (edits not yet applied) and applied (what the last apply produced).
// Field edits are debounced: rapid writes to the same field inside the
// debounce window collapse into the last value before reaching pending.
type Session struct {
	mu sync.Mutex

	state     State
	transform Type

	pending   Config
	applied   Config
	persisted Config

	staged   map[string]string
	debounce time.Duration
	timer    *time.Timer
}

// NewSession starts a session in Editing state. persisted is the config of
// the image as last saved (zero for a fresh upload); restore and background
// removal stage their fixed defaults immediately, since an upload alone
// fully determines their parameters.
func NewSession(t Type, persisted Config, debounce time.Duration) *Session {
	s := &Session{
		state:     StateEditing,
		transform: t,
		persisted: persisted,
		applied:   persisted,
		staged:    map[string]string{},
		debounce:  debounce,
	}
	if t == TypeRestore || t == TypeRemoveBackground {
		s.pending = DefaultConfig(t)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Type returns the transformation type fixed at session start.
func (s *Session) Type() Type {
	return s.transform
}

// Pending returns the staged-but-unapplied configuration, including edits
// still sitting in the debounce window.
func (s *Session) Pending() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked()
	return s.pending
}

// Applied returns the configuration of the last apply.
func (s *Session) Applied() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}

// HasPending reports whether an apply would change anything.
func (s *Session) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.staged) > 0 || !s.pending.IsEmpty()
}

// SetField records one leaf edit under the session's operation namespace.
// The write lands in pending only after the debounce window elapses without
// another edit to the session, or when Apply flushes it synchronously.
func (s *Session) SetField(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateApplying || s.state == StateSaving {
		return fmt.Errorf("%w: edit while %s", ErrInvalidTransition, s.state)
	}

	switch s.transform {
	case TypeRemove:
		if field != "prompt" {
			return fmt.Errorf("%w: %q for %s", ErrUnknownField, field, s.transform)
		}
	case TypeRecolor:
		if field != "prompt" && field != "color" {
			return fmt.Errorf("%w: %q for %s", ErrUnknownField, field, s.transform)
		}
	case TypeFill:
		if field != "aspectRatio" {
			return fmt.Errorf("%w: %q for %s", ErrUnknownField, field, s.transform)
		}
		if _, ok := AspectRatioOptions[value]; !ok {
			return fmt.Errorf("unknown aspect ratio: %q", value)
		}
	default:
		return fmt.Errorf("%w: %q for %s", ErrUnknownField, field, s.transform)
	}

	s.state = StateEditing
	s.staged[field] = value

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.flushLocked()
	})
	return nil
}

// flushLocked commits staged field edits into pending. Caller holds mu.
func (s *Session) flushLocked() {
	if len(s.staged) == 0 {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	edit := DefaultConfig(s.transform)
	for field, value := range s.staged {
		switch s.transform {
		case TypeRemove:
			edit.Remove.Prompt = value
		case TypeRecolor:
			if field == "prompt" {
				edit.Recolor.Prompt = value
			} else {
				edit.Recolor.To = value
			}
		case TypeFill:
			opt := AspectRatioOptions[value]
			edit.Fill = &FillParams{
				AspectRatio: opt.AspectRatio,
				Width:       opt.Width,
				Height:      opt.Height,
			}
		}
	}
	s.pending = Merge(s.pending, edit)
	s.staged = map[string]string{}
}

// Apply flushes staged edits, merges pending into applied, clears pending
// and runs debit with the merged configuration. A debit failure is returned
// to the caller but applied keeps the merged value; the two operations are
// deliberately not coupled by a rollback.
func (s *Session) Apply(debit func(Config) error) error {
	s.mu.Lock()
	if s.state != StateEditing && s.state != StateApplied {
		s.mu.Unlock()
		return fmt.Errorf("%w: apply from %s", ErrInvalidTransition, s.state)
	}
	s.flushLocked()
	if s.pending.IsEmpty() {
		s.mu.Unlock()
		return ErrNothingToApply
	}

	s.state = StateApplying
	s.applied = Merge(s.applied, s.pending)
	s.pending = Config{}
	merged := s.applied
	s.mu.Unlock()

	err := debit(merged)

	s.mu.Lock()
	s.state = StateApplied
	s.mu.Unlock()
	return err
}

// Save runs persist with the applied configuration. On success the session
// reaches Saved and the applied config becomes the persisted baseline; on
// failure it returns to Applied so the save can be retried.
func (s *Session) Save(persist func(Config) error) error {
	s.mu.Lock()
	if s.state != StateApplied && s.state != StateSaved {
		s.mu.Unlock()
		return fmt.Errorf("%w: save from %s", ErrInvalidTransition, s.state)
	}
	s.state = StateSaving
	applied := s.applied
	s.mu.Unlock()

	err := persist(applied)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateApplied
		return err
	}
	s.persisted = applied
	s.state = StateSaved
	return nil
}

// Reset drops staged and pending edits and restores applied to the last
// persisted configuration.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.staged = map[string]string{}
	s.pending = Config{}
	if s.transform == TypeRestore || s.transform == TypeRemoveBackground {
		s.pending = DefaultConfig(s.transform)
	}
	s.applied = s.persisted
	s.state = StateEditing
}
