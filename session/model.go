package session

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"brushkit/presetsave"
)

// Session is one open save-preset dialog.
type Session struct {
	ID        string
	SavingNew bool
	CreatedAt time.Time

	mu         sync.Mutex
	lastActive time.Time
	dialog     *presetsave.Dialog
	done       chan struct{}
}

// Info is the JSON view of a session.
type Info struct {
	ID         string          `json:"id"`
	SavingNew  bool            `json:"saving_new"`
	CreatedAt  time.Time       `json:"created_at"`
	LastActive time.Time       `json:"last_active"`
	Dialog     presetsave.View `json:"dialog"`
}

// Dispatch forwards a user action from a remote client to the dialog.
// Actions that read local files are refused with presetsave.ErrLocalOnly.
func (s *Session) Dispatch(cmd presetsave.Command) error {
	s.touch()
	if presetsave.LocalOnly(cmd.Action) {
		return errors.Wrapf(presetsave.ErrLocalOnly, "%q", cmd.Action)
	}
	return s.dialog.Dispatch(cmd)
}

// View returns the dialog state.
func (s *Session) View() presetsave.View {
	return s.dialog.View()
}

// Dialog returns the dialog behind the session.
func (s *Session) Dialog() *presetsave.Dialog {
	return s.dialog
}

// Done returns a channel that is closed when the dialog closes.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
}

func (s *Session) Info() Info {
	s.mu.Lock()
	last := s.lastActive
	s.mu.Unlock()
	return Info{
		ID:         s.ID,
		SavingNew:  s.SavingNew,
		CreatedAt:  s.CreatedAt,
		LastActive: last,
		Dialog:     s.dialog.View(),
	}
}
