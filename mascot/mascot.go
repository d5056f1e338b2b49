// Package mascot drives the little guide character. It holds no state
// beyond the speaking flag; everything else is class toggles on the
// surface it is given.
package mascot

import (
	"sync"

	"campusnav/models"
)

// Surface is whatever renders the mascot (TUI glyph, browser sprite).
type Surface interface {
	ToggleClass(class string, on bool)
	PlayReaction(name string)
}

type Mascot struct {
	mu       sync.Mutex
	surface  Surface
	speaking bool
}

func New(surface Surface) *Mascot {
	return &Mascot{surface: surface}
}

// SetSpeaking toggles the talking visual; wired to narration lifecycle.
func (m *Mascot) SetSpeaking(on bool) {
	m.mu.Lock()
	changed := m.speaking != on
	m.speaking = on
	m.mu.Unlock()
	if changed && m.surface != nil {
		m.surface.ToggleClass("speaking", on)
	}
}

func (m *Mascot) Speaking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speaking
}

// ReactToMode plays a short reaction when point selection starts or ends.
func (m *Mascot) ReactToMode(mode models.SelectionMode) {
	if m.surface == nil {
		return
	}
	switch mode {
	case models.SelectionStart, models.SelectionEnd:
		m.surface.ToggleClass("picking", true)
		m.surface.PlayReaction("point")
	default:
		m.surface.ToggleClass("picking", false)
	}
}
