package nav

import (
	"fmt"
	"math/rand/v2"
)

// Event keys the announcement phrase table.
type Event string

const (
	EventSetStart     Event = "setStart"
	EventSetEnd       Event = "setEnd"
	EventStartSet     Event = "startSet"
	EventEndSet       Event = "endSet"
	EventCalculating  Event = "calculating"
	EventRouteFailed  Event = "routeFailed"
	EventRouteCleared Event = "routeCleared"
)

var defaultPhrases = map[Event][]string{
	EventSetStart: {
		"Click the map to set your starting point.",
		"Pick a spot on the map for your start.",
		"Where are we starting from? Tap the map.",
	},
	EventSetEnd: {
		"Click the map to set your destination.",
		"Now pick where you are headed.",
		"Tap the map to choose your destination.",
	},
	EventStartSet: {
		"Starting point set. Now choose your destination.",
		"Got your start. Where to?",
	},
	EventEndSet: {
		"Destination set.",
		"Got it, destination marked.",
	},
	EventCalculating: {
		"Calculating your route.",
		"Finding the best way there.",
		"One moment, working out your route.",
	},
	EventRouteFailed: {
		"Sorry, I could not calculate a route.",
		"No luck finding a route.",
	},
	EventRouteCleared: {
		"Route cleared.",
		"All clear. Ready when you are.",
	},
}

// PhraseBook picks an announcement for an event. The picker is
// swappable so tests can make the choice deterministic.
type PhraseBook struct {
	table map[Event][]string
	pick  func(n int) int
}

func NewPhraseBook() *PhraseBook {
	return &PhraseBook{table: defaultPhrases, pick: rand.IntN}
}

// NewFixedPhraseBook always picks the first variant.
func NewFixedPhraseBook() *PhraseBook {
	return &PhraseBook{table: defaultPhrases, pick: func(int) int { return 0 }}
}

func (p *PhraseBook) Pick(ev Event) string {
	variants := p.table[ev]
	if len(variants) == 0 {
		return ""
	}
	return variants[p.pick(len(variants))]
}

// FormatDistance renders meters the way the narration says them:
// kilometers from 1000 m up, plain meters below.
func FormatDistance(m float64) string {
	if m >= 1000 {
		return fmt.Sprintf("%.1f kilometers", m/1000)
	}
	return fmt.Sprintf("%.0f meters", m)
}
