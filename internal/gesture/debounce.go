package gesture

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCooldown is the minimum time before the same label is emitted again.
const DefaultCooldown = time.Second

// DebounceGate suppresses repeated candidates.
//
// The cooldown applies only to repeats of the last emitted label. A different
// label is emitted immediately, so PLAY followed by PAUSE 10ms later yields two
// events, while a hand held in the PLAY pose yields one event per cooldown.
type DebounceGate struct {
	last     Label
	lastTime time.Time
	hasLast  bool
}

// NewDebounceGate creates a gate with no history.
func NewDebounceGate() *DebounceGate {
	return &DebounceGate{}
}

// Gate decides whether candidate becomes an event at now.
func (g *DebounceGate) Gate(candidate Label, now time.Time, cooldown time.Duration) (Event, bool) {
	if candidate == LabelNone || candidate == "" {
		return Event{}, false
	}

	if g.hasLast && candidate == g.last && now.Sub(g.lastTime) <= cooldown {
		return Event{}, false
	}

	g.last = candidate
	g.lastTime = now
	g.hasLast = true

	return Event{
		ID:        uuid.New().String(),
		Label:     candidate,
		Timestamp: now,
	}, true
}

// Last returns the most recently emitted label and its instant.
func (g *DebounceGate) Last() (Label, time.Time, bool) {
	return g.last, g.lastTime, g.hasLast
}

// Reset forgets the last emitted label.
func (g *DebounceGate) Reset() {
	g.last = LabelNone
	g.lastTime = time.Time{}
	g.hasLast = false
}
