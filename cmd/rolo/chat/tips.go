package chat

import (
	"math/rand"
	"time"
)

// sessionTips rotate under the transcript for newer users. Kept short:
// one line each, always actionable.
var sessionTips = []string{
	"`birthdays 30` widens the lookahead to a month.",
	"`find` matches names, phones and emails by substring.",
	"`export` writes a JSON snapshot you can drop into another machine's import/ directory.",
	"`note <title> <text>` stores free-form notes; tag them with `tag <title> <tag>`.",
	"Press the up arrow to recall earlier commands.",
	"`all` lists the whole book; `phone <name>` shows a single contact.",
}

// TipGenerator decides when to surface a tip. Disabled generators and
// rate-limited ones return the empty string.
type TipGenerator struct {
	enabled     bool
	lastTipTime time.Time
	nextIdx     int
}

// NewTipGenerator creates a generator honoring the user preference.
func NewTipGenerator(enabled bool) *TipGenerator {
	return &TipGenerator{
		enabled: enabled,
		nextIdx: rand.Intn(len(sessionTips)),
	}
}

// Next returns a tip to show after a response, or "". Tips appear at
// most once per two minutes and only on a minority of turns.
func (g *TipGenerator) Next() string {
	if !g.enabled {
		return ""
	}
	if time.Since(g.lastTipTime) < 2*time.Minute {
		return ""
	}
	if rand.Float64() > 0.25 {
		return ""
	}

	tip := sessionTips[g.nextIdx%len(sessionTips)]
	g.nextIdx++
	g.lastTipTime = time.Now()
	return tip
}
