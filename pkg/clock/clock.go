// Package clock turns the clock directives of a go command into a concrete
// time budget for one search. The budget is advisory: the engine enforces
// it internally, the session only relays cancellation.
package clock

import (
	"time"

	"github.com/tecu23/argo/internal/color"
	"github.com/tecu23/argo/pkg/protocol"
)

// Engine-side safety knobs for clock-based allocation.
const (
	// minBudget is the floor for any live-clock budget.
	minBudget = 5 * time.Millisecond
	// maxRemainingFrac caps a single move at this share of the remaining time.
	maxRemainingFrac = 0.7
	// defaultMovesToGo estimates the moves left when the GUI gives no
	// movestogo for a sudden-death control.
	defaultMovesToGo = 40
	// panicThreshold switches allocation to increment-banking when the
	// clock runs this low.
	panicThreshold = time.Second
	// panicIncFrac is the share of the increment spent while banking.
	panicIncFrac = 0.9
	// hardFactor stretches the soft budget into the hard abort bound.
	hardFactor = 3
)

// Budget bounds one search. Soft gates the start of another deepening
// iteration; Hard aborts the search mid-iteration. Infinite budgets carry
// no time bound at all (depth, node or mate limits may still apply).
type Budget struct {
	Soft     time.Duration
	Hard     time.Duration
	Infinite bool
}

// Allocate computes the budget for one search from the go directives, for
// the side to move. Overhead is reserved per move for transport latency
// (the MoveOverhead option). Precedence follows the protocol: an explicit
// movetime fixes the budget exactly, infinite (or a request with no time
// dimension at all, including ponder mode before ponderhit) means no bound,
// otherwise the wall clock is divided.
func Allocate(req protocol.GoRequest, side color.Color, overhead time.Duration) Budget {
	if req.MoveTime > 0 {
		d := req.MoveTime - overhead
		if d < minBudget {
			d = minBudget
		}
		return Budget{Soft: d, Hard: d}
	}
	if req.Infinite || !req.HasClock() {
		return Budget{Infinite: true}
	}

	remaining := req.WhiteTime
	inc := req.WhiteInc
	if side == color.Black {
		remaining = req.BlackTime
		inc = req.BlackInc
	}
	if remaining <= 0 {
		// The GUI handed us a clock for the other side only. Spend nothing
		// beyond the floor rather than guessing.
		return Budget{Soft: minBudget, Hard: minBudget}
	}

	movesToGo := req.MovesToGo
	if movesToGo <= 0 {
		movesToGo = defaultMovesToGo
	}

	var soft time.Duration
	if inc > 0 && remaining < panicThreshold {
		// Panic: bank a little time off the increment.
		soft = time.Duration(float64(inc) * panicIncFrac)
	} else {
		soft = remaining/time.Duration(movesToGo) + inc
	}

	if max := time.Duration(float64(remaining) * maxRemainingFrac); soft > max {
		soft = max
	}
	if soft > remaining-overhead {
		soft = remaining - overhead
	}
	if soft < minBudget {
		soft = minBudget
	}

	hard := soft * hardFactor
	if max := time.Duration(float64(remaining) * maxRemainingFrac); hard > max {
		hard = max
	}
	if hard < soft {
		hard = soft
	}
	return Budget{Soft: soft, Hard: hard}
}
