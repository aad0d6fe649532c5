package protocol

import "time"

// EngineCommand is one message from the engine to the GUI. The set of
// implementations is closed; every value has exactly one wire rendering,
// produced by Marshal.
type EngineCommand interface {
	engineCommand()
}

// IDName identifies the engine by name, sent exactly once before UCIOK.
type IDName string

// IDAuthor identifies the engine's author, sent exactly once before UCIOK.
type IDAuthor string

// UCIOK closes the handshake: identification and option descriptors are
// complete and the engine accepts commands.
type UCIOK struct{}

// ReadyOK answers one IsReady ping.
type ReadyOK struct{}

// BestMove reports the search result and terminates exactly one search. The
// Ponder move is the reply the engine would like to ponder on, if any.
type BestMove struct {
	Move   Move
	Ponder Move
}

// ProtectionStatus is the state reported by Copyprotection and Registration.
type ProtectionStatus uint8

const (
	ProtectionChecking ProtectionStatus = iota
	ProtectionOK
	ProtectionError
)

func (s ProtectionStatus) String() string {
	switch s {
	case ProtectionChecking:
		return "checking"
	case ProtectionError:
		return "error"
	default:
		return "ok"
	}
}

// Copyprotection reports the engine's copy protection check.
type Copyprotection struct {
	Status ProtectionStatus
}

// Registration reports the engine's registration check.
type Registration struct {
	Status ProtectionStatus
}

// ScoreType distinguishes centipawn scores from mate distances.
type ScoreType uint8

const (
	ScoreCP ScoreType = iota
	ScoreMate
)

// ScoreBound qualifies a score as exact, a lower bound or an upper bound.
// The two bounds are mutually exclusive.
type ScoreBound uint8

const (
	BoundNone ScoreBound = iota
	BoundLower
	BoundUpper
)

// Score is an evaluation from the engine's point of view: centipawns, or
// full moves to mate with negative values meaning the engine gets mated.
type Score struct {
	Type  ScoreType
	Value int
	Bound ScoreBound
}

// CentipawnScore builds an exact centipawn score.
func CentipawnScore(cp int) *Score {
	return &Score{Type: ScoreCP, Value: cp}
}

// MateScore builds an exact mate-in-n score.
func MateScore(moves int) *Score {
	return &Score{Type: ScoreMate, Value: moves}
}

// CurrLine is the line the engine is currently calculating, with the CPU
// number when more than one is in use (zero omits it).
type CurrLine struct {
	CPU   int
	Moves []Move
}

// Info is one batch of search progress facts. A zero field is absent from
// the batch; Score is a pointer because a zero centipawn score is
// meaningful. A batch carries at most one String by construction, and a
// batch reporting SelDepth is expected to carry (or follow one that
// carried) Depth.
type Info struct {
	Depth          int
	SelDepth       int
	MultiPV        int
	Score          *Score
	CurrMove       Move
	CurrMoveNumber int
	Time           time.Duration
	Nodes          uint64
	NPS            uint64
	HashFull       int // permille
	TBHits         uint64
	SBHits         uint64
	CPULoad        int // permille
	// Refutation holds the refuted move first, then the refuting line.
	Refutation []Move
	CurrLine   *CurrLine
	PV         []Move
	String     string
}

func (UCIOK) engineCommand()          {}
func (ReadyOK) engineCommand()        {}
func (BestMove) engineCommand()       {}
func (Copyprotection) engineCommand() {}
func (Registration) engineCommand()   {}
func (IDName) engineCommand()         {}
func (IDAuthor) engineCommand()       {}
func (Info) engineCommand()           {}
func (Option) engineCommand()         {}

// InfoString builds a batch holding only the free-text side channel.
func InfoString(msg string) Info {
	return Info{String: msg}
}

// Merge folds next into i, last value winning per field. It implements the
// coalescing the search controller applies when progress outpaces the
// serializer; batches are merged, never reordered.
func (i Info) Merge(next Info) Info {
	out := i
	if next.Depth > 0 {
		out.Depth = next.Depth
	}
	if next.SelDepth > 0 {
		out.SelDepth = next.SelDepth
	}
	if next.MultiPV > 0 {
		out.MultiPV = next.MultiPV
	}
	if next.Score != nil {
		out.Score = next.Score
	}
	if !next.CurrMove.IsNull() {
		out.CurrMove = next.CurrMove
	}
	if next.CurrMoveNumber > 0 {
		out.CurrMoveNumber = next.CurrMoveNumber
	}
	if next.Time > 0 {
		out.Time = next.Time
	}
	if next.Nodes > 0 {
		out.Nodes = next.Nodes
	}
	if next.NPS > 0 {
		out.NPS = next.NPS
	}
	if next.HashFull > 0 {
		out.HashFull = next.HashFull
	}
	if next.TBHits > 0 {
		out.TBHits = next.TBHits
	}
	if next.SBHits > 0 {
		out.SBHits = next.SBHits
	}
	if next.CPULoad > 0 {
		out.CPULoad = next.CPULoad
	}
	if len(next.Refutation) > 0 {
		out.Refutation = next.Refutation
	}
	if next.CurrLine != nil {
		out.CurrLine = next.CurrLine
	}
	if len(next.PV) > 0 {
		out.PV = next.PV
	}
	if next.String != "" {
		out.String = next.String
	}
	return out
}

// Empty reports whether the batch carries no facts at all.
func (i Info) Empty() bool {
	return i.Depth == 0 && i.SelDepth == 0 && i.MultiPV == 0 && i.Score == nil &&
		i.CurrMove.IsNull() && i.CurrMoveNumber == 0 && i.Time == 0 &&
		i.Nodes == 0 && i.NPS == 0 && i.HashFull == 0 && i.TBHits == 0 &&
		i.SBHits == 0 && i.CPULoad == 0 && len(i.Refutation) == 0 &&
		i.CurrLine == nil && len(i.PV) == 0 && i.String == ""
}

// OptionType is the kind of a settable engine parameter.
type OptionType uint8

const (
	OptionCheck OptionType = iota
	OptionSpin
	OptionCombo
	OptionButton
	OptionString
)

func (t OptionType) String() string {
	switch t {
	case OptionCheck:
		return "check"
	case OptionSpin:
		return "spin"
	case OptionCombo:
		return "combo"
	case OptionButton:
		return "button"
	default:
		return "string"
	}
}

// Option describes one settable engine parameter: a boolean check, a bounded
// spin integer, a combo choice list, a value-less button trigger, or free
// text. Default is carried in wire form; Min and Max apply to spin options
// and Vars to combo options.
type Option struct {
	Name    string
	Type    OptionType
	Default string
	Min     int
	Max     int
	Vars    []string
}
