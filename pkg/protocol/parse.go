package protocol

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Parse outcomes. A line that fails to parse is dropped by the caller; parse
// failures are never fatal to a session.
var (
	// ErrEmptyLine marks a blank or whitespace-only line, which produces no
	// command.
	ErrEmptyLine = errors.New("protocol: empty line")
	// ErrUnknownCommand marks a line with no recognizable command token.
	ErrUnknownCommand = errors.New("protocol: unknown command")
	// ErrMissingField marks a recognized command whose required payload is
	// absent or unusable, dropping the whole command.
	ErrMissingField = errors.New("protocol: required field missing")
)

// Parse turns one line of GUI input into a GUICommand. Unknown leading
// tokens are skipped until a known command word is found, and unknown
// trailing subtokens are ignored, so that commands from newer protocol
// revisions degrade instead of failing. Numeric subfields that do not parse
// as expected (or are negative) drop that field alone; the command survives
// unless the field is required for it to mean anything.
func Parse(line string) (GUICommand, error) {
	tokens, offsets := tokenize(line)
	if len(tokens) == 0 {
		return nil, ErrEmptyLine
	}

	for i, tok := range tokens {
		switch tok {
		case "uci":
			return UCIInit{}, nil
		case "debug":
			return parseDebug(tokens[i+1:])
		case "isready":
			return IsReady{}, nil
		case "setoption":
			return parseSetOption(line, tokens[i+1:], offsets[i+1:])
		case "ucinewgame":
			return NewGame{}, nil
		case "position":
			return parsePosition(tokens[i+1:])
		case "go":
			return Go{Req: parseGo(tokens[i+1:])}, nil
		case "stop":
			return Stop{}, nil
		case "ponderhit":
			return PonderHit{}, nil
		case "quit":
			return Quit{}, nil
		}
	}
	return nil, ErrUnknownCommand
}

// tokenize splits a line on whitespace and records each token's byte offset,
// so free-text tails can be recovered verbatim from the original line.
func tokenize(line string) ([]string, []int) {
	var tokens []string
	var offsets []int
	start := -1
	for i := 0; i <= len(line); i++ {
		boundary := i == len(line) ||
			line[i] == ' ' || line[i] == '\t' || line[i] == '\r' || line[i] == '\n'
		switch {
		case boundary && start >= 0:
			tokens = append(tokens, line[start:i])
			offsets = append(offsets, start)
			start = -1
		case !boundary && start < 0:
			start = i
		}
	}
	return tokens, offsets
}

func parseDebug(args []string) (GUICommand, error) {
	for _, a := range args {
		switch a {
		case "on":
			return Debug{On: true}, nil
		case "off":
			return Debug{On: false}, nil
		}
	}
	return nil, ErrMissingField
}

// parseSetOption reads "name <id> [value <x>]". The name may span several
// tokens; the value is the remainder of the line verbatim.
func parseSetOption(line string, args []string, offsets []int) (GUICommand, error) {
	nameAt := -1
	for i, a := range args {
		if a == "name" {
			nameAt = i + 1
			break
		}
	}
	if nameAt < 0 || nameAt >= len(args) {
		return nil, ErrMissingField
	}

	valueAt := -1
	for i := nameAt; i < len(args); i++ {
		if args[i] == "value" {
			valueAt = i
			break
		}
	}

	var cmd SetOption
	if valueAt < 0 {
		cmd.Name = strings.Join(args[nameAt:], " ")
	} else {
		if valueAt == nameAt {
			return nil, ErrMissingField
		}
		cmd.Name = strings.Join(args[nameAt:valueAt], " ")
		if valueAt+1 < len(args) {
			cmd.Value = strings.TrimSpace(line[offsets[valueAt+1]:])
		}
	}
	return cmd, nil
}

// parsePosition reads "startpos | fen <fields>" followed by an optional
// "moves <m1> ...". A token that is not a coordinate move ends the move
// list; whatever follows it is trailing junk and is ignored.
func parsePosition(args []string) (GUICommand, error) {
	if len(args) == 0 {
		return nil, ErrMissingField
	}

	var pos Position
	i := 0
	switch args[0] {
	case "startpos":
		i = 1
	case "fen":
		var fields []string
		for i = 1; i < len(args) && args[i] != "moves"; i++ {
			fields = append(fields, args[i])
		}
		if len(fields) == 0 {
			return nil, ErrMissingField
		}
		pos.FEN = strings.Join(fields, " ")
	default:
		return nil, ErrMissingField
	}

	if i < len(args) && args[i] == "moves" {
		for _, tok := range args[i+1:] {
			m, err := ParseMove(tok)
			if err != nil {
				break
			}
			pos.Moves = append(pos.Moves, m)
		}
	}
	return SetPosition{Pos: pos}, nil
}

// parseGo reads the go directives. Every directive is optional and unknown
// subtokens are skipped, so a bare "go" is a valid unbounded search.
func parseGo(args []string) GoRequest {
	var req GoRequest
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "searchmoves":
			for i+1 < len(args) {
				m, err := ParseMove(args[i+1])
				if err != nil {
					break
				}
				req.SearchMoves = append(req.SearchMoves, m)
				i++
			}
		case "ponder":
			req.Ponder = true
		case "infinite":
			req.Infinite = true
		case "wtime":
			if d, ok := takeMillis(args, &i); ok {
				req.WhiteTime = d
			}
		case "btime":
			if d, ok := takeMillis(args, &i); ok {
				req.BlackTime = d
			}
		case "winc":
			if d, ok := takeMillis(args, &i); ok {
				req.WhiteInc = d
			}
		case "binc":
			if d, ok := takeMillis(args, &i); ok {
				req.BlackInc = d
			}
		case "movestogo":
			if n, ok := takeInt(args, &i); ok {
				req.MovesToGo = n
			}
		case "depth":
			if n, ok := takeInt(args, &i); ok {
				req.Depth = n
			}
		case "nodes":
			if n, ok := takeUint(args, &i); ok {
				req.Nodes = n
			}
		case "mate":
			if n, ok := takeInt(args, &i); ok {
				req.Mate = n
			}
		case "movetime":
			if d, ok := takeMillis(args, &i); ok {
				req.MoveTime = d
			}
		}
	}
	return req
}

// takeInt consumes the token after args[*i] as a non-negative integer. On
// any failure the directive is dropped and scanning continues after the
// directive token itself.
func takeInt(args []string, i *int) (int, bool) {
	if *i+1 >= len(args) {
		return 0, false
	}
	n, err := strconv.Atoi(args[*i+1])
	if err != nil {
		return 0, false
	}
	*i++
	if n < 0 {
		return 0, false
	}
	return n, true
}

func takeUint(args []string, i *int) (uint64, bool) {
	if *i+1 >= len(args) {
		return 0, false
	}
	n, err := strconv.ParseUint(args[*i+1], 10, 64)
	if err != nil {
		return 0, false
	}
	*i++
	return n, true
}

func takeMillis(args []string, i *int) (time.Duration, bool) {
	n, ok := takeInt(args, i)
	if !ok {
		return 0, false
	}
	return time.Duration(n) * time.Millisecond, true
}
