package protocol

import (
	"strconv"
	"strings"
)

// Marshal renders one engine-to-GUI command as its wire line, without the
// trailing newline. Serialization is pure and total: equal values always
// produce identical text. Field order inside a line is part of the wire
// contract; variable-length move lists come last, and a free-text string
// comes after even those because it consumes the remainder of the line.
func Marshal(cmd EngineCommand) string {
	switch c := cmd.(type) {
	case IDName:
		return "id name " + string(c)
	case IDAuthor:
		return "id author " + string(c)
	case UCIOK:
		return "uciok"
	case ReadyOK:
		return "readyok"
	case BestMove:
		if c.Ponder.IsNull() {
			return "bestmove " + c.Move.String()
		}
		return "bestmove " + c.Move.String() + " ponder " + c.Ponder.String()
	case Copyprotection:
		return "copyprotection " + c.Status.String()
	case Registration:
		return "registration " + c.Status.String()
	case Info:
		return marshalInfo(c)
	case Option:
		return marshalOption(c)
	}
	return ""
}

func marshalInfo(i Info) string {
	var b strings.Builder
	b.WriteString("info")
	writeNum := func(name string, v int64) {
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteByte(' ')
		b.WriteString(strconv.FormatInt(v, 10))
	}
	writeUint := func(name string, v uint64) {
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteByte(' ')
		b.WriteString(strconv.FormatUint(v, 10))
	}
	if i.Depth > 0 {
		writeNum("depth", int64(i.Depth))
	}
	if i.SelDepth > 0 {
		writeNum("seldepth", int64(i.SelDepth))
	}
	if i.MultiPV > 0 {
		writeNum("multipv", int64(i.MultiPV))
	}
	if i.Score != nil {
		b.WriteString(" score ")
		if i.Score.Type == ScoreMate {
			b.WriteString("mate ")
		} else {
			b.WriteString("cp ")
		}
		b.WriteString(strconv.Itoa(i.Score.Value))
		switch i.Score.Bound {
		case BoundLower:
			b.WriteString(" lowerbound")
		case BoundUpper:
			b.WriteString(" upperbound")
		}
	}
	if !i.CurrMove.IsNull() {
		b.WriteString(" currmove ")
		b.WriteString(i.CurrMove.String())
	}
	if i.CurrMoveNumber > 0 {
		writeNum("currmovenumber", int64(i.CurrMoveNumber))
	}
	if i.Time > 0 {
		writeNum("time", i.Time.Milliseconds())
	}
	if i.Nodes > 0 {
		writeUint("nodes", i.Nodes)
	}
	if i.NPS > 0 {
		writeUint("nps", i.NPS)
	}
	if i.HashFull > 0 {
		writeNum("hashfull", int64(i.HashFull))
	}
	if i.TBHits > 0 {
		writeUint("tbhits", i.TBHits)
	}
	if i.SBHits > 0 {
		writeUint("sbhits", i.SBHits)
	}
	if i.CPULoad > 0 {
		writeNum("cpuload", int64(i.CPULoad))
	}
	if len(i.Refutation) > 0 {
		b.WriteString(" refutation ")
		b.WriteString(formatMoves(i.Refutation))
	}
	if i.CurrLine != nil && len(i.CurrLine.Moves) > 0 {
		b.WriteString(" currline ")
		if i.CurrLine.CPU > 0 {
			b.WriteString(strconv.Itoa(i.CurrLine.CPU))
			b.WriteByte(' ')
		}
		b.WriteString(formatMoves(i.CurrLine.Moves))
	}
	if len(i.PV) > 0 {
		b.WriteString(" pv ")
		b.WriteString(formatMoves(i.PV))
	}
	if i.String != "" {
		b.WriteString(" string ")
		b.WriteString(i.String)
	}
	return b.String()
}

func marshalOption(o Option) string {
	var b strings.Builder
	b.WriteString("option name ")
	b.WriteString(o.Name)
	b.WriteString(" type ")
	b.WriteString(o.Type.String())
	switch o.Type {
	case OptionButton:
		// buttons carry no value
	case OptionString:
		b.WriteString(" default ")
		if o.Default == "" {
			b.WriteString("<empty>")
		} else {
			b.WriteString(o.Default)
		}
	case OptionSpin:
		b.WriteString(" default ")
		b.WriteString(o.Default)
		b.WriteString(" min ")
		b.WriteString(strconv.Itoa(o.Min))
		b.WriteString(" max ")
		b.WriteString(strconv.Itoa(o.Max))
	default:
		b.WriteString(" default ")
		b.WriteString(o.Default)
	}
	if o.Type == OptionCombo {
		for _, v := range o.Vars {
			b.WriteString(" var ")
			b.WriteString(v)
		}
	}
	return b.String()
}
