package protocol

import (
	"strconv"
	"strings"
	"time"
)

// TokenInfo starts a search progress line.
const TokenInfo = "info"

// Score is a search evaluation from the side to move.
type Score struct {
	// Centipawns is set when Mate is false.
	Centipawns int
	// Mate is true when MateIn is a forced mate distance in moves. A negative
	// MateIn means the side to move is being mated.
	Mate   bool
	MateIn int
	// Bound is "lowerbound" or "upperbound" for fail-high/low scores.
	Bound string
}

// Info is a parsed search progress line. Fields the engine did not send
// are zero.
type Info struct {
	Depth    int
	SelDepth int
	MultiPV  int
	Score    *Score
	Nodes    int64
	NPS      int64
	Time     time.Duration
	HashFull int
	PV       []string
}

// ParseInfo parses an info line that reports search progress.
//
// It returns false for lines that are not info lines, for "info string"
// messages and for current-move updates that carry no depth. Unknown
// tokens are skipped, as the protocol requires.
func ParseInfo(line string) (Info, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != TokenInfo || fields[1] == "string" {
		return Info{}, false
	}

	var info Info

	for i := 1; i < len(fields); i++ {
		next := func() (string, bool) {
			if i+1 >= len(fields) {
				return "", false
			}

			i++

			return fields[i], true
		}

		switch fields[i] {
		case "depth":
			info.Depth = atoi(next())
		case "seldepth":
			info.SelDepth = atoi(next())
		case "multipv":
			info.MultiPV = atoi(next())
		case "nodes":
			info.Nodes = atoi64(next())
		case "nps":
			info.NPS = atoi64(next())
		case "hashfull":
			info.HashFull = atoi(next())
		case "time":
			info.Time = time.Duration(atoi64(next())) * time.Millisecond
		case "score":
			info.Score = parseScore(fields[i+1:])
			i += scoreLen(fields[i+1:])
		case "pv":
			info.PV = append([]string(nil), fields[i+1:]...)
			i = len(fields)
		case "string":
			i = len(fields)
		}
	}

	if info.Depth == 0 {
		return Info{}, false
	}

	return info, true
}

// Primary reports whether info describes the principal line, i.e. it is not
// a secondary line of a multi-PV search.
func (i Info) Primary() bool {
	return i.MultiPV <= 1
}

func parseScore(fields []string) *Score {
	if len(fields) < 2 {
		return nil
	}

	value, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil
	}

	score := &Score{}

	switch fields[0] {
	case "cp":
		score.Centipawns = value
	case "mate":
		score.Mate = true
		score.MateIn = value
	default:
		return nil
	}

	if len(fields) > 2 && (fields[2] == "lowerbound" || fields[2] == "upperbound") {
		score.Bound = fields[2]
	}

	return score
}

// scoreLen is how many fields after "score" belong to it.
func scoreLen(fields []string) int {
	n := min(len(fields), 2)
	if len(fields) > 2 && (fields[2] == "lowerbound" || fields[2] == "upperbound") {
		n++
	}

	return n
}

func atoi(s string, ok bool) int {
	if !ok {
		return 0
	}

	n, _ := strconv.Atoi(s)

	return n
}

func atoi64(s string, ok bool) int64 {
	if !ok {
		return 0
	}

	n, _ := strconv.ParseInt(s, 10, 64)

	return n
}
