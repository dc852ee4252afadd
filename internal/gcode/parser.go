package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MoveType represents the type of laser head movement.
type MoveType int

const (
	MoveRapid    MoveType = iota // G0: positioning with the beam off
	MoveCut                      // G1 with the beam on
	MoveTraverse                 // G1 with the beam off
)

// Move represents a single parsed movement from a program.
type Move struct {
	Type     MoveType
	FromX    float64
	FromY    float64
	ToX      float64
	ToY      float64
	FeedRate float64
}

// Length returns the XY distance covered by the move.
func (m Move) Length() float64 {
	return math.Hypot(m.ToX-m.FromX, m.ToY-m.FromY)
}

var (
	coordRe = regexp.MustCompile(`([XYF])([-]?\d+\.?\d*)`)
	beamRe  = regexp.MustCompile(`^M0*([345])\b`)
)

// ParseGCode parses a program into a slice of structured moves. It tracks
// absolute position, sticky feed rate and beam state (M3/M4 on, M5 off).
func ParseGCode(code string) []Move {
	var moves []Move

	curX, curY := 0.0, 0.0
	curFeed := 0.0
	beam := false

	for _, line := range strings.Split(code, "\n") {
		line = stripComments(line)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)

		if m := beamRe.FindStringSubmatch(upper); m != nil {
			beam = m[1] != "5"
			continue
		}

		isRapid := false
		isFeed := false
		if strings.HasPrefix(upper, "G0 ") || strings.HasPrefix(upper, "G00 ") || upper == "G0" || upper == "G00" {
			isRapid = true
		} else if strings.HasPrefix(upper, "G1 ") || strings.HasPrefix(upper, "G01 ") || upper == "G1" || upper == "G01" {
			isFeed = true
		}
		if !isRapid && !isFeed {
			continue
		}

		newX, newY, newFeed := curX, curY, curFeed
		for _, m := range coordRe.FindAllStringSubmatch(upper, -1) {
			val, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X":
				newX = val
			case "Y":
				newY = val
			case "F":
				newFeed = val
			}
		}

		moves = append(moves, Move{
			Type:     classifyMove(isRapid, beam),
			FromX:    curX,
			FromY:    curY,
			ToX:      newX,
			ToY:      newY,
			FeedRate: newFeed,
		})

		curX, curY, curFeed = newX, newY, newFeed
	}

	return moves
}

// stripComments removes semicolon and parenthetical comments.
func stripComments(line string) string {
	line = strings.TrimSpace(line)
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = line[:idx]
	}
	if idx := strings.Index(line, "("); idx >= 0 {
		if end := strings.LastIndex(line, ")"); end > idx {
			line = line[:idx] + line[end+1:]
		}
	}
	return strings.TrimSpace(line)
}

func classifyMove(isRapid, beam bool) MoveType {
	switch {
	case isRapid:
		return MoveRapid
	case beam:
		return MoveCut
	default:
		return MoveTraverse
	}
}

// CutLength returns the total distance travelled with the beam on, in mm.
func CutLength(code string) float64 {
	var total float64
	for _, m := range ParseGCode(code) {
		if m.Type == MoveCut {
			total += m.Length()
		}
	}
	return total
}

// CutTime returns the minutes spent on cutting moves at their programmed
// feed rates. Moves without a feed rate are ignored.
func CutTime(code string) float64 {
	var minutes float64
	for _, m := range ParseGCode(code) {
		if m.Type == MoveCut && m.FeedRate > 0 {
			minutes += m.Length() / m.FeedRate
		}
	}
	return minutes
}
