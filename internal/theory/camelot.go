// Package theory implements the pure music-theory primitives the planner
// builds on: the Camelot wheel and harmonic/BPM compatibility scoring
// (spec §4.1).
package theory

import (
	"strconv"
	"strings"
)

// wheel maps a Camelot code to its musical key name and enharmonic alias,
// ported from the Camelot Wheel reference table (theory/camelot.py in the
// original implementation).
type wheelEntry struct {
	musicalKey string
	enharmonic string
}

var wheel = map[string]wheelEntry{
	"1A": {"Abm", "G#m"}, "2A": {"Ebm", "D#m"}, "3A": {"Bbm", "A#m"},
	"4A": {"Fm", ""}, "5A": {"Cm", ""}, "6A": {"Gm", ""},
	"7A": {"Dm", ""}, "8A": {"Am", ""}, "9A": {"Em", ""},
	"10A": {"Bm", ""}, "11A": {"F#m", "Gbm"}, "12A": {"C#m", "Dbm"},
	"1B": {"B", "Cb"}, "2B": {"F#", "Gb"}, "3B": {"Db", "C#"},
	"4B": {"Ab", "G#"}, "5B": {"Eb", "D#"}, "6B": {"Bb", "A#"},
	"7B": {"F", ""}, "8B": {"C", ""}, "9B": {"G", ""},
	"10B": {"D", ""}, "11B": {"A", ""}, "12B": {"E", ""},
}

var keyToCamelot = buildReverseIndex()

func buildReverseIndex() map[string]string {
	idx := make(map[string]string, len(wheel)*2)
	for code, e := range wheel {
		idx[strings.ToLower(e.musicalKey)] = code
		if e.enharmonic != "" {
			idx[strings.ToLower(e.enharmonic)] = code
		}
	}
	return idx
}

// Camelot is a parsed Camelot code: a number in [1,12] and a mode, A (minor)
// or B (major).
type Camelot struct {
	Num  int
	Mode byte // 'A' or 'B'
}

func (c Camelot) String() string {
	return strconv.Itoa(c.Num) + string(c.Mode)
}

// ParseCamelot parses a string already in Camelot notation (e.g. "8A"). It
// does not attempt alias lookup; use KeyToCamelot for that.
func ParseCamelot(s string) (Camelot, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return Camelot{}, false
	}
	mode := s[len(s)-1]
	if mode != 'A' && mode != 'B' {
		return Camelot{}, false
	}
	num, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || num < 1 || num > 12 {
		return Camelot{}, false
	}
	return Camelot{Num: num, Mode: mode}, true
}

// KeyToCamelot converts a musical-key alias (e.g. "Am", "C major", "8A") to
// Camelot notation. Returns ok=false if the key is not recognized.
func KeyToCamelot(key string) (Camelot, bool) {
	if key == "" {
		return Camelot{}, false
	}
	if c, ok := ParseCamelot(key); ok {
		return c, true
	}
	norm := strings.ToLower(strings.TrimSpace(key))
	norm = strings.ReplaceAll(norm, " major", "")
	norm = strings.ReplaceAll(norm, " minor", "m")
	if code, ok := keyToCamelot[norm]; ok {
		return ParseCamelot(code)
	}
	return Camelot{}, false
}

// CamelotToKey converts a Camelot code back to its musical key name, the
// round-trip law spec §8 requires (camelot(key_to_camelot(key)) = key for
// every Camelot code, since every code already has a canonical musical name).
func CamelotToKey(c Camelot) (string, bool) {
	e, ok := wheel[c.String()]
	if !ok {
		return "", false
	}
	return e.musicalKey, true
}

// RelativeOf returns the relative major (for a minor code) or relative
// minor (for a major code) — same number, opposite mode.
func RelativeOf(c Camelot) Camelot {
	other := byte('B')
	if c.Mode == 'B' {
		other = 'A'
	}
	return Camelot{Num: c.Num, Mode: other}
}

// circularDistance is min(|a-b|, 12-|a-b|) on the 12-slot wheel.
func circularDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if d > 12-d {
		return 12 - d
	}
	return d
}

// HarmonicScore implements the table in spec §4.1, evaluated in order and
// returning the first match. It is symmetric: HarmonicScore(a,b) ==
// HarmonicScore(b,a), since every rule only depends on symmetric quantities
// (circular distance, same_mode).
func HarmonicScore(a, b Camelot) int {
	d := circularDistance(a.Num, b.Num)
	sameMode := a.Mode == b.Mode

	switch {
	case a == b:
		return 100
	case d == 1 && sameMode:
		return 95
	case d == 0 && !sameMode:
		return 90
	case d == 1 && !sameMode:
		return 80
	case d == 7 && sameMode:
		return 75
	case d == 2 && sameMode:
		return 70
	case d == 5 && sameMode:
		return 70
	case d == 2 && !sameMode:
		return 60
	case d == 3 && sameMode:
		return 50
	default:
		return 30
	}
}

// CompatibleKey describes one harmonically related neighbor on the wheel.
type CompatibleKey struct {
	Code  Camelot
	Score int
	Kind  string
}

// CompatibleKeys enumerates the canonical neighbors of c: same key, +1/-1
// adjacent, relative major/minor, and the two diagonal adjacents. The set
// is symmetric under adjacency and relative relations, as required by the
// round-trip law in spec §8.
func CompatibleKeys(c Camelot) []CompatibleKey {
	next := Camelot{Num: c.Num%12 + 1, Mode: c.Mode}
	prev := Camelot{Num: (c.Num+10)%12 + 1, Mode: c.Mode}
	rel := RelativeOf(c)
	otherMode := rel.Mode
	diagNext := Camelot{Num: next.Num, Mode: otherMode}
	diagPrev := Camelot{Num: prev.Num, Mode: otherMode}

	return []CompatibleKey{
		{c, 100, "PERFECT"},
		{next, 95, "ADJACENT"},
		{prev, 95, "ADJACENT"},
		{rel, 90, "RELATIVE"},
		{diagNext, 80, "DIAGONAL"},
		{diagPrev, 80, "DIAGONAL"},
	}
}
