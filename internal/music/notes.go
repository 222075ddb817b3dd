package music

import (
	"fmt"
	"strings"
)

// Notation selects how accidentals are spelled in prompts and answers.
type Notation string

const (
	Sharps Notation = "sharps"
	Flats  Notation = "flats"
)

// ParseNotation validates a notation name. Empty means sharps.
func ParseNotation(s string) (Notation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sharps", "sharp", "#":
		return Sharps, nil
	case "flats", "flat", "b":
		return Flats, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownNotation, s)
	}
}

var (
	sharpNames = [12]string{"C", "C♯", "D", "D♯", "E", "F", "F♯", "G", "G♯", "A", "A♯", "B"}
	flatNames  = [12]string{"C", "D♭", "D", "E♭", "E", "F", "G♭", "G", "A♭", "A", "B♭", "B"}
	// idNames spells pitch classes in item ids; ids never change with notation.
	idNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
)

var letterPitch = map[rune]int{'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11}

func mod12(v int) int {
	return ((v % 12) + 12) % 12
}

// NoteName spells pitch class pc in notation n.
func NoteName(pc int, n Notation) string {
	if n == Flats {
		return flatNames[mod12(pc)]
	}
	return sharpNames[mod12(pc)]
}

// spellings returns the preferred spelling first, then its enharmonic if any.
func spellings(pc int, n Notation) []string {
	preferred := NoteName(pc, n)
	other := NoteName(pc, Sharps)
	if n != Flats {
		other = NoteName(pc, Flats)
	}
	if other == preferred {
		return []string{preferred}
	}
	return []string{preferred, other}
}

func normalizeAnswer(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "♯", "#")
	s = strings.ReplaceAll(s, "♭", "b")
	s = strings.ReplaceAll(s, "sharps", "#")
	s = strings.ReplaceAll(s, "sharp", "#")
	s = strings.ReplaceAll(s, "flats", "b")
	s = strings.ReplaceAll(s, "flat", "b")
	return s
}

// ParseNote reads a note name such as "F#", "gb", "B♭" or "E sharp" and
// returns its pitch class. Enharmonic spellings map to the same class.
func ParseNote(s string) (int, bool) {
	s = normalizeAnswer(s)
	if s == "" {
		return 0, false
	}
	runes := []rune(s)
	pc, ok := letterPitch[runes[0]]
	if !ok {
		return 0, false
	}
	for _, r := range runes[1:] {
		switch r {
		case '#':
			pc++
		case 'b':
			pc--
		default:
			return 0, false
		}
	}
	return mod12(pc), true
}

// parseSignature reads "3#", "2 flats", "bbb" or "0" into an accidental
// count and whether the accidentals are sharps.
func parseSignature(s string) (count int, sharp bool, ok bool) {
	s = normalizeAnswer(s)
	switch s {
	case "0", "none", "noaccidentals", "natural", "naturals", "-":
		return 0, false, true
	case "":
		return 0, false, false
	}
	if strings.Trim(s, "#") == "" {
		return len(s), true, true
	}
	if strings.Trim(s, "b") == "" {
		return len(s), false, true
	}
	digits := strings.TrimRight(s, "#b")
	suffix := s[len(digits):]
	if digits == "" || len(suffix) != 1 {
		return 0, false, false
	}
	if _, err := fmt.Sscanf(digits, "%d", &count); err != nil || count < 0 || count > 7 {
		return 0, false, false
	}
	return count, suffix == "#", true
}

func signatureText(count int, sharp bool) string {
	if count == 0 {
		return "no accidentals"
	}
	glyph := "♭"
	if sharp {
		glyph = "♯"
	}
	return fmt.Sprintf("%d%s", count, glyph)
}
