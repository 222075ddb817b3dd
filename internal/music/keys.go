package music

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/fretdrill/internal/model"
)

type majorKey struct {
	pc    int
	count int
	sharp bool
}

// majorKeys in circle-of-fifths order. The six-accidental key is spelled
// F♯ or G♭ depending on notation.
var majorKeys = []majorKey{
	{pc: 0, count: 0},
	{pc: 7, count: 1, sharp: true},
	{pc: 2, count: 2, sharp: true},
	{pc: 9, count: 3, sharp: true},
	{pc: 4, count: 4, sharp: true},
	{pc: 11, count: 5, sharp: true},
	{pc: 6, count: 6, sharp: true},
	{pc: 1, count: 5},
	{pc: 8, count: 4},
	{pc: 3, count: 3},
	{pc: 10, count: 2},
	{pc: 5, count: 1},
}

const maxAccidentals = 6

// NewKeys drills major key signatures in both directions.
// Items are "<key>:fwd" (key to signature) and "<key>:rev" (signature to key),
// grouped by accidental count.
func NewKeys(settings Settings) Mode {
	c := newCatalog("keys", "Major key signatures, both directions")
	for count := 0; count <= maxAccidentals; count++ {
		label := fmt.Sprintf("%d accidentals", count)
		if count == 1 {
			label = "1 accidental"
		}
		c.groups = append(c.groups, model.GroupDef{Index: count, Label: label})
	}
	for _, k := range majorKeys {
		spelling := Flats
		sharp := k.sharp
		if k.sharp {
			spelling = Sharps
		}
		if k.count == maxAccidentals {
			spelling = settings.Notation
			sharp = settings.Notation != Flats
		}
		name := NoteName(k.pc, spelling)
		id := keyID(k)
		sig := signatureText(k.count, sharp)
		c.add(k.count, id+":fwd", entry{
			question: Question{
				Prompt:  fmt.Sprintf("Key signature of %s major?", name),
				Answers: []string{sig},
			},
			accept: func(answer string) bool {
				count, isSharp, ok := parseSignature(answer)
				if !ok || count != k.count {
					return false
				}
				return count == 0 || count == maxAccidentals || isSharp == k.sharp
			},
		})
		c.add(k.count, id+":rev", entry{
			question: Question{
				Prompt:  fmt.Sprintf("Which major key has %s?", sig),
				Answers: spellings(k.pc, spelling),
			},
			accept: acceptPitch(k.pc),
		})
	}
	return c
}

// keyID spells a key in ASCII. It does not depend on notation.
func keyID(k majorKey) string {
	if k.sharp || k.count == 0 {
		return idNames[k.pc]
	}
	return strings.ReplaceAll(NoteName(k.pc, Flats), "♭", "b")
}
