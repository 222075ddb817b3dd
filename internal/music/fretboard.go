package music

import (
	"fmt"

	"github.com/verte-zerg/fretdrill/internal/model"
)

const fretCount = 12

// standardTuning holds the open pitch class of strings 1 (high E) to 6 (low E).
var standardTuning = [6]int{4, 11, 7, 2, 9, 4}

// NewFretboard names the note at a string and fret in standard tuning.
// Items are "s<string>f<fret>", one group per string with low E first.
func NewFretboard(settings Settings) Mode {
	c := newCatalog("fretboard", "Name the note at a string and fret (standard tuning, frets 0-12)")
	for str := 6; str >= 1; str-- {
		open := standardTuning[str-1]
		c.groups = append(c.groups, model.GroupDef{
			Index: len(c.groups),
			Label: fmt.Sprintf("String %d (%s)", str, NoteName(open, settings.Notation)),
		})
		group := len(c.groups) - 1
		for fret := 0; fret <= fretCount; fret++ {
			pc := mod12(open + fret)
			c.add(group, fmt.Sprintf("s%df%d", str, fret), entry{
				question: Question{
					Prompt:  fmt.Sprintf("String %d, fret %d", str, fret),
					Answers: spellings(pc, settings.Notation),
				},
				accept: acceptPitch(pc),
			})
		}
	}
	return c
}
