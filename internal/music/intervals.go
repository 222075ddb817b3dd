package music

import (
	"fmt"

	"github.com/verte-zerg/fretdrill/internal/model"
)

var intervalNames = [12]string{"P1", "m2", "M2", "m3", "M3", "P4", "TT", "P5", "m6", "M6", "m7", "M7"}

// NewIntervals asks for the note a given interval above a root.
// Items are "<root>+<semitones>", one group per interval size.
func NewIntervals(settings Settings) Mode {
	c := newCatalog("intervals", "Name the note an interval above a root")
	for semitones := 1; semitones < 12; semitones++ {
		c.groups = append(c.groups, model.GroupDef{
			Index: semitones - 1,
			Label: intervalNames[semitones],
		})
		for root := 0; root < 12; root++ {
			pc := mod12(root + semitones)
			c.add(semitones-1, fmt.Sprintf("%s+%d", idNames[root], semitones), entry{
				question: Question{
					Prompt:  fmt.Sprintf("%s above %s", intervalNames[semitones], NoteName(root, settings.Notation)),
					Answers: spellings(pc, settings.Notation),
				},
				accept: acceptPitch(pc),
			})
		}
	}
	c.sortGroups = byIntervalDistance
	return c
}

// byIntervalDistance puts inversion pairs together, nearest first.
func byIntervalDistance(a, b model.GroupDef) int {
	da, db := intervalDistance(a.Index+1), intervalDistance(b.Index+1)
	if da != db {
		return da - db
	}
	return a.Index - b.Index
}

func intervalDistance(semitones int) int {
	return min(semitones, 12-semitones)
}
