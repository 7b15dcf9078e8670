package skycal

import (
	"fmt"
	"math"
	"time"

	"github.com/ngmaloney/tidecast/internal/models"
)

// Phase is a principal lunar phase, numbered within a lunation.
type Phase int

const (
	NewMoon Phase = iota
	FirstQuarter
	FullMoon
	LastQuarter
)

// EventType maps the phase onto its event type.
func (p Phase) EventType() models.EventType {
	switch p {
	case FirstQuarter:
		return models.EventFirstQuarter
	case FullMoon:
		return models.EventFullMoon
	case LastQuarter:
		return models.EventLastQuarter
	}
	return models.EventNewMoon
}

// phaseJD returns the Julian date (±2 min) of phase p in lunation n,
// counted from the new moon of 1900 January.
func phaseJD(n int, p Phase) float64 {
	lun := float64(n) + float64(p)/4
	t := lun / 1236.85
	t2 := t * t
	t3 := t2 * t

	jd := 2415020.75933 + 29.53058868*lun + 0.0001178*t2 - 0.000000155*t3 +
		0.00033*sinDeg(166.56+132.87*t-0.009173*t2)
	m := (359.2242 + 29.10535608*lun - 0.0000333*t2 - 0.00000347*t3) / degPerRadian
	mpr := (306.0253 + 385.81691806*lun + 0.0107306*t2 + 0.00001236*t3) / degPerRadian
	f := (21.2964 + 390.67050646*lun - 0.0016528*t2 - 0.00000239*t3) / degPerRadian

	sin := math.Sin
	var cor float64
	if p == NewMoon || p == FullMoon {
		cor = (0.1734-0.000393*t)*sin(m) +
			0.0021*sin(2*m) -
			0.4068*sin(mpr) +
			0.0161*sin(2*mpr) -
			0.0004*sin(3*mpr) +
			0.0104*sin(2*f) -
			0.0051*sin(m+mpr) -
			0.0074*sin(m-mpr) +
			0.0004*sin(2*f+m) -
			0.0004*sin(2*f-m) -
			0.0006*sin(2*f+mpr) +
			0.0010*sin(2*f-mpr) +
			0.0005*sin(m+2*mpr)
	} else {
		cor = (0.1721-0.0004*t)*sin(m) +
			0.0021*sin(2*m) -
			0.6280*sin(mpr) +
			0.0089*sin(2*mpr) -
			0.0004*sin(3*mpr) +
			0.0079*sin(2*f) -
			0.0119*sin(m+mpr) -
			0.0047*sin(m-mpr) +
			0.0003*sin(2*f+m) -
			0.0004*sin(2*f-m) -
			0.0006*sin(2*f+mpr) +
			0.0021*sin(2*f-mpr) +
			0.0003*sin(m+2*mpr) +
			0.0004*sin(m-2*mpr) -
			0.0003*sin(2*m+mpr)
		quarter := 0.0028 - 0.0004*math.Cos(m) + 0.0003*math.Cos(mpr)
		if p == FirstQuarter {
			cor += quarter
		} else {
			cor -= quarter
		}
	}
	return jd + cor
}

// maxLunationScan bounds the walk from the lunation estimate to the first
// new moon after the query instant. The estimate starts two lunations early.
const maxLunationScan = 5

// NextMoonPhase returns the first principal lunar phase strictly after t.
func NextMoonPhase(after time.Time) models.Event {
	// Step one second ahead so a phase found at exactly t is not returned
	// again.
	jd := julianDay(after.Add(time.Second))

	n := int(math.Floor((jd-2415020.5)/29.5307 - 2))
	next := phaseJD(n+1, NewMoon)
	for i := 0; next <= jd; i++ {
		if i == maxLunationScan {
			panic(fmt.Sprintf("skycal: no new moon found after JD %.5f", jd))
		}
		n++
		next = phaseJD(n+1, NewMoon)
	}

	// The new moon of lunation n is at or before jd; try its quarters
	// before falling through to the next new moon.
	for p := FirstQuarter; p <= LastQuarter; p++ {
		if pj := phaseJD(n, p); pj > jd {
			return phaseEvent(pj, p)
		}
	}
	return phaseEvent(next, NewMoon)
}

func phaseEvent(jd float64, p Phase) models.Event {
	return models.Event{Time: fromJulian(jd), Type: p.EventType()}
}
