package slots

import "time"

// The canonical day schedule is a pure function of the date: one slot per
// hour between the configured opening hours. Persisted rows are overlaid on
// top of it by matching the wall-clock start; the result, not a persistence
// lookup, is how "all slots for a day" are presented to callers.

// Generator produces canonical day schedules.
type Generator struct {
	startHour int
	endHour   int
}

// NewGenerator creates a generator covering [startHour, endHour) each day.
func NewGenerator(startHour, endHour int) *Generator {
	if startHour < 0 || endHour > 24 || startHour >= endHour {
		startHour, endHour = 9, 17
	}
	return &Generator{startHour: startHour, endHour: endHour}
}

// CanonicalDay returns the fixed hourly slot shapes for a date. The returned
// slots are unpersisted (zero ID) and available.
func (g *Generator) CanonicalDay(date time.Time) []Slot {
	day := Midnight(date)
	out := make([]Slot, 0, g.endHour-g.startHour)
	for h := g.startHour; h < g.endHour; h++ {
		start := day.Add(time.Duration(h) * time.Hour)
		out = append(out, Slot{
			Date:        day,
			StartTime:   start,
			EndTime:     start.Add(time.Hour),
			IsAvailable: true,
		})
	}
	return out
}

// OverlayDay replaces canonical slots with persisted rows that match on hour
// and minute of the start time.
func (g *Generator) OverlayDay(canonical, persisted []Slot) []Slot {
	out := make([]Slot, len(canonical))
	for i, c := range canonical {
		out[i] = c
		for _, p := range persisted {
			if p.StartTime.Hour() == c.StartTime.Hour() && p.StartTime.Minute() == c.StartTime.Minute() {
				out[i] = p
				break
			}
		}
	}
	return out
}

// Schedule builds the overlaid schedule for every day in [from, to],
// keyed by date in YYYY-MM-DD form. Days with no persisted rows still get a
// full canonical schedule.
func (g *Generator) Schedule(from, to time.Time, persisted []Slot) map[string][]Slot {
	byDate := make(map[string][]Slot)
	for _, slot := range persisted {
		key := Midnight(slot.Date).Format("2006-01-02")
		byDate[key] = append(byDate[key], slot)
	}

	out := make(map[string][]Slot)
	for day := Midnight(from); !day.After(Midnight(to)); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		out[key] = g.OverlayDay(g.CanonicalDay(day), byDate[key])
	}
	return out
}
