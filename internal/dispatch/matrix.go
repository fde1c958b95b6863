package dispatch

import (
	"tourdispatch/internal/model"
)

// MaxTravelMinutes caps every matrix lookup so a single bad data point
// cannot poison scoring.
const MaxTravelMinutes = 120

// DefaultTravelMinutes is the fallback used by the engine when a zone pair
// has no data or a zone is missing.
const DefaultTravelMinutes = 30

// TravelMatrix maps ordered zone pairs to estimated drive minutes. Travel is
// assumed symmetric: a missing pair falls back to the reverse direction, then
// to a caller-supplied default. The matrix is immutable once built for a
// pass; an empty matrix is valid and degrades every lookup to the default.
type TravelMatrix struct {
	minutes map[string]map[string]int
}

// NewTravelMatrix returns an empty matrix.
func NewTravelMatrix() *TravelMatrix {
	return &TravelMatrix{minutes: map[string]map[string]int{}}
}

// BuildMatrix constructs a matrix from flat zone-pair entries. Later entries
// for the same pair overwrite earlier ones.
func BuildMatrix(entries []model.TravelTimeEntry) *TravelMatrix {
	m := NewTravelMatrix()
	for _, e := range entries {
		m.Set(e.FromZone, e.ToZone, e.Minutes)
	}
	return m
}

// Set records the drive time for one ordered zone pair. Entries with a
// missing zone or negative minutes are ignored.
func (m *TravelMatrix) Set(from, to string, minutes int) {
	if from == "" || to == "" || minutes < 0 {
		return
	}
	if m.minutes[from] == nil {
		m.minutes[from] = map[string]int{}
	}
	m.minutes[from][to] = minutes
}

// Get returns the estimated drive minutes between two zones. Same-zone pairs
// are 0. A missing zone on either side returns def. Unknown pairs try the
// reverse direction before falling back to def. Every non-zero result is
// capped at MaxTravelMinutes.
func (m *TravelMatrix) Get(from, to string, def int) int {
	if from != "" && from == to {
		return 0
	}
	if from == "" || to == "" {
		return capMinutes(def)
	}
	if m != nil {
		if v, ok := m.minutes[from][to]; ok {
			return capMinutes(v)
		}
		if v, ok := m.minutes[to][from]; ok {
			return capMinutes(v)
		}
	}
	return capMinutes(def)
}

// RouteTotal sums consecutive pairwise lookups over an ordered zone sequence.
func (m *TravelMatrix) RouteTotal(zones []string, def int) int {
	total := 0
	for i := 0; i+1 < len(zones); i++ {
		total += m.Get(zones[i], zones[i+1], def)
	}
	return total
}

// Len reports the number of directed pairs with data.
func (m *TravelMatrix) Len() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, row := range m.minutes {
		n += len(row)
	}
	return n
}

func capMinutes(v int) int {
	if v > MaxTravelMinutes {
		return MaxTravelMinutes
	}
	if v < 0 {
		return 0
	}
	return v
}
