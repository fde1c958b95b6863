package dispatch

import (
	"testing"

	"tourdispatch/internal/model"
)

func TestMatrixGet(t *testing.T) {
	m := BuildMatrix([]model.TravelTimeEntry{
		{FromZone: "downtown", ToZone: "marina", Minutes: 15},
		{FromZone: "airport", ToZone: "downtown", Minutes: 200},
	})

	if got := m.Get("downtown", "marina", 30); got != 15 {
		t.Fatalf("direct lookup = %d, want 15", got)
	}
	// reverse-direction fallback
	if got := m.Get("marina", "downtown", 30); got != 15 {
		t.Fatalf("reverse lookup = %d, want 15", got)
	}
	if got := m.Get("downtown", "downtown", 30); got != 0 {
		t.Fatalf("same zone = %d, want 0", got)
	}
	if got := m.Get("nowhere", "marina", 30); got != 30 {
		t.Fatalf("unknown pair = %d, want default 30", got)
	}
	if got := m.Get("", "marina", 30); got != 30 {
		t.Fatalf("missing zone = %d, want default 30", got)
	}
	// cap applies to stored values and defaults alike
	if got := m.Get("airport", "downtown", 30); got != MaxTravelMinutes {
		t.Fatalf("capped lookup = %d, want %d", got, MaxTravelMinutes)
	}
	if got := m.Get("a", "b", 999); got != MaxTravelMinutes {
		t.Fatalf("capped default = %d, want %d", got, MaxTravelMinutes)
	}
}

func TestMatrixEmptyAndNil(t *testing.T) {
	empty := NewTravelMatrix()
	if got := empty.Get("a", "b", 30); got != 30 {
		t.Fatalf("empty matrix = %d, want 30", got)
	}
	var nilMatrix *TravelMatrix
	if got := nilMatrix.Get("a", "b", 30); got != 30 {
		t.Fatalf("nil matrix = %d, want 30", got)
	}
	if nilMatrix.Len() != 0 || empty.Len() != 0 {
		t.Fatalf("expected zero length")
	}
}

func TestMatrixRouteTotal(t *testing.T) {
	m := BuildMatrix([]model.TravelTimeEntry{
		{FromZone: "a", ToZone: "b", Minutes: 10},
		{FromZone: "b", ToZone: "c", Minutes: 20},
	})
	if got := m.RouteTotal([]string{"a", "b", "c"}, 30); got != 30 {
		t.Fatalf("route total = %d, want 30", got)
	}
	// unknown middle leg falls back to default
	if got := m.RouteTotal([]string{"a", "x", "c"}, 30); got != 60 {
		t.Fatalf("route total with fallback = %d, want 60", got)
	}
	if got := m.RouteTotal([]string{"a"}, 30); got != 0 {
		t.Fatalf("single zone = %d, want 0", got)
	}
}
