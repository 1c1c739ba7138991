package settings

import "testing"

func TestReferenceUnsetByDefault(t *testing.T) {
	s := NewStore()
	if _, ok := s.Reference(); ok {
		t.Error("Reference = set, want unset on a fresh store")
	}
}

func TestSetReference(t *testing.T) {
	s := NewStore()
	s.SetReference(400)

	ref, ok := s.Reference()
	if !ok {
		t.Fatal("Reference = unset, want set")
	}
	if ref.Value != 400 {
		t.Errorf("Value = %v, want 400", ref.Value)
	}
	if ref.SetAt.IsZero() {
		t.Error("SetAt must be stamped")
	}
}

func TestSetReferenceNonPositiveClears(t *testing.T) {
	s := NewStore()
	s.SetReference(400)

	for _, v := range []float64{0, -1} {
		s.SetReference(400)
		s.SetReference(v)
		if _, ok := s.Reference(); ok {
			t.Errorf("SetReference(%v): reference still set, want cleared", v)
		}
	}
}

func TestTradingEventsDefaultOn(t *testing.T) {
	s := NewStore()
	if !s.TradingEvents() {
		t.Error("TradingEvents = false on a fresh store, want true")
	}

	s.SetTradingEvents(false)
	if s.TradingEvents() {
		t.Error("TradingEvents = true after disabling")
	}
}

func TestBand(t *testing.T) {
	s := NewStore()
	if b := s.Band(); b.Enabled {
		t.Error("Band enabled on a fresh store, want disabled")
	}

	s.SetBand(AlertBand{High: 560, Low: 540, Enabled: true})
	b := s.Band()
	if !b.Enabled || b.High != 560 || b.Low != 540 {
		t.Errorf("Band = %+v, want {560 540 true}", b)
	}
}
