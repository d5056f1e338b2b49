package nav

import "testing"

func TestFormatDistance(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0 meters"},
		{42, "42 meters"},
		{450, "450 meters"},
		{999.4, "999 meters"},
		{1000, "1.0 kilometers"},
		{1250, "1.2 kilometers"},
		{15300, "15.3 kilometers"},
	}
	for _, c := range cases {
		if got := FormatDistance(c.in); got != c.want {
			t.Errorf("FormatDistance(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPhraseVariants(t *testing.T) {
	p := NewPhraseBook()
	for ev, variants := range defaultPhrases {
		got := p.Pick(ev)
		found := false
		for _, v := range variants {
			if got == v {
				found = true
			}
		}
		if !found {
			t.Errorf("Pick(%s) = %q, not a known variant", ev, got)
		}
	}
	if got := p.Pick(Event("unknown")); got != "" {
		t.Errorf("unknown event should yield empty phrase, got %q", got)
	}
}

func TestFixedPhraseBookIsDeterministic(t *testing.T) {
	p := NewFixedPhraseBook()
	for range 10 {
		if got := p.Pick(EventCalculating); got != defaultPhrases[EventCalculating][0] {
			t.Fatalf("fixed picker returned %q", got)
		}
	}
}
