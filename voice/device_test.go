package voice

import (
	"errors"
	"testing"

	"campusnav/models"
)

func TestPickVoice(t *testing.T) {
	voices := []models.Voice{
		{Name: "Google US English", Language: "en-US"},
		{Name: "Google UK English", Language: "en-GB"},
		{Name: "Google Français", Language: "fr"},
		{Name: "espeak", Language: "en", LocalService: true},
	}
	cases := []struct {
		name  string
		prefs []string
		want  string
		ok    bool
	}{
		{"first pref wins", []string{"en-GB", "en-US"}, "Google UK English", true},
		{"prefix match", []string{"en"}, "Google US English", true},
		{"skip missing pref", []string{"de", "fr"}, "Google Français", true},
		{"no pref falls back to first voice", nil, "Google US English", true},
		{"unmatched prefs fall back to first voice", []string{"de", "ja"}, "Google US English", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := PickVoice(voices, c.prefs)
			if ok != c.ok || got.Name != c.want {
				t.Errorf("got (%q, %v), want (%q, %v)", got.Name, ok, c.want, c.ok)
			}
		})
	}
	if _, ok := PickVoice(nil, []string{"en"}); ok {
		t.Error("empty voice list must report no match")
	}
}

func TestPickLocalVoice(t *testing.T) {
	withLocal := []models.Voice{
		{Name: "Google UK English", Language: "en-GB"},
		{Name: "espeak", Language: "en", LocalService: true},
	}
	v, ok := PickLocalVoice(withLocal)
	if !ok || !v.LocalService {
		t.Errorf("got (%+v, %v), want the local voice", v, ok)
	}
	networkOnly := []models.Voice{{Name: "Google UK English", Language: "en-GB"}}
	v, ok = PickLocalVoice(networkOnly)
	if !ok || v.Name != "Google UK English" {
		t.Errorf("without locals the first voice should win, got (%+v, %v)", v, ok)
	}
}

func TestLocalArgs(t *testing.T) {
	cases := []struct {
		bin   string
		rate  float64
		pitch float64
		want  []string
	}{
		{"espeak", 1.0, 1.0, []string{"-s", "175", "-p", "50", "hi"}},
		{"espeak-ng", 2.0, 0.5, []string{"-s", "350", "-p", "25", "hi"}},
		{"say", 1.0, 1.0, []string{"-r", "175", "hi"}},
		{"flite", 1.0, 1.0, []string{"-t", "hi"}},
		{"espeak", 0, 1.0, []string{"-s", "175", "-p", "50", "hi"}},
	}
	for _, c := range cases {
		got := localArgs(c.bin, "hi", c.rate, c.pitch)
		if len(got) != len(c.want) {
			t.Errorf("%s: got %v, want %v", c.bin, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("%s: got %v, want %v", c.bin, got, c.want)
				break
			}
		}
	}
}

func TestSpeechErrorUnwrap(t *testing.T) {
	inner := errors.New("socket closed")
	se := &SpeechError{Code: CodeNetwork, Err: inner}
	if !errors.Is(se, inner) {
		t.Error("SpeechError should unwrap to the inner error")
	}
	if se.Error() != "socket closed" {
		t.Errorf("Error() = %q", se.Error())
	}
	bare := &SpeechError{Code: CodeCanceled}
	if bare.Error() == "" {
		t.Error("codeless message should not be empty")
	}
}
