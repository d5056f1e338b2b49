package voice

import (
	"io"
	"log/slog"
	"os/exec"
	"testing"
	"time"
)

func beepLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// a cancel that lands while synthesis is still running (before any audio
// reaches the speaker) must mark the registered utterance so playback is
// suppressed
func TestCancelReachesUtteranceBeforePlayback(t *testing.T) {
	d := NewBeepDevice(beepLogger(), "")
	u := &utterance{done: make(chan struct{})}
	d.begin(u)

	d.Cancel()

	select {
	case <-u.done:
	case <-time.After(time.Second):
		t.Fatal("cancel should complete a pre-playback utterance")
	}
	if !d.release(u) {
		t.Error("utterance not marked canceled")
	}
	d.mu.Lock()
	cur := d.cur
	d.mu.Unlock()
	if cur != nil {
		t.Error("canceled utterance still registered")
	}
}

func TestCancelWithNothingInFlight(t *testing.T) {
	d := NewBeepDevice(beepLogger(), "")
	d.Cancel() // must not panic or register anything
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cur != nil {
		t.Error("cancel registered an utterance out of nowhere")
	}
}

func TestReleaseOnlyRetiresOwnUtterance(t *testing.T) {
	d := NewBeepDevice(beepLogger(), "")
	old := &utterance{done: make(chan struct{})}
	next := &utterance{done: make(chan struct{})}
	d.begin(old)
	d.begin(next) // old superseded before it released
	d.release(old)
	d.mu.Lock()
	cur := d.cur
	d.mu.Unlock()
	if cur != next {
		t.Error("releasing a superseded utterance must not drop the current one")
	}
}

func TestLocalSpeakLifecycle(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("no 'true' binary on PATH")
	}
	d := NewBeepDevice(beepLogger(), "true")
	started := make(chan struct{})
	ended := make(chan struct{})
	cb := Callbacks{
		OnStart: func() { close(started) },
		OnEnd:   func() { close(ended) },
		OnError: func(se *SpeechError) { t.Errorf("unexpected error: %v", se) },
	}
	v, ok := PickLocalVoice(d.Voices())
	if !ok || !v.LocalService {
		t.Fatalf("local voice not offered: %+v", d.Voices())
	}
	if err := d.Speak("hello", v, 1.0, 1.0, cb); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	for _, ch := range []chan struct{}{started, ended} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatal("lifecycle callback never fired")
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cur != nil {
		t.Error("utterance not retired after completion")
	}
}
