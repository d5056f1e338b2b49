package voice

import (
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"campusnav/config"
	"campusnav/models"
)

// Visual is the mascot hook; toggled around every utterance.
type Visual interface {
	SetSpeaking(bool)
}

// Narrator serializes narration through the speech device: strict FIFO
// for normal items, priority items clear the backlog and play next, and
// every failure ends in a bounded retry or a clean drop. Nothing here is
// ever fatal to the app.
type Narrator struct {
	logger    *slog.Logger
	dev       Device
	tokenizer *sentences.DefaultSentenceTokenizer
	visual    Visual
	notify    func(string)

	mu        sync.Mutex
	backlog   []string
	inFlight  bool
	current   string
	retries   int
	enabled   bool
	voice     models.Voice
	voiceOK   bool
	prefs     []string
	rate      float64
	pitch     float64
	gen       int
	watchdog  *time.Timer
	kaStop    chan struct{}
	hintShown bool

	maxRetries   int
	debounce     time.Duration
	retryDelay   time.Duration
	utterTimeout time.Duration
	keepAlive    time.Duration
}

func NewNarrator(logger *slog.Logger, dev Device, cfg *config.Config) *Narrator {
	rate := float64(cfg.TTS_SPEED)
	if runtime.GOOS == "android" {
		// android engines default noticeably faster; compensate
		rate *= 0.9
	}
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		logger.Warn("sentence tokenizer unavailable", "error", err)
	}
	return &Narrator{
		logger:       logger,
		dev:          dev,
		tokenizer:    tokenizer,
		enabled:      cfg.TTS_ENABLED,
		prefs:        cfg.TTS_VOICE_PREFS,
		rate:         rate,
		pitch:        float64(cfg.TTS_PITCH),
		maxRetries:   3,
		debounce:     150 * time.Millisecond,
		retryDelay:   300 * time.Millisecond,
		utterTimeout: 30 * time.Second,
		keepAlive:    10 * time.Second,
	}
}

// SetVisual attaches the mascot (or any speaking indicator).
func (n *Narrator) SetVisual(v Visual) { n.visual = v }

// SetNotify attaches the surface for the one-time "enable voice" hint.
func (n *Narrator) SetNotify(f func(string)) { n.notify = f }

// Speak queues text for narration. Priority interrupts the in-flight
// utterance and empties the backlog first, so the item plays next.
func (n *Narrator) Speak(text string, priority bool) {
	n.mu.Lock()
	if !n.enabled || strings.TrimSpace(text) == "" {
		n.mu.Unlock()
		return
	}
	parts := n.split(text)
	if priority {
		n.backlog = append(n.backlog[:0], parts...)
		n.retries = 0
		cancelInFlight := n.inFlight
		n.mu.Unlock()
		if cancelInFlight {
			// the canceled callback resumes the queue on the new head
			n.dev.Cancel()
			return
		}
		n.process()
		return
	}
	n.backlog = append(n.backlog, parts...)
	n.mu.Unlock()
	n.process()
}

// Stop cancels current and pending speech unconditionally.
func (n *Narrator) Stop() {
	n.mu.Lock()
	n.backlog = nil
	n.retries = 0
	n.gen++ // orphan any in-flight callbacks
	if n.inFlight {
		n.settleLocked()
	}
	n.mu.Unlock()
	n.dev.Cancel()
	n.setSpeakingVisual(false)
}

// Toggle flips the user mute; disabling stops everything immediately.
func (n *Narrator) Toggle() bool {
	n.mu.Lock()
	n.enabled = !n.enabled
	enabled := n.enabled
	n.mu.Unlock()
	if !enabled {
		n.Stop()
	}
	return enabled
}

func (n *Narrator) Enabled() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.enabled
}

// Nudge re-runs queue processing; wired to user gestures so a
// not-allowed device error can be cleared by interaction.
func (n *Narrator) Nudge() { n.process() }

// split keeps utterances sentence-sized so the watchdog and keep-alive
// bounds stay meaningful for long announcements.
func (n *Narrator) split(text string) []string {
	if n.tokenizer == nil {
		return []string{text}
	}
	sents := n.tokenizer.Tokenize(text)
	if len(sents) <= 1 {
		return []string{text}
	}
	parts := make([]string, 0, len(sents))
	for _, s := range sents {
		t := strings.TrimSpace(s.Text)
		if t != "" {
			parts = append(parts, t)
		}
	}
	return parts
}

func (n *Narrator) process() {
	n.mu.Lock()
	if !n.enabled || n.inFlight || len(n.backlog) == 0 {
		n.mu.Unlock()
		return
	}
	if !n.voiceOK {
		n.voice, n.voiceOK = PickVoice(n.dev.Voices(), n.prefs)
	}
	text := n.backlog[0]
	n.backlog = n.backlog[1:]
	n.inFlight = true
	n.current = text
	n.gen++
	gen := n.gen
	v, rate, pitch := n.voice, n.rate, n.pitch
	n.watchdog = time.AfterFunc(n.utterTimeout, func() { n.onTimeout(gen) })
	n.mu.Unlock()
	cb := Callbacks{
		OnStart: func() { n.onStart(gen) },
		OnEnd:   func() { n.onEnd(gen) },
		OnError: func(se *SpeechError) { n.onError(gen, se) },
	}
	if err := n.dev.Speak(text, v, rate, pitch, cb); err != nil {
		n.onError(gen, &SpeechError{Code: CodeOther, Err: err})
	}
}

func (n *Narrator) onStart(gen int) {
	n.mu.Lock()
	if gen != n.gen || !n.inFlight {
		n.mu.Unlock()
		return
	}
	if n.dev.RequiresKeepAlive() && n.kaStop == nil {
		stop := make(chan struct{})
		n.kaStop = stop
		go n.keepAliveLoop(stop)
	}
	n.mu.Unlock()
	n.setSpeakingVisual(true)
}

func (n *Narrator) onEnd(gen int) {
	n.mu.Lock()
	if gen != n.gen || !n.inFlight {
		n.mu.Unlock()
		return
	}
	n.settleLocked()
	n.retries = 0
	n.mu.Unlock()
	n.setSpeakingVisual(false)
	// small gap so consecutive utterances don't feel clipped together
	time.AfterFunc(n.debounce, n.process)
}

func (n *Narrator) onError(gen int, se *SpeechError) {
	n.mu.Lock()
	if gen != n.gen || !n.inFlight {
		n.mu.Unlock()
		return
	}
	text := n.current
	n.settleLocked()
	n.logger.Debug("utterance error", "code", int(se.Code), "error", se.Error())
	switch se.Code {
	case CodeCanceled:
		// an interrupted item is requeued behind whatever preempted
		// it; Stop/Toggle orphan the callback before canceling, so
		// this only fires for priority interruptions
		if text != "" {
			n.backlog = append(n.backlog, text)
		}
		n.mu.Unlock()
		n.setSpeakingVisual(false)
		time.AfterFunc(n.debounce, n.process)
	case CodeNetwork:
		// fall back to a voice that works offline and try again
		if lv, ok := PickLocalVoice(n.dev.Voices()); ok {
			n.voice = lv
			n.voiceOK = true
		}
		n.backlog = append([]string{text}, n.backlog...)
		n.mu.Unlock()
		n.setSpeakingVisual(false)
		time.AfterFunc(n.retryDelay, n.process)
	case CodeNotAllowed:
		// needs a user gesture; Nudge() resumes the queue
		n.backlog = append([]string{text}, n.backlog...)
		hint := !n.hintShown
		n.hintShown = true
		n.mu.Unlock()
		n.setSpeakingVisual(false)
		if hint && n.notify != nil {
			n.notify("Tap anywhere to enable voice guidance")
		}
	default:
		n.retries++
		if n.retries <= n.maxRetries {
			n.backlog = append([]string{text}, n.backlog...)
			n.mu.Unlock()
			n.setSpeakingVisual(false)
			time.AfterFunc(n.retryDelay, n.process)
			return
		}
		n.retries = 0
		n.logger.Warn("dropping utterance after retries", "text", text)
		n.mu.Unlock()
		n.setSpeakingVisual(false)
		time.AfterFunc(n.debounce, n.process)
	}
}

// onTimeout forces completion bookkeeping when no lifecycle callback
// ever fires, so a dead utterance can't block the queue forever.
func (n *Narrator) onTimeout(gen int) {
	n.mu.Lock()
	if gen != n.gen || !n.inFlight {
		n.mu.Unlock()
		return
	}
	n.logger.Warn("utterance watchdog fired", "text", n.current)
	n.settleLocked()
	n.mu.Unlock()
	n.setSpeakingVisual(false)
	n.dev.Cancel()
	time.AfterFunc(n.debounce, n.process)
}

// settleLocked clears in-flight bookkeeping; callers hold n.mu.
func (n *Narrator) settleLocked() {
	n.inFlight = false
	n.current = ""
	if n.watchdog != nil {
		n.watchdog.Stop()
		n.watchdog = nil
	}
	if n.kaStop != nil {
		close(n.kaStop)
		n.kaStop = nil
	}
}

func (n *Narrator) keepAliveLoop(stop chan struct{}) {
	t := time.NewTicker(n.keepAlive)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			n.dev.Pause()
			n.dev.Resume()
		}
	}
}

func (n *Narrator) setSpeakingVisual(on bool) {
	if n.visual != nil {
		n.visual.SetSpeaking(on)
	}
}
