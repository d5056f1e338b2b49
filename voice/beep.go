package voice

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"time"

	google_translate_tts "github.com/GrailFinder/google-translate-tts"
	"github.com/GrailFinder/google-translate-tts/handlers"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"

	"campusnav/models"
)

// networkVoices are the translate-backed voices; they need connectivity.
var networkVoices = []models.Voice{
	{Name: "Google UK English", Language: "en-GB"},
	{Name: "Google US English", Language: "en-US"},
	{Name: "Google English", Language: "en"},
	{Name: "Google Français", Language: "fr"},
}

// BeepDevice renders speech through the beep speaker. Network voices are
// synthesized via google-translate-tts; local voices shell out to a
// detected system speech binary (espeak and friends) so narration keeps
// working offline.
type BeepDevice struct {
	logger   *slog.Logger
	cacheDir string
	localBin string

	mu       sync.Mutex
	cur      *utterance
	everInit bool
}

type utterance struct {
	ctrl     *beep.Ctrl
	cmd      *exec.Cmd
	done     chan struct{}
	once     sync.Once
	canceled bool
}

func (u *utterance) finish() {
	u.once.Do(func() { close(u.done) })
}

// begin makes u the current utterance; from here on Cancel can reach it.
func (d *BeepDevice) begin(u *utterance) {
	d.mu.Lock()
	d.cur = u
	d.mu.Unlock()
}

// release retires u and reports whether it was canceled along the way.
func (d *BeepDevice) release(u *utterance) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cur == u {
		d.cur = nil
	}
	return u.canceled
}

func NewBeepDevice(logger *slog.Logger, localBinOverride string) *BeepDevice {
	return &BeepDevice{
		logger:   logger,
		cacheDir: os.TempDir() + "/campusnav-tts",
		localBin: detectLocalBin(localBinOverride),
	}
}

func detectLocalBin(override string) string {
	if override != "" {
		if _, err := exec.LookPath(override); err == nil {
			return override
		}
		return ""
	}
	candidates := []string{"espeak-ng", "espeak", "flite"}
	if runtime.GOOS == "darwin" {
		candidates = []string{"say"}
	}
	for _, c := range candidates {
		if _, err := exec.LookPath(c); err == nil {
			return c
		}
	}
	return ""
}

func (d *BeepDevice) IsSupported() bool {
	return len(d.Voices()) > 0
}

func (d *BeepDevice) Voices() []models.Voice {
	voices := make([]models.Voice, 0, len(networkVoices)+1)
	voices = append(voices, networkVoices...)
	if d.localBin != "" {
		voices = append(voices, models.Voice{
			Name:         d.localBin,
			Language:     "en",
			LocalService: true,
		})
	}
	return voices
}

// Long translate streams stall the speaker unless nudged, same class of
// workaround browsers need for their speech engines.
func (d *BeepDevice) RequiresKeepAlive() bool { return true }

func (d *BeepDevice) Speak(text string, v models.Voice, rate, pitch float64, cb Callbacks) error {
	if text == "" {
		return fmt.Errorf("empty utterance")
	}
	if v.LocalService {
		go d.speakLocal(text, v, rate, pitch, cb)
		return nil
	}
	go d.speakNetwork(text, v, rate, cb)
	return nil
}

func (d *BeepDevice) speakNetwork(text string, v models.Voice, rate float64, cb Callbacks) {
	d.logger.Debug("fn: speakNetwork is called", "text-len", len(text), "voice", v.Name)
	// register before synthesis so a cancel landing during the network
	// round trip still has something to hit
	u := &utterance{done: make(chan struct{})}
	d.begin(u)
	sp := &google_translate_tts.Speech{
		Folder:   d.cacheDir,
		Language: v.Language,
		Handler:  &handlers.Beep{},
	}
	reader, err := sp.GenerateSpeech(text)
	if err != nil {
		d.release(u)
		d.logger.Error("generate speech failed", "error", err)
		cb.OnError(&SpeechError{Code: CodeNetwork, Err: err})
		return
	}
	streamer, format, err := mp3.Decode(io.NopCloser(reader))
	if err != nil {
		d.release(u)
		d.logger.Error("mp3 decode failed", "error", err)
		cb.OnError(&SpeechError{Code: CodeOther, Err: err})
		return
	}
	defer streamer.Close()
	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		// init errors after the first successful one just mean the
		// speaker is already up
		d.mu.Lock()
		ok := d.everInit
		d.mu.Unlock()
		if !ok {
			d.release(u)
			d.logger.Error("speaker unavailable", "error", err)
			cb.OnError(&SpeechError{Code: CodeNotAllowed, Err: err})
			return
		}
		d.logger.Debug("failed to init speaker", "error", err)
	} else {
		d.mu.Lock()
		d.everInit = true
		d.mu.Unlock()
	}
	playback := beep.Streamer(streamer)
	if rate > 0 && rate != 1.0 {
		playback = beep.ResampleRatio(3, rate, streamer)
	}
	d.mu.Lock()
	if u.canceled {
		// canceled while synthesis was still running; never reaches
		// the speaker
		if d.cur == u {
			d.cur = nil
		}
		d.mu.Unlock()
		cb.OnError(&SpeechError{Code: CodeCanceled})
		return
	}
	u.ctrl = &beep.Ctrl{Streamer: beep.Seq(playback, beep.Callback(u.finish))}
	d.mu.Unlock()
	cb.OnStart()
	speaker.Play(u.ctrl)
	<-u.done
	if d.release(u) {
		cb.OnError(&SpeechError{Code: CodeCanceled})
		return
	}
	cb.OnEnd()
}

func (d *BeepDevice) speakLocal(text string, v models.Voice, rate, pitch float64, cb Callbacks) {
	d.logger.Debug("fn: speakLocal is called", "text-len", len(text), "bin", d.localBin)
	if d.localBin == "" {
		cb.OnError(&SpeechError{Code: CodeOther, Err: fmt.Errorf("no local speech binary")})
		return
	}
	args := localArgs(d.localBin, text, rate, pitch)
	cmd := exec.Command(d.localBin, args...)
	u := &utterance{cmd: cmd, done: make(chan struct{})}
	// registration and process start happen under the same lock, so any
	// cancel that can see this utterance also sees a live process to kill
	d.mu.Lock()
	d.cur = u
	if err := cmd.Start(); err != nil {
		d.cur = nil
		d.mu.Unlock()
		u.finish()
		cb.OnError(&SpeechError{Code: CodeOther, Err: err})
		return
	}
	d.mu.Unlock()
	cb.OnStart()
	err := cmd.Wait()
	canceled := d.release(u)
	u.finish()
	switch {
	case canceled:
		cb.OnError(&SpeechError{Code: CodeCanceled})
	case err != nil:
		cb.OnError(&SpeechError{Code: CodeOther, Err: err})
	default:
		cb.OnEnd()
	}
}

func localArgs(bin, text string, rate, pitch float64) []string {
	if rate <= 0 {
		rate = 1.0
	}
	wpm := strconv.Itoa(int(175 * rate))
	switch bin {
	case "say":
		return []string{"-r", wpm, text}
	case "flite":
		return []string{"-t", text}
	default: // espeak family
		p := strconv.Itoa(int(50 * pitch))
		return []string{"-s", wpm, "-p", p, text}
	}
}

func (d *BeepDevice) Cancel() {
	d.mu.Lock()
	u := d.cur
	d.mu.Unlock()
	if u == nil {
		return
	}
	d.logger.Debug("attempted to stop speech device")
	if u.cmd != nil {
		d.mu.Lock()
		u.canceled = true
		d.mu.Unlock()
		if u.cmd.Process != nil {
			_ = u.cmd.Process.Kill()
		}
		return
	}
	d.mu.Lock()
	u.canceled = true
	d.mu.Unlock()
	speaker.Lock()
	if u.ctrl != nil {
		u.ctrl.Streamer = nil
	}
	speaker.Unlock()
	u.finish()
}

func (d *BeepDevice) Pause()  { d.setPaused(true) }
func (d *BeepDevice) Resume() { d.setPaused(false) }

func (d *BeepDevice) setPaused(paused bool) {
	d.mu.Lock()
	u := d.cur
	d.mu.Unlock()
	if u == nil || u.ctrl == nil {
		return
	}
	speaker.Lock()
	u.ctrl.Paused = paused
	speaker.Unlock()
}
