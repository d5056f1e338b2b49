package voice

import (
	"fmt"
	"strings"

	"campusnav/models"
)

// ErrorCode classifies speech device failures. The category is decided
// once, at the device boundary; everything above switches on it.
type ErrorCode int

const (
	CodeOther ErrorCode = iota
	CodeCanceled
	CodeNetwork
	CodeNotAllowed
)

type SpeechError struct {
	Code ErrorCode
	Err  error
}

func (e *SpeechError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("speech error (code %d)", e.Code)
	}
	return e.Err.Error()
}

func (e *SpeechError) Unwrap() error { return e.Err }

// Callbacks report utterance lifecycle. The device fires OnStart when
// audio begins, then exactly one of OnEnd or OnError.
type Callbacks struct {
	OnStart func()
	OnEnd   func()
	OnError func(*SpeechError)
}

// Device is the platform speech capability the narrator drives.
// At most one utterance is in flight; Speak must not be called again
// before the previous utterance reported OnEnd/OnError.
type Device interface {
	IsSupported() bool
	Voices() []models.Voice
	Speak(text string, v models.Voice, rate, pitch float64, cb Callbacks) error
	Cancel()
	Pause()
	Resume()
	// RequiresKeepAlive reports that long utterances stall on this
	// device unless periodically paused and resumed.
	RequiresKeepAlive() bool
}

// PickVoice resolves the ranked language preference list against the
// device's voices. First pref with a match wins; empty result when the
// device reported no voices yet.
func PickVoice(voices []models.Voice, prefs []string) (models.Voice, bool) {
	for _, pref := range prefs {
		for _, v := range voices {
			if strings.HasPrefix(v.Language, pref) {
				return v, true
			}
		}
	}
	if len(voices) > 0 {
		return voices[0], true
	}
	return models.Voice{}, false
}

// PickLocalVoice prefers voices that do not need the network; used as
// the fallback after a network-category error.
func PickLocalVoice(voices []models.Voice) (models.Voice, bool) {
	for _, v := range voices {
		if v.LocalService {
			return v, true
		}
	}
	return PickVoice(voices, nil)
}
