package recognizer

import "errors"

// PermissionError reports a missing microphone or speech permission together
// with what the user can do about it.
type PermissionError struct {
	Err         error
	Remediation string
}

func (e *PermissionError) Error() string {
	return e.Err.Error()
}

func (e *PermissionError) Unwrap() error {
	return e.Err
}

// NewPermissionError wraps one of the permission sentinels with remediation text.
func NewPermissionError(err error) *PermissionError {
	return &PermissionError{Err: err, Remediation: remediation(err)}
}

func remediation(err error) string {
	switch {
	case errors.Is(err, ErrMicrophoneDenied):
		return "Unmute or select a working input with audio.input, then run `vox devices`."
	case errors.Is(err, ErrMicrophoneNotDetermined):
		return "Start PipeWire/PulseAudio for this session, then try again."
	case errors.Is(err, ErrSpeechDenied):
		return "The recognizer rejected the API key; update VOX_RECOGNIZER_API_KEY and run `vox reload`."
	case errors.Is(err, ErrSpeechNotDetermined):
		return "Set VOX_RECOGNIZER_API_KEY (or DEEPGRAM_API_KEY) and run `vox reload`."
	default:
		return ""
	}
}
