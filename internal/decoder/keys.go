package decoder

import (
	"errors"

	"github.com/faanross/simulacra_pdf/internal/config"
)

var ErrNoKeyMatched = errors.New("no candidate key recovered a message")

// KeyAttempt records the outcome of one candidate key.
type KeyAttempt struct {
	Key string
	Err error
}

// TryKeys attempts extraction with each key in order and stops at the first
// one whose marker and checksum both verify.
func TryKeys(text string, cfg config.Config, keys []string) (*ExtractedMessage, string, []KeyAttempt, error) {
	if err := cfg.Validate(); err != nil {
		return nil, "", nil, err
	}

	attempts := make([]KeyAttempt, 0, len(keys))
	for _, key := range keys {
		kd, err := NewKernDecoder(cfg, []byte(key))
		if err != nil {
			attempts = append(attempts, KeyAttempt{Key: key, Err: err})
			continue
		}

		msg, err := kd.Extract(text)
		attempts = append(attempts, KeyAttempt{Key: key, Err: err})
		if err == nil {
			return msg, key, attempts, nil
		}
	}
	return nil, "", attempts, ErrNoKeyMatched
}
