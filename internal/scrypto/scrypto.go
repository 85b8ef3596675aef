package scrypto

import (
	"crypto/sha256"
	"fmt"
	"os"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/term"

	"github.com/faanross/simulacra_pdf/internal/spec"
)

// DeriveKey generates the sealing key from a passphrase using PBKDF2
func DeriveKey(passphrase, salt []byte) []byte {
	return pbkdf2.Key(passphrase, salt, spec.PBKDF2_ITERS, spec.KEY_SIZE, sha256.New)
}

// Fingerprint is a short printable tag of a derived key.
func Fingerprint(key []byte) string {
	return fmt.Sprintf("%X", key[:4])
}

// ttyPath is the controlling terminal used when stdin carries the message.
var ttyPath = "/dev/tty"

// promptInput returns stdin when it is a terminal and opens the controlling
// terminal otherwise.
func promptInput(stdin *os.File) (*os.File, func(), error) {
	if term.IsTerminal(int(stdin.Fd())) {
		return stdin, func() {}, nil
	}
	tty, err := os.Open(ttyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("no terminal for prompt: %w", err)
	}
	return tty, func() { tty.Close() }, nil
}

// GetSecret prompts for a secret with hidden input
func GetSecret(prompt string, minLen int) ([]byte, error) {
	in, done, err := promptInput(os.Stdin)
	if err != nil {
		return nil, err
	}
	defer done()

	fmt.Print(prompt)
	secret, err := term.ReadPassword(int(in.Fd()))
	fmt.Println() // New line after secret

	if err != nil {
		return nil, fmt.Errorf("secret read failed: %w", err)
	}

	if len(secret) < minLen {
		return nil, fmt.Errorf("secret must be at least %d characters", minLen)
	}

	return secret, nil
}
