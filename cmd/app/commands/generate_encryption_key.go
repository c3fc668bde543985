package commands

import (
	"fmt"
	"io"

	cryptoService "github.com/coursekit/identity/internal/crypto/service"
)

// RunGenerateEncryptionKey generates a new random PII encryption key and
// writes it to the given writer in the url-safe base64 form expected by the
// ENCRYPTION_KEY variable. The key is printed once and never logged.
func RunGenerateEncryptionKey(w io.Writer) error {
	key, err := cryptoService.GenerateKey()
	if err != nil {
		return fmt.Errorf("failed to generate encryption key: %w", err)
	}

	fmt.Fprintf(w, "ENCRYPTION_KEY=%s\n", key)
	return nil
}
