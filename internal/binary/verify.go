package binary

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// Verification methods reported in VerificationError.Method.
const (
	MethodSHA256 = "sha256"
	MethodGPG    = "gpg"
)

// Verifier checks a downloaded archive before anything is extracted from it.
// Either check is optional; a zero Verifier accepts everything.
type Verifier struct {
	sha256  string
	keyring openpgp.EntityList
}

// NewVerifier creates a verifier. expectedSHA256 is a hex digest of the
// archive or empty; keyring holds the trusted signing keys or is nil.
func NewVerifier(expectedSHA256 string, keyring openpgp.EntityList) *Verifier {
	return &Verifier{
		sha256:  strings.ToLower(strings.TrimSpace(expectedSHA256)),
		keyring: keyring,
	}
}

// NeedsSignature reports whether Verify expects a detached signature.
func (v *Verifier) NeedsSignature() bool {
	return v != nil && len(v.keyring) > 0
}

// Verify checks archive against the configured digest and, when a keyring is
// configured, against signature. Failures are *VerificationError.
func (v *Verifier) Verify(archive, signature []byte) error {
	if v == nil {
		return nil
	}

	if v.sha256 != "" {
		if err := v.verifySHA256(archive); err != nil {
			return &VerificationError{Method: MethodSHA256, Err: err}
		}
	}

	if v.NeedsSignature() {
		if err := v.verifyGPG(archive, signature); err != nil {
			return &VerificationError{Method: MethodGPG, Err: err}
		}
	}

	return nil
}

func (v *Verifier) verifySHA256(archive []byte) error {
	sum := sha256.Sum256(archive)
	actual := hex.EncodeToString(sum[:])

	if !strings.EqualFold(actual, v.sha256) {
		return fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, actual, v.sha256)
	}
	return nil
}

func (v *Verifier) verifyGPG(archive, signature []byte) error {
	if len(signature) == 0 {
		return fmt.Errorf("signature is empty")
	}

	// Verify signature (try armored first)
	_, err := openpgp.CheckArmoredDetachedSignature(v.keyring, bytes.NewReader(archive), bytes.NewReader(signature), nil)
	if err != nil {
		// Try non-armored signature
		_, err = openpgp.CheckDetachedSignature(v.keyring, bytes.NewReader(archive), bytes.NewReader(signature), nil)
	}
	if err != nil {
		return fmt.Errorf("verify signature: %w", err)
	}
	return nil
}
