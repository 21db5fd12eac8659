package uispec

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/fxamacker/cbor/v2"
)

var specEnc cbor.EncMode

func init() {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	specEnc = mode
}

// Fingerprint returns a stable digest of the spec. Canonical CBOR encoding
// sorts map keys, so two deep-equal specs always digest identically; the
// orchestrator uses this to suppress no-change notifications.
func (s Spec) Fingerprint() (string, error) {
	raw, err := specEnc.Marshal(s)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
