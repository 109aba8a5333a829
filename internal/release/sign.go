package release

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
)

// HashFile computes the raw SHA-256 digest of the file at path.
func HashFile(path string) ([32]byte, error) {
	var out [32]byte
	f, err := os.Open(path)
	if err != nil {
		return out, orcherrors.Wrap(orcherrors.KindIO, "release.HashFile", "failed to open file for hashing", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return out, orcherrors.Wrap(orcherrors.KindIO, "release.HashFile", "failed to read file for hashing", err)
	}
	copy(out[:], h.Sum(nil))
	return out, nil
}

// VerifySignature checks sig against the raw SHA-256 hash bytes of the
// update archive — not a hex-encoded string of that hash — using the
// Ed25519 public key embedded in configuration. This is the detail that
// makes the manifest format compatible with how release signing tooling
// produces its signatures.
func VerifySignature(publicKeyHex string, hash [32]byte, signatureHex string) error {
	pubKeyBytes, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(pubKeyBytes) != ed25519.PublicKeySize {
		return orcherrors.New(orcherrors.KindSignatureInvalid, "release.VerifySignature", "malformed public key")
	}
	sigBytes, err := hex.DecodeString(signatureHex)
	if err != nil || len(sigBytes) != ed25519.SignatureSize {
		return orcherrors.New(orcherrors.KindSignatureInvalid, "release.VerifySignature", "malformed signature")
	}

	if !ed25519.Verify(ed25519.PublicKey(pubKeyBytes), hash[:], sigBytes) {
		return orcherrors.New(orcherrors.KindSignatureInvalid, "release.VerifySignature", "signature does not match update archive")
	}
	return nil
}

// GenerateKeypair produces a fresh Ed25519 keypair for release signing
// tooling, returned as hex strings matching the manifest's encoding.
func GenerateKeypair() (publicKeyHex, privateKeyHex string, err error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return "", "", orcherrors.Wrap(orcherrors.KindIO, "release.GenerateKeypair", "failed to generate keypair", err)
	}
	return hex.EncodeToString(pub), hex.EncodeToString(priv), nil
}

// SignHash signs a raw SHA-256 hash with a hex-encoded Ed25519 private
// key, returning the hex-encoded signature. Exposed for the signing CLI
// and for round-trip tests against VerifySignature.
func SignHash(privateKeyHex string, hash [32]byte) (string, error) {
	privBytes, err := hex.DecodeString(privateKeyHex)
	if err != nil || len(privBytes) != ed25519.PrivateKeySize {
		return "", orcherrors.New(orcherrors.KindSignatureInvalid, "release.SignHash", "malformed private key")
	}
	sig := ed25519.Sign(ed25519.PrivateKey(privBytes), hash[:])
	return hex.EncodeToString(sig), nil
}
