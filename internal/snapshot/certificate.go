package snapshot

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
)

// maxChainDepth bounds the certificate walk so a malicious or buggy
// aggregator serving a previous_hash cycle cannot hang the sync.
const maxChainDepth = 1000

// VerifyCertificateChain walks the certificate chain from certificateHash
// back to a genesis certificate, structurally validating each link. This
// is not cryptographic signature verification — it checks that the shapes
// and presence of the fields a valid Mithril certificate must have are
// satisfied, which is the level of trust this orchestrator places in the
// aggregator's TLS-protected API. Thin signer sets (fewer than 3) are
// returned as warnings rather than failures, one per affected certificate.
func (c *Client) VerifyCertificateChain(ctx context.Context, certificateHash string) ([]string, error) {
	var warnings []string
	currentHash := certificateHash
	for depth := 0; depth < maxChainDepth; depth++ {
		cert, err := c.Certificate(ctx, currentHash)
		if err != nil {
			return warnings, err
		}
		if err := validateCertificateStructure(cert); err != nil {
			return warnings, err
		}
		if len(cert.Metadata.Signers) < 3 {
			warnings = append(warnings, "certificate "+cert.Hash+" has fewer than 3 signers")
		}
		if cert.IsGenesis() {
			return warnings, nil
		}
		currentHash = cert.PreviousHash
	}
	return warnings, orcherrors.New(orcherrors.KindCertificateInvalid, "snapshot.VerifyCertificateChain", "certificate chain exceeded maximum depth, possible cycle")
}

// validateCertificateStructure performs the structural checks the
// reference implementation applies to every certificate link: non-empty
// signer set, a present signature (multi-signature or genesis), hex-shaped
// signed_message of plausible length, and — for non-genesis certificates —
// a hex-shaped aggregate verification key.
func validateCertificateStructure(cert *Certificate) error {
	fail := func(reason string) error {
		return orcherrors.New(orcherrors.KindCertificateInvalid, "snapshot.validateCertificateStructure", reason)
	}

	if len(cert.Metadata.Signers) == 0 {
		return fail("certificate has no signers")
	}

	var totalStake uint64
	for _, s := range cert.Metadata.Signers {
		totalStake += s.Stake
	}
	if totalStake == 0 {
		return fail("certificate signers have zero total stake")
	}

	hasMultiSig := hasJSONContent(cert.MultiSignature)
	hasGenesisSig := cert.GenesisSignature != ""
	if !hasMultiSig && !hasGenesisSig {
		return fail("certificate has neither multi-signature nor genesis signature")
	}

	if len(cert.SignedMessage) < 64 || !isHex(cert.SignedMessage) {
		return fail("certificate signed_message is not a plausible hex digest")
	}
	if len(cert.ProtocolMessage) < 10 {
		return fail("certificate protocol_message is implausibly small")
	}

	if cert.Epoch == 0 || hasGenesisSig {
		if len(cert.GenesisSignature) < 64 || !isHex(cert.GenesisSignature) {
			return fail("genesis certificate signature is not a plausible hex string")
		}
	}

	if cert.Epoch > 0 && hasMultiSig {
		if cert.AggregateVerificationKey == "" || !isHex(cert.AggregateVerificationKey) {
			return fail("aggregate verification key is not a plausible hex string")
		}
		if !multiSignatureLooksPresent(cert.MultiSignature) {
			return fail("multi-signature payload is empty or malformed")
		}
	}

	return nil
}

func hasJSONContent(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	trimmed := strings.TrimSpace(string(raw))
	return trimmed != "" && trimmed != "null" && trimmed != `""` && trimmed != "{}" && trimmed != "[]"
}

func multiSignatureLooksPresent(raw json.RawMessage) bool {
	if !hasJSONContent(raw) {
		return false
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return len(asString) >= 64 && isHex(asString)
	}
	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asObject); err == nil {
		_, hasSigma := asObject["sigma"]
		_, hasSignature := asObject["signature"]
		return hasSigma || hasSignature
	}
	return true
}

func isHex(s string) bool {
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')) {
			return false
		}
	}
	return true
}
