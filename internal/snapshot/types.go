// Package snapshot implements Mithril-style certified snapshot discovery,
// certificate-chain verification and bootstrap of the node's immutable
// chain database.
package snapshot

import "encoding/json"

// Beacon anchors a snapshot or certificate to a point in chain history.
type Beacon struct {
	Epoch               int `json:"epoch"`
	ImmutableFileNumber int `json:"immutable_file_number"`
}

// Snapshot describes one published, certified chain snapshot.
type Snapshot struct {
	Digest               string   `json:"digest"`
	Network              string   `json:"network"`
	Beacon               Beacon   `json:"beacon"`
	CertificateHash      string   `json:"certificate_hash"`
	Size                 int64    `json:"size"`
	AncillarySize        *int64   `json:"ancillary_size,omitempty"`
	CreatedAt            string   `json:"created_at"`
	Locations            []string `json:"locations"`
	AncillaryLocations   []string `json:"ancillary_locations,omitempty"`
	CompressionAlgorithm string   `json:"compression_algorithm,omitempty"`
	CardanoNodeVersion   string   `json:"cardano_node_version,omitempty"`
}

// Epoch is a convenience accessor mirroring the beacon's epoch.
func (s *Snapshot) Epoch() int { return s.Beacon.Epoch }

// Signer is one member of the Mithril signer set attesting a certificate.
type Signer struct {
	PartyID string `json:"party_id"`
	Stake   uint64 `json:"stake"`
}

// CertificateMetadata carries the signer set and timing information for a
// certificate.
type CertificateMetadata struct {
	Network     string          `json:"network"`
	Version     string          `json:"version"`
	Parameters  json.RawMessage `json:"parameters"`
	InitiatedAt string          `json:"initiated_at"`
	SealedAt    string          `json:"sealed_at"`
	Signers     []Signer        `json:"signers"`
}

// Certificate is one link in the Mithril certificate chain.
type Certificate struct {
	Hash                    string          `json:"hash"`
	PreviousHash            string          `json:"previous_hash"`
	Epoch                   int             `json:"epoch"`
	SignedEntityType        json.RawMessage `json:"signed_entity_type"`
	Metadata                CertificateMetadata `json:"metadata"`
	ProtocolMessage         json.RawMessage `json:"protocol_message"`
	SignedMessage           string          `json:"signed_message"`
	AggregateVerificationKey string         `json:"aggregate_verification_key"`
	MultiSignature          json.RawMessage `json:"multi_signature"`
	GenesisSignature        string          `json:"genesis_signature,omitempty"`
}

// IsGenesis reports whether cert terminates the chain: either it carries a
// genesis signature, or it has no previous hash to walk to.
func (c *Certificate) IsGenesis() bool {
	return c.GenesisSignature != "" || c.PreviousHash == ""
}
