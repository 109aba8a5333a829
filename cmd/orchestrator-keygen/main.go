// Command orchestrator-keygen generates and exercises the Ed25519 keypair
// used to sign cardano-orchestrator self-update manifests. It is a release
// engineering tool, not something end users run.
package main

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/release"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "orchestrator-keygen",
		Short:         "Generate and use the release signing keypair",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateCmd(), newSignCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate a fresh Ed25519 keypair for signing release manifests",
		RunE: func(cmd *cobra.Command, args []string) error {
			publicHex, privateHex, err := release.GenerateKeypair()
			if err != nil {
				return err
			}

			fmt.Fprintln(os.Stderr, "=== cardano-orchestrator release signing keypair ===")
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, "PRIVATE KEY (keep secret!):")
			fmt.Fprintln(os.Stderr, privateHex)
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, "PUBLIC KEY (embed in config.toml as update.public_key):")
			fmt.Fprintln(os.Stderr, publicHex)
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, "Store the private key as a CI secret and never commit it.")

			fmt.Printf("ORCHESTRATOR_PRIVATE_KEY=%s\n", privateHex)
			fmt.Printf("ORCHESTRATOR_PUBLIC_KEY=%s\n", publicHex)
			return nil
		},
	}
}

// signManifest mirrors the fields release.Manifest expects; kept separate
// from that type since the tool only ever writes a manifest, never parses
// one back.
type signManifest struct {
	Version      string            `json:"version"`
	SHA256       string            `json:"sha256"`
	Signature    string            `json:"signature"`
	MinVersion   string            `json:"min_version,omitempty"`
	ReleaseNotes string            `json:"release_notes,omitempty"`
	ReleasedAt   string            `json:"released_at"`
	Downloads    map[string]string `json:"downloads"`
	Size         int64             `json:"size"`
}

func newSignCmd() *cobra.Command {
	var (
		keyFile      string
		version      string
		minVersion   string
		releaseNotes string
		downloadURL  string
		platformKey  string
	)

	cmd := &cobra.Command{
		Use:   "sign <file-to-sign>",
		Short: "Hash and sign a release artifact, emitting a manifest JSON document",
		Long: `sign computes the SHA-256 digest of the given file, signs that digest
with the Ed25519 private key read from --key-file, and prints the
resulting manifest to stdout in the shape release.Manifest expects at
update.manifest_url.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			privateKeyHex, err := readKeyFile(keyFile)
			if err != nil {
				return err
			}

			hash, size, err := hashFileWithSize(path)
			if err != nil {
				return err
			}
			sha256Hex := fmt.Sprintf("%x", hash)

			signatureHex, err := release.SignHash(privateKeyHex, hash)
			if err != nil {
				return err
			}

			downloads := map[string]string{}
			if downloadURL != "" {
				key := platformKey
				if key == "" {
					key = "linux_x86_64"
				}
				downloads[key] = downloadURL
			}

			manifest := signManifest{
				Version:      version,
				SHA256:       sha256Hex,
				Signature:    signatureHex,
				MinVersion:   minVersion,
				ReleaseNotes: releaseNotes,
				ReleasedAt:   time.Now().UTC().Format(time.RFC3339),
				Downloads:    downloads,
				Size:         size,
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(manifest); err != nil {
				return err
			}

			fmt.Fprintln(os.Stderr)
			fmt.Fprintf(os.Stderr, "SHA256:    %s\n", sha256Hex)
			fmt.Fprintf(os.Stderr, "Signature: %s...\n", signatureHex[:64])
			fmt.Fprintf(os.Stderr, "Size:      %d bytes\n", size)
			return nil
		},
	}

	cmd.Flags().StringVar(&keyFile, "key-file", "", "Path to a file holding the hex-encoded private key (required)")
	cmd.Flags().StringVar(&version, "version", "0.1.0", "Version string to embed in the manifest")
	cmd.Flags().StringVar(&minVersion, "min-version", "", "Minimum supported version; omit unless this is a mandatory update")
	cmd.Flags().StringVar(&releaseNotes, "notes", "", "Release notes to embed in the manifest")
	cmd.Flags().StringVar(&downloadURL, "download-url", "", "Download URL for the signed artifact")
	cmd.Flags().StringVar(&platformKey, "platform", "", "Platform key for --download-url (default linux_x86_64)")
	cmd.MarkFlagRequired("key-file")

	return cmd
}

func readKeyFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading key file %s: %w", filepath.Clean(path), err)
	}
	return trimNewline(string(data)), nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r' || s[len(s)-1] == ' ') {
		s = s[:len(s)-1]
	}
	return s
}

func hashFileWithSize(path string) ([32]byte, int64, error) {
	var out [32]byte
	f, err := os.Open(path)
	if err != nil {
		return out, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return out, 0, fmt.Errorf("stat %s: %w", path, err)
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return out, 0, fmt.Errorf("hashing %s: %w", path, err)
	}
	copy(out[:], h.Sum(nil))
	return out, info.Size(), nil
}
