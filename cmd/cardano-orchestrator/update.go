package main

import (
	"os"
	"time"

	"github.com/altuslabsxyz/cardano-orchestrator/internal/orcherrors"
	"github.com/altuslabsxyz/cardano-orchestrator/internal/output"
	"github.com/altuslabsxyz/cardano-orchestrator/internal/release"
	"github.com/altuslabsxyz/cardano-orchestrator/internal/version"
	"github.com/spf13/cobra"
)

var (
	updateCheckOnly bool
	updateForce     bool
)

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Check for and apply a signed self-update",
		Long: `update fetches the manifest at update.manifest_url (falling back to the
configured mirrors), compares its version against the running binary, and
-- unless --check is given -- downloads, verifies and installs the newer
release. --force skips the confirmation prompt; it never skips hash or
signature verification.`,
		RunE: runUpdate,
	}
	cmd.Flags().BoolVar(&updateCheckOnly, "check", false, "Only report whether an update is available; never apply it")
	cmd.Flags().BoolVar(&updateForce, "force", false, "Apply without prompting for confirmation")
	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ac := appContextFrom(ctx)
	cfg := ac.cfg

	client := release.NewClient(cfg.Update.ManifestURL, cfg.Update.Mirrors, userAgent())

	ac.diag.Info("checking for updates", "manifest_url", cfg.Update.ManifestURL)
	avail, err := client.Check(ctx, version.Version)
	if err != nil {
		return err
	}
	if avail == nil {
		ac.logger.Success("cardano-orchestrator %s is up to date", version.Version)
		return nil
	}

	manifest := avail.Manifest
	ac.logger.Info("update available: %s -> %s", version.Version, manifest.Version)
	if manifest.ReleaseNotes != "" {
		ac.logger.Print("  %s", manifest.ReleaseNotes)
	}
	if avail.BelowFloor {
		ac.logger.Warn("this update is mandatory: the running version is below the supported minimum %s", manifest.MinVersion)
	}

	if updateCheckOnly {
		return nil
	}

	if !updateForce {
		proceed, perr := output.ConfirmPromptDefault("Download and install this update now?", avail.BelowFloor)
		if perr != nil {
			return orcherrors.Wrap(orcherrors.KindIO, "update", "failed to read confirmation", perr)
		}
		if !proceed {
			if avail.BelowFloor {
				return orcherrors.New(orcherrors.KindUpdate, "update", "mandatory update required")
			}
			ac.logger.Info("update skipped")
			return nil
		}
	}

	downloadStart := time.Now()
	progress := release.ProgressFunc(func(downloaded, total int64) {
		speed := float64(downloaded) / time.Since(downloadStart).Seconds()
		ac.logger.Progress(downloaded, total, speed)
	})

	exePath, err := os.Executable()
	if err != nil {
		return orcherrors.Wrap(orcherrors.KindIO, "update", "failed to resolve the running executable's path", err)
	}

	opts := release.ApplyOptions{
		PublicKeyHex:   cfg.Update.PublicKeyHex,
		CurrentVersion: version.Version,
		CurrentExePath: exePath,
		BinaryName:     "cardano-orchestrator",
		OnProgress:     progress,
	}
	if err := manifest.Apply(ctx, opts); err != nil {
		return err
	}
	ac.logger.ProgressComplete()

	ac.logger.Success("updated to %s; restart cardano-orchestrator to use the new version", manifest.Version)
	return nil
}
