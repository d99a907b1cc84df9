package wallet

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	aqerrors "github.com/aquatel/aquatel/internal/errors"
	"github.com/aquatel/aquatel/internal/storage"
)

func newTestStore(t *testing.T) *storage.LocalStorage {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}
	return store
}

func seedArtifacts(t *testing.T, store *storage.LocalStorage, container string) {
	t.Helper()
	if err := store.Put(container+"/"+PEMFile, []byte("-----BEGIN CERTIFICATE-----\npem bytes\n-----END CERTIFICATE-----\n")); err != nil {
		t.Fatalf("failed to seed %s: %v", PEMFile, err)
	}
	if err := store.Put(container+"/"+TNSFile, []byte("waterdb = (DESCRIPTION = (ADDRESS = (HOST = db.internal)))\n")); err != nil {
		t.Fatalf("failed to seed %s: %v", TNSFile, err)
	}
}

func TestProvisioner_StagesBothArtifacts(t *testing.T) {
	store := newTestStore(t)
	seedArtifacts(t, store, "config")

	walletDir := filepath.Join(t.TempDir(), "wallet")
	prov := NewProvisioner(store, "config", walletDir)

	if err := prov.Provision(context.Background()); err != nil {
		t.Fatalf("Provision failed: %v", err)
	}

	for _, p := range []string{prov.PEMPath(), prov.TNSPath()} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("artifact %s was not staged: %v", p, err)
		}
	}
}

func TestProvisioner_CreatesWalletDir(t *testing.T) {
	store := newTestStore(t)
	seedArtifacts(t, store, "config")

	// Nested directory with no prior filesystem state
	walletDir := filepath.Join(t.TempDir(), "a", "b", "wallet")
	prov := NewProvisioner(store, "config", walletDir)

	if err := prov.Provision(context.Background()); err != nil {
		t.Fatalf("Provision failed: %v", err)
	}
	if info, err := os.Stat(walletDir); err != nil || !info.IsDir() {
		t.Errorf("wallet directory was not created")
	}
}

func TestProvisioner_Idempotent(t *testing.T) {
	store := newTestStore(t)
	seedArtifacts(t, store, "config")

	walletDir := filepath.Join(t.TempDir(), "wallet")
	prov := NewProvisioner(store, "config", walletDir)
	ctx := context.Background()

	if err := prov.Provision(ctx); err != nil {
		t.Fatalf("first Provision failed: %v", err)
	}
	first, err := os.ReadFile(prov.PEMPath())
	if err != nil {
		t.Fatalf("failed to read staged pem: %v", err)
	}

	if err := prov.Provision(ctx); err != nil {
		t.Fatalf("second Provision failed: %v", err)
	}
	second, err := os.ReadFile(prov.PEMPath())
	if err != nil {
		t.Fatalf("failed to read staged pem: %v", err)
	}

	if string(first) != string(second) {
		t.Error("repeated provisioning should stage identical contents")
	}
}

func TestProvisioner_OverwritesStaleFiles(t *testing.T) {
	store := newTestStore(t)
	seedArtifacts(t, store, "config")

	walletDir := t.TempDir()
	stale := filepath.Join(walletDir, PEMFile)
	if err := os.WriteFile(stale, []byte("stale wallet from a previous deploy"), 0644); err != nil {
		t.Fatalf("failed to write stale file: %v", err)
	}

	prov := NewProvisioner(store, "config", walletDir)
	if err := prov.Provision(context.Background()); err != nil {
		t.Fatalf("Provision failed: %v", err)
	}

	got, _ := os.ReadFile(stale)
	if string(got) == "stale wallet from a previous deploy" {
		t.Error("Provision should overwrite previously staged files")
	}
}

func TestProvisioner_SecondArtifactMissing(t *testing.T) {
	store := newTestStore(t)
	// Only the PEM is present; tnsnames.ora is missing remotely.
	if err := store.Put("config/"+PEMFile, []byte("pem")); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	walletDir := filepath.Join(t.TempDir(), "wallet")
	prov := NewProvisioner(store, "config", walletDir)

	err := prov.Provision(context.Background())
	if err == nil {
		t.Fatal("expected Provision to fail")
	}
	if got := aqerrors.FailedArtifact(err); got != TNSFile {
		t.Errorf("FailedArtifact = %q, want %q", got, TNSFile)
	}
	if !aqerrors.IsRetryable(err) {
		t.Error("fetch failures should be retryable on the next tick")
	}

	// Partial staging: the first artifact remains from the attempt.
	if _, statErr := os.Stat(prov.PEMPath()); statErr != nil {
		t.Errorf("first artifact should remain staged: %v", statErr)
	}
	if _, statErr := os.Stat(prov.TNSPath()); statErr == nil {
		t.Error("second artifact should not be staged")
	}
}

func TestProvisioner_FirstArtifactMissing(t *testing.T) {
	store := newTestStore(t)
	if err := store.Put("config/"+TNSFile, []byte("waterdb = x")); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	prov := NewProvisioner(store, "config", filepath.Join(t.TempDir(), "wallet"))
	err := prov.Provision(context.Background())
	if err == nil {
		t.Fatal("expected Provision to fail")
	}
	if got := aqerrors.FailedArtifact(err); got != PEMFile {
		t.Errorf("FailedArtifact = %q, want %q", got, PEMFile)
	}
}
