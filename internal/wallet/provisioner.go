// Package wallet stages the credential artifacts required to open an
// authenticated database session. Artifacts are fetched fresh on every
// run; nothing is cached across invocations.
package wallet

import (
	"context"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/aquatel/aquatel/internal/errors"
	"github.com/aquatel/aquatel/internal/storage"
)

// Credential artifact file names, fixed by the wallet layout.
const (
	PEMFile = "ewallet.pem"
	TNSFile = "tnsnames.ora"
)

// artifacts are fetched in this order on every provisioning pass.
var artifacts = []string{PEMFile, TNSFile}

// Provisioner fetches credential artifacts from object storage into a
// local staging directory ahead of each database connection.
type Provisioner struct {
	store     storage.ObjectStorage
	container string
	walletDir string
}

// NewProvisioner creates a provisioner that stages artifacts from the
// given container into walletDir.
func NewProvisioner(store storage.ObjectStorage, container, walletDir string) *Provisioner {
	return &Provisioner{
		store:     store,
		container: container,
		walletDir: walletDir,
	}
}

// Provision fetches both credential artifacts into the wallet directory,
// creating it if absent and overwriting any previously staged files.
// Fetches are independent: a failure on the second artifact leaves the
// first staged, and the error names the artifact that failed.
//
// Provision does not retry; provisioning is idempotent and the next
// scheduled run starts it from scratch.
func (p *Provisioner) Provision(ctx context.Context) error {
	if err := os.MkdirAll(p.walletDir, 0755); err != nil {
		return errors.Wrap(errors.ErrCategoryWallet, errors.CodeStageFailed,
			"creating wallet directory", err)
	}

	for _, name := range artifacts {
		remote := path.Join(p.container, name)
		local := filepath.Join(p.walletDir, name)

		if err := p.store.Download(ctx, remote, local); err != nil {
			return errors.NewFetchError(name, err)
		}
		log.Printf("wallet: staged %s to %s", name, local)
	}

	return nil
}

// WalletDir returns the staging directory artifacts are written to.
func (p *Provisioner) WalletDir() string {
	return p.walletDir
}

// PEMPath returns the staged certificate bundle path.
func (p *Provisioner) PEMPath() string {
	return filepath.Join(p.walletDir, PEMFile)
}

// TNSPath returns the staged net-service mapping path.
func (p *Provisioner) TNSPath() string {
	return filepath.Join(p.walletDir, TNSFile)
}
