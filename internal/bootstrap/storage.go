package bootstrap

import (
	"context"

	"github.com/arch-iv/archiv-api/config"
	documentsservice "github.com/arch-iv/archiv-api/internal/documents/service"
	"github.com/arch-iv/archiv-api/internal/storage/r2"
	uploadsservice "github.com/arch-iv/archiv-api/internal/uploads/service"
)

// Stores is the object store as each consumer sees it. Both fields are nil
// interfaces when storage is not configured, so the services report it as
// disabled.
type Stores struct {
	Uploads   uploadsservice.ObjectStore
	Documents documentsservice.ObjectStore
}

func OpenStorage(ctx context.Context, cfg *config.StorageConfig) (Stores, error) {
	if !cfg.Enabled() {
		return Stores{}, nil
	}
	client, err := r2.New(ctx, cfg)
	if err != nil {
		return Stores{}, err
	}
	return Stores{Uploads: client, Documents: client}, nil
}
