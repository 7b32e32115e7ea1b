package interfaces

import (
	"context"
	"errors"

	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
)

// ErrNotFound is returned by every repository when a lookup matches nothing
var ErrNotFound = errors.New("record not found")

type ManifestRepository interface {
	// Create manifest; id, image and creation time are filled in when empty
	CreateManifest(ctx context.Context, manifest sdamodels.Manifest) (*sdamodels.Manifest, error)

	// Read manifests
	GetManifest(ctx context.Context, id string) (*sdamodels.Manifest, error)
	ListManifests(ctx context.Context) ([]sdamodels.Manifest, error)

	// Delete manifest
	DeleteManifest(ctx context.Context, id string) error
}
