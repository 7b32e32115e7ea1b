package implementation

import (
	"time"

	"github.com/google/uuid"
	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
	interfaces "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Repository/Interfaces"
)

// prepareManifest fills the fields a new manifest may leave empty
func prepareManifest(m sdamodels.Manifest) sdamodels.Manifest {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Img == "" {
		m.Img = sdamodels.DefaultManifestImage
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	return m
}

// Manifest Repository
// ├── CreateManifest() - Insert, fills id/img/created_at
// ├── GetManifest() - Single manifest lookup
// ├── ListManifests() - All manifests, oldest first
// └── DeleteManifest() - Remove manifest

// Label Repository
// ├── SetLabel() - Idempotent upsert on (kind, id)
// ├── GetLabel() - Single label lookup
// ├── ListLabels() - id -> name for one kind
// └── DeleteLabel() - Remove label

var (
	_ interfaces.Store = (*MemoryStore)(nil)
	_ interfaces.Store = (*MongoStore)(nil)
	_ interfaces.Store = (*PostgresStore)(nil)
)
