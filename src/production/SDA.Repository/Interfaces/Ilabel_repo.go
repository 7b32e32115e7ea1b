package interfaces

import (
	"context"

	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
)

type LabelRepository interface {
	// Set label (idempotent upsert)
	SetLabel(ctx context.Context, label sdamodels.Label) error

	// Read labels
	GetLabel(ctx context.Context, kind sdamodels.LabelKind, id string) (*sdamodels.Label, error)
	ListLabels(ctx context.Context, kind sdamodels.LabelKind) (map[string]string, error)

	// Delete label
	DeleteLabel(ctx context.Context, kind sdamodels.LabelKind, id string) error
}
