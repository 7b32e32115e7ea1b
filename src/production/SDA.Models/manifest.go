package sdamodels

import "time"

// Manifest is a stored YAML deployment descriptor. Its yaml content is forwarded verbatim.
type Manifest struct {
	ID          string    `json:"id" bson:"_id" db:"manifest_id"`
	Img         string    `json:"img" bson:"img" db:"img"`
	Name        string    `json:"name" bson:"name" db:"name"`
	Description string    `json:"description" bson:"description" db:"description"`
	Yaml        string    `json:"yaml" bson:"yaml" db:"yaml"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}

// DefaultManifestImage is used when a manifest is created without an icon
const DefaultManifestImage = "sample.png"
