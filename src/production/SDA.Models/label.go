package sdamodels

// LabelKind distinguishes the entities the console names locally
type LabelKind string

const (
	LabelApp   LabelKind = "app"
	LabelGroup LabelKind = "group"
)

// Label maps a manager-side identifier to an operator-facing name
type Label struct {
	Kind LabelKind `json:"kind" bson:"kind" db:"kind"`
	ID   string    `json:"id" bson:"id" db:"id"`
	Name string    `json:"name" bson:"name" db:"name"`
}
