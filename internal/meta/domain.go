package meta

// Layout routes a readable entity type to its desk page.
type Layout struct {
	Name         string `json:"name"`
	Route        string `json:"route,omitempty"`
	DocumentType string `json:"document_type,omitempty"`
}

// PreviewOverride is one per-tenant toggle for an entity's link preview.
// Value holds the raw stored string and is interpreted numerically.
type PreviewOverride struct {
	EntityType string
	Value      string
}
