package model

// BoundaryKind selects the lifecycle policy of a boundary.
type BoundaryKind string

const (
	// BoundaryInsertion spawns particles inside a box under a volumetric
	// flow-rate budget.
	BoundaryInsertion BoundaryKind = "insertion"
	// BoundaryDeletion removes particles whose centre enters a box.
	BoundaryDeletion BoundaryKind = "deletion"
	// BoundaryDeletionOutside removes particles whose centre leaves a box
	// (typically the domain).
	BoundaryDeletionOutside BoundaryKind = "deletion_outside"
)

// BoundaryDefinition describes one insertion or deletion boundary.
type BoundaryDefinition struct {
	ID   string       `json:"id"`
	Kind BoundaryKind `json:"kind"`

	Min Vector `json:"min"`
	Max Vector `json:"max"`

	// Insertion-only fields.
	Template ParticleDefinition `json:"template,omitempty"`
	FlowRate float64            `json:"flow_rate,omitempty"`
	Seed     int64              `json:"seed,omitempty"`
}
