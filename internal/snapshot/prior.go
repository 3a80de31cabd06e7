package snapshot

// Prior is the state of an entity before a recorded mutation. It is either
// Existing, carrying the snapshot to restore, or Missing when the mutation
// created the entity.
type Prior interface {
	prior()
}

// Existing means the entity existed and held Snapshot.
type Existing struct {
	Snapshot Snapshot
}

// Missing means the entity did not exist before the mutation.
type Missing struct{}

func (Existing) prior() {}
func (Missing) prior()  {}

// PriorOf builds a Prior from a nullable stored map.
func PriorOf(m map[string]any) Prior {
	if m == nil {
		return Missing{}
	}
	return Existing{Snapshot: Snapshot(m)}
}
