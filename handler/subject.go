package handler

import "github.com/oullin/profilesync/pkg/store"

// subjectOf returns the id of the loaded profile, the owner of every write.
func subjectOf(s *store.Store) (int, error) {
	current := s.Snapshot()
	if current.IsEmpty() {
		return 0, ErrProfileNotLoaded
	}

	return current.ID, nil
}
