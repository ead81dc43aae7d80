package testfixtures

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/repository"
)

type associationRepo struct{ s *Store }

// Associations returns the in-memory AssociationRepository.
func (s *Store) Associations() repository.AssociationRepository {
	return &associationRepo{s: s}
}

func (r *associationRepo) find(match func(domain.HRAssociation) bool) (*domain.HRAssociation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.t.associations {
		if match(a) {
			out := copyAssociation(a)
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *associationRepo) Create(_ context.Context, assoc *domain.HRAssociation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.t.associations {
		if a.HRID == assoc.HRID {
			return repository.ErrDuplicate
		}
	}
	assoc.ID = r.s.nextID()
	assoc.CreatedAt = r.s.clock.Now()
	assoc.InternIDs = nil
	r.s.t.associations = append(r.s.t.associations, copyAssociation(*assoc))
	return nil
}

func (r *associationRepo) GetByID(_ context.Context, id string) (*domain.HRAssociation, error) {
	return r.find(func(a domain.HRAssociation) bool { return a.ID == id })
}

func (r *associationRepo) GetByHR(_ context.Context, hrID string) (*domain.HRAssociation, error) {
	return r.find(func(a domain.HRAssociation) bool { return a.HRID == hrID })
}

func (r *associationRepo) GetByHRForUpdate(ctx context.Context, hrID string) (*domain.HRAssociation, error) {
	return r.GetByHR(ctx, hrID)
}

func (r *associationRepo) FindByIntern(_ context.Context, internID string) (*domain.HRAssociation, error) {
	return r.find(func(a domain.HRAssociation) bool { return containsString(a.InternIDs, internID) })
}

func (r *associationRepo) AddIntern(_ context.Context, associationID, internID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	idx := -1
	for i, a := range r.s.t.associations {
		if containsString(a.InternIDs, internID) {
			return repository.ErrDuplicate
		}
		if a.ID == associationID {
			idx = i
		}
	}
	if idx < 0 {
		return pgx.ErrNoRows
	}
	r.s.t.associations[idx].InternIDs = append(r.s.t.associations[idx].InternIDs, internID)
	return nil
}

func (r *associationRepo) RemoveIntern(_ context.Context, internID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.t.associations {
		r.s.t.associations[i].InternIDs, _ = removeString(r.s.t.associations[i].InternIDs, internID)
	}
	return nil
}

func (r *associationRepo) AssignedInterns(_ context.Context, internIDs []string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []string
	for _, a := range r.s.t.associations {
		for _, id := range a.InternIDs {
			if containsString(internIDs, id) {
				out = append(out, id)
			}
		}
	}
	return out, nil
}

func (r *associationRepo) DeleteByHR(_ context.Context, hrID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.t.associations[:0:0]
	var removed []string
	for _, a := range r.s.t.associations {
		if a.HRID == hrID {
			removed = append(removed, a.ID)
			continue
		}
		kept = append(kept, a)
	}
	r.s.t.associations = kept
	for i := range r.s.t.batches {
		for _, id := range removed {
			r.s.t.batches[i].AssociationIDs, _ = removeString(r.s.t.batches[i].AssociationIDs, id)
		}
	}
	return nil
}
