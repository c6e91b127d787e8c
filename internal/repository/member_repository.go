package repository

import (
	"context"

	"github.com/unclebandit/dojo-retention-backend/internal/model"
)

// MemberRepositoryInterface is the read side of the external member directory.
type MemberRepositoryInterface interface {
	ListAll(ctx context.Context) ([]model.Member, error)
	GetByID(ctx context.Context, id string) (*model.Member, error)
}

type MemberRepository struct {
	c collection[[]model.Member]
}

func (r *MemberRepository) ListAll(ctx context.Context) ([]model.Member, error) {
	return r.c.load(ctx)
}

// GetByID returns nil when the member is not in the directory.
func (r *MemberRepository) GetByID(ctx context.Context, id string) (*model.Member, error) {
	members, err := r.c.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range members {
		if members[i].ID == id {
			return &members[i], nil
		}
	}
	return nil, nil
}

// ReplaceAll overwrites the directory. Only the seeder imports members.
func (r *MemberRepository) ReplaceAll(ctx context.Context, members []model.Member) error {
	return r.c.save(ctx, members)
}

var _ MemberRepositoryInterface = (*MemberRepository)(nil)
