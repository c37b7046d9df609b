package settle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tierledger/settle/member"
)

// Members returns the current member snapshot.
func (s *Service) Members(ctx context.Context) ([]member.Member, error) {
	members, err := s.members.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadMembers, err)
	}
	return members, nil
}

// Member returns one member by id.
func (s *Service) Member(ctx context.Context, id string) (*member.Member, error) {
	return s.members.Get(ctx, id)
}

// AddMember validates m against the current tree and stores it.
func (s *Service) AddMember(ctx context.Context, m member.Member) error {
	idx, err := s.index(ctx)
	if err != nil {
		return err
	}
	if _, exists := idx.Get(m.ID); exists {
		return fmt.Errorf("%w: %s", member.ErrDuplicateID, m.ID)
	}
	if err := member.Validate(m, idx); err != nil {
		return err
	}
	if err := s.members.Create(ctx, m); err != nil {
		return err
	}
	s.log.Info("member added", zap.String("id", m.ID), zap.String("parent", m.ParentID), zap.Stringer("level", m.Level))
	return nil
}

// UpdateMember validates m against the current tree and replaces the
// stored member.
func (s *Service) UpdateMember(ctx context.Context, m member.Member) error {
	idx, err := s.index(ctx)
	if err != nil {
		return err
	}
	if _, exists := idx.Get(m.ID); !exists {
		return fmt.Errorf("%w: %s", member.ErrNotFound, m.ID)
	}
	if err := member.Validate(m, idx); err != nil {
		return err
	}
	if err := s.members.Update(ctx, m); err != nil {
		return err
	}
	s.log.Info("member updated", zap.String("id", m.ID))
	return nil
}

// RemoveMember deletes a member without children.
func (s *Service) RemoveMember(ctx context.Context, id string) error {
	if err := s.members.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("member removed", zap.String("id", id))
	return nil
}

func (s *Service) index(ctx context.Context) (*member.Index, error) {
	members, err := s.Members(ctx)
	if err != nil {
		return nil, err
	}
	return member.NewIndex(members), nil
}
