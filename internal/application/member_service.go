package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/library-management/internal/domain/entity"
	repo "github.com/oksasatya/library-management/internal/domain/repository"
)

type MemberService struct {
	Store  repo.Store
	Logger *logrus.Logger
}

func NewMemberService(store repo.Store, logger *logrus.Logger) *MemberService {
	return &MemberService{Store: store, Logger: logger}
}

type CreateMemberInput struct {
	MembershipName string
	MembershipID   string
	Email          string
	Phone          string
}

// MemberPatch carries the fields of a partial update; nil means unchanged.
type MemberPatch struct {
	MembershipName *string
	MembershipID   *string
	Email          *string
	Phone          *string
}

func (s *MemberService) Create(ctx context.Context, in CreateMemberInput) (*entity.Member, error) {
	if strings.TrimSpace(in.MembershipName) == "" {
		return nil, invalid("membership_name is required")
	}
	m := &entity.Member{
		MembershipName: in.MembershipName,
		MembershipID:   in.MembershipID,
		Email:          entity.NormalizeEmail(in.Email),
		Phone:          in.Phone,
	}
	if err := s.Store.Members().Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}
	return m, nil
}

func (s *MemberService) Get(ctx context.Context, id string) (*entity.Member, error) {
	m, err := s.Store.Members().GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, ErrMemberNotFound, "get member")
	}
	return m, nil
}

func (s *MemberService) List(ctx context.Context) ([]*entity.Member, error) {
	return s.Store.Members().List(ctx)
}

func (s *MemberService) Update(ctx context.Context, id string, p MemberPatch) (*entity.Member, error) {
	if p.MembershipName != nil && strings.TrimSpace(*p.MembershipName) == "" {
		return nil, invalid("membership_name must not be empty")
	}
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.MembershipName != nil {
		m.MembershipName = *p.MembershipName
	}
	if p.MembershipID != nil {
		m.MembershipID = *p.MembershipID
	}
	if p.Email != nil {
		m.Email = entity.NormalizeEmail(*p.Email)
	}
	if p.Phone != nil {
		m.Phone = *p.Phone
	}
	if err := s.Store.Members().Update(ctx, m); err != nil {
		return nil, lookup(err, ErrMemberNotFound, "update member")
	}
	return m, nil
}

func (s *MemberService) Delete(ctx context.Context, ids []string) (*entity.BatchResult, error) {
	res := deleteEach(ctx, s.Logger, ids, s.Store.Members().Delete)
	s.Logger.WithFields(logrus.Fields{
		"deleted":   len(res.Deleted),
		"not_found": len(res.NotFound),
		"failed":    len(res.Failed),
	}).Info("members deleted")
	return res, nil
}
