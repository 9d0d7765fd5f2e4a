package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Invalidator drops memoised results for a group.
type Invalidator interface {
	Invalidate(groupID string)
}

// GroupInput is the editable part of a group.
type GroupInput struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Members     []MemberInput `json:"members"`
}

// GroupService manages groups and their members.
type GroupService struct {
	store       storage.Store
	invalidator Invalidator
}

// NewGroupService creates a new GroupService. invalidator is told about
// every change that affects a group's balances; it may be nil.
func NewGroupService(store storage.Store, invalidator Invalidator) *GroupService {
	return &GroupService{store: store, invalidator: invalidator}
}

func (s *GroupService) invalidate(groupID string) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(groupID)
	}
}

// CreateGroup creates a group. The authenticated caller becomes its first
// member when not listed.
func (s *GroupService) CreateGroup(ctx context.Context, in GroupInput) (*models.Group, error) {
	slog.Info("CreateGroup request received", "name", in.Name, "members", len(in.Members))

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Members:     toMembers(in.Members),
	}

	if userID := middleware.GetUserID(ctx); userID != "" {
		group.CreatedBy = userID
		if !group.HasMember(userID) {
			creator, err := s.creator(ctx, userID)
			if err != nil {
				return nil, err
			}
			group.Members = append([]models.Member{creator}, group.Members...)
		}
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return group, nil
}

func (s *GroupService) creator(ctx context.Context, userID string) (models.Member, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return models.Member{}, fmt.Errorf("failed to load creator: %w", err)
	}
	if user == nil {
		return models.Member{UserID: userID, Name: middleware.GetEmail(ctx)}, nil
	}
	return models.Member{UserID: user.ID, Name: user.DisplayName, Email: user.Email}, nil
}

// GetGroup returns a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := loadGroup(ctx, s.store, groupID)
	if err != nil {
		slog.Warn("GetGroup failed", "group_id", groupID, "error", err)
		return nil, err
	}
	return group, nil
}

// ListGroups returns the groups visible to the caller.
func (s *GroupService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	visible := groups[:0]
	for _, g := range groups {
		if authorize(ctx, g) == nil {
			visible = append(visible, g)
		}
	}

	slog.Debug("ListGroups successful", "count", len(visible))
	return visible, nil
}

// UpdateGroup replaces the name, description and, when given, the members.
func (s *GroupService) UpdateGroup(ctx context.Context, groupID string, in GroupInput) (*models.Group, error) {
	group, err := loadGroup(ctx, s.store, groupID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		group.Name = name
	}
	group.Description = strings.TrimSpace(in.Description)
	if len(in.Members) > 0 {
		group.Members = toMembers(in.Members)
	}

	if err := s.store.UpdateGroup(ctx, group); err != nil {
		slog.Error("UpdateGroup failed", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("failed to update group: %w", err)
	}
	s.invalidate(groupID)

	slog.Info("Group updated", "group_id", groupID)
	return s.store.GetGroup(ctx, groupID)
}

// DeleteGroup removes a group with all of its records.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID string) error {
	if _, err := loadGroup(ctx, s.store, groupID); err != nil {
		return err
	}
	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", groupID, "error", err)
		return fmt.Errorf("failed to delete group: %w", err)
	}
	s.invalidate(groupID)

	slog.Info("Group deleted", "group_id", groupID)
	return nil
}

// AddMembers appends members to a group, skipping those already in it.
func (s *GroupService) AddMembers(ctx context.Context, groupID string, inputs []MemberInput) (*models.Group, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one member is required", ErrInvalidInput)
	}
	if _, err := loadGroup(ctx, s.store, groupID); err != nil {
		return nil, err
	}

	if err := s.store.AddGroupMembers(ctx, groupID, toMembers(inputs)); err != nil {
		slog.Error("AddMembers failed", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("failed to add members: %w", err)
	}
	s.invalidate(groupID)

	return s.store.GetGroup(ctx, groupID)
}
