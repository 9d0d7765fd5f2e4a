package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// MemberInput describes a person joining a group. UserID may be a
// registered user's ID or any label unique within the group; it is
// generated when empty.
type MemberInput struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
}

func (in MemberInput) toModel() models.Member {
	m := models.Member{
		UserID: strings.TrimSpace(in.UserID),
		Name:   strings.TrimSpace(in.Name),
		Email:  strings.TrimSpace(in.Email),
	}
	if m.UserID == "" {
		m.UserID = uuid.New().String()
	}
	if m.Name == "" {
		m.Name = m.UserID
	}
	return m
}

func toMembers(inputs []MemberInput) []models.Member {
	members := make([]models.Member, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		m := in.toModel()
		if seen[m.UserID] {
			continue
		}
		seen[m.UserID] = true
		members = append(members, m)
	}
	return members
}

// authorize checks that the caller may access group. Requests without an
// authenticated user are allowed, which is the case when auth is disabled.
func authorize(ctx context.Context, group *models.Group) error {
	userID := middleware.GetUserID(ctx)
	if userID == "" || group.CreatedBy == userID || group.HasMember(userID) {
		return nil
	}
	return ErrForbidden
}

// loadGroup fetches a group and checks the caller may access it.
func loadGroup(ctx context.Context, store storage.GroupStore, groupID string) (*models.Group, error) {
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// findNewParticipants returns the ids that are not members of group yet,
// in order and without duplicates.
func findNewParticipants(group *models.Group, ids []string) []models.Member {
	var newOnes []models.Member
	seen := make(map[string]bool)
	for _, id := range ids {
		if id == "" || seen[id] || group.HasMember(id) {
			continue
		}
		seen[id] = true
		newOnes = append(newOnes, models.Member{UserID: id, Name: id})
	}
	return newOnes
}

// autoAddParticipants adds the payer and split members of a record that
// are not in the group yet, so their balances show up.
func autoAddParticipants(ctx context.Context, store storage.GroupStore, group *models.Group, ids []string) error {
	newMembers := findNewParticipants(group, ids)
	if len(newMembers) == 0 {
		return nil
	}

	if err := store.AddGroupMembers(ctx, group.ID, newMembers); err != nil {
		return err
	}
	group.Members = append(group.Members, newMembers...)
	slog.Info("Auto-added participants to group", "group_id", group.ID, "new_members", len(newMembers))
	return nil
}
