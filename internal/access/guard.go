// Package access is the single authorization policy point. Every
// privileged mutation (board update/delete, member role change, member
// removal) asks the Guard for a decision before touching state.
package access

import (
	"context"
	"errors"
	"strings"

	"workspace/internal/model"

	"github.com/google/uuid"
)

// ErrNoMembership is returned when the requester has no membership
// record on the board.
var ErrNoMembership = errors.New("no membership on board")

type userDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type memberStore interface {
	GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.Member, error)
}

// Decision is a typed allow/deny with the role it was derived from.
type Decision struct {
	Allowed bool
	Role    model.Role
}

type Guard struct {
	users   userDirectory
	members memberStore
}

func NewGuard(users userDirectory, members memberStore) *Guard {
	return &Guard{users: users, members: members}
}

// ResolveRole finds the requester's role on a board. The requester is
// looked up in the user directory, then matched against the board's
// members. Returns ErrNoMembership when nothing matches.
func (g *Guard) ResolveRole(ctx context.Context, requesterID, boardID uuid.UUID) (model.Role, error) {
	user, err := g.users.GetByID(ctx, requesterID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrNoMembership
	}

	members, err := g.members.GetByBoardID(ctx, boardID)
	if err != nil {
		return "", err
	}

	if m := MatchMember(members, user); m != nil {
		return m.Role, nil
	}
	return "", ErrNoMembership
}

// CanManage resolves the requester's role and reports whether it may
// mutate board settings and membership. An absent membership is a plain
// deny, not an error.
func (g *Guard) CanManage(ctx context.Context, requesterID, boardID uuid.UUID) (Decision, error) {
	role, err := g.ResolveRole(ctx, requesterID, boardID)
	if errors.Is(err, ErrNoMembership) {
		return Decision{}, nil
	}
	if err != nil {
		return Decision{}, err
	}
	return Decision{Allowed: role.CanManage(), Role: role}, nil
}

// MatchMember picks the membership record for a directory user.
// Match order: stable user reference first, then a strict comparison of
// the stored display identity against the user's name or email, then a
// trimmed case-insensitive pass across all members. The loose pass only
// matches when exactly one candidate remains; two members sharing a
// display name must not resolve to either of them.
func MatchMember(members []model.Member, user *model.User) *model.Member {
	for i := range members {
		if members[i].UserID != nil && *members[i].UserID == user.ID {
			return &members[i]
		}
	}

	for i := range members {
		if members[i].Name == user.Name || members[i].Name == user.Email {
			return &members[i]
		}
	}

	var loose *model.Member
	name := strings.ToLower(strings.TrimSpace(user.Name))
	email := strings.ToLower(strings.TrimSpace(user.Email))
	for i := range members {
		stored := strings.ToLower(strings.TrimSpace(members[i].Name))
		if stored != name && stored != email {
			continue
		}
		if loose != nil {
			return nil // ambiguous
		}
		loose = &members[i]
	}
	return loose
}
