package access_test

import (
	"context"
	"testing"

	"workspace/internal/access"
	"workspace/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func member(name string, role model.Role, userID *uuid.UUID) model.Member {
	return model.Member{
		ID:      uuid.New(),
		BoardID: uuid.New(),
		UserID:  userID,
		Name:    name,
		Role:    role,
	}
}

func TestMatchMember_StableReferenceWins(t *testing.T) {
	userID := uuid.New()
	user := &model.User{ID: userID, Name: "Alice", Email: "alice@example.com"}

	members := []model.Member{
		member("Alice", model.RoleViewer, nil),
		member("someone else", model.RoleAdmin, &userID),
	}

	m := access.MatchMember(members, user)
	assert.NotNil(t, m)
	assert.Equal(t, model.RoleAdmin, m.Role)
}

func TestMatchMember_StrictNameAndEmail(t *testing.T) {
	user := &model.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}

	byName := access.MatchMember([]model.Member{
		member("Bob", model.RoleEditor, nil),
		member("Alice", model.RoleViewer, nil),
	}, user)
	assert.NotNil(t, byName)
	assert.Equal(t, "Alice", byName.Name)

	byEmail := access.MatchMember([]model.Member{
		member("alice@example.com", model.RoleEditor, nil),
	}, user)
	assert.NotNil(t, byEmail)
	assert.Equal(t, model.RoleEditor, byEmail.Role)
}

func TestMatchMember_LooseFallback(t *testing.T) {
	user := &model.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}

	m := access.MatchMember([]model.Member{
		member("  ALICE  ", model.RoleEditor, nil),
	}, user)
	assert.NotNil(t, m)
	assert.Equal(t, model.RoleEditor, m.Role)
}

func TestMatchMember_AmbiguousLooseMatchResolvesToNobody(t *testing.T) {
	user := &model.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}

	m := access.MatchMember([]model.Member{
		member("alice ", model.RoleEditor, nil),
		member(" ALICE", model.RoleViewer, nil),
	}, user)
	assert.Nil(t, m)
}

func TestMatchMember_NoMatch(t *testing.T) {
	user := &model.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}

	m := access.MatchMember([]model.Member{
		member("Bob", model.RoleOwner, nil),
	}, user)
	assert.Nil(t, m)
}

type stubDirectory struct {
	users map[uuid.UUID]*model.User
}

func (s *stubDirectory) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return s.users[id], nil
}

type stubMembers struct {
	members []model.Member
}

func (s *stubMembers) GetByBoardID(_ context.Context, _ uuid.UUID) ([]model.Member, error) {
	return s.members, nil
}

func TestGuard_ResolveRole(t *testing.T) {
	boardID := uuid.New()
	ownerID := uuid.New()
	strangerID := uuid.New()

	dir := &stubDirectory{users: map[uuid.UUID]*model.User{
		ownerID:    {ID: ownerID, Name: "Olga", Email: "olga@example.com"},
		strangerID: {ID: strangerID, Name: "Sam", Email: "sam@example.com"},
	}}
	members := &stubMembers{members: []model.Member{
		member("Olga", model.RoleOwner, &ownerID),
	}}

	guard := access.NewGuard(dir, members)

	role, err := guard.ResolveRole(context.Background(), ownerID, boardID)
	assert.NoError(t, err)
	assert.Equal(t, model.RoleOwner, role)

	_, err = guard.ResolveRole(context.Background(), strangerID, boardID)
	assert.ErrorIs(t, err, access.ErrNoMembership)

	_, err = guard.ResolveRole(context.Background(), uuid.New(), boardID)
	assert.ErrorIs(t, err, access.ErrNoMembership)
}

func TestGuard_CanManage(t *testing.T) {
	boardID := uuid.New()
	adminID := uuid.New()
	viewerID := uuid.New()

	dir := &stubDirectory{users: map[uuid.UUID]*model.User{
		adminID:  {ID: adminID, Name: "Ann", Email: "ann@example.com"},
		viewerID: {ID: viewerID, Name: "Vic", Email: "vic@example.com"},
	}}
	members := &stubMembers{members: []model.Member{
		member("Ann", model.RoleAdmin, &adminID),
		member("Vic", model.RoleViewer, &viewerID),
	}}

	guard := access.NewGuard(dir, members)

	decision, err := guard.CanManage(context.Background(), adminID, boardID)
	assert.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, model.RoleAdmin, decision.Role)

	decision, err = guard.CanManage(context.Background(), viewerID, boardID)
	assert.NoError(t, err)
	assert.False(t, decision.Allowed)

	decision, err = guard.CanManage(context.Background(), uuid.New(), boardID)
	assert.NoError(t, err)
	assert.False(t, decision.Allowed)
}
