package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/internal/handlers/testutil"
	"github.com/promptdeck/promptdeck/internal/models"
	"github.com/promptdeck/promptdeck/internal/services"
)

func TestFollowFlow(t *testing.T) {
	env := testutil.NewEnv(t)

	alice := env.RegisterAndLogin("alice@example.com", "alice", "Passw0rd!234")
	bob := env.RegisterAndLogin("bob@example.com", "bobby", "Passw0rd!234")

	follow := env.Request(http.MethodPost, "/api/follow",
		map[string]string{"following_id": bob.User.ID}, alice.Tokens.AccessToken)
	require.Equal(t, http.StatusCreated, follow.Code, follow.Body.String())

	dup := env.Request(http.MethodPost, "/api/follow",
		map[string]string{"following_id": bob.User.ID}, alice.Tokens.AccessToken)
	require.Equal(t, http.StatusBadRequest, dup.Code)

	self := env.Request(http.MethodPost, "/api/follow",
		map[string]string{"following_id": alice.User.ID}, alice.Tokens.AccessToken)
	require.Equal(t, http.StatusBadRequest, self.Code)

	following := env.Request(http.MethodGet, "/api/follow?type=following", nil, alice.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, following.Code)
	var users []models.User
	testutil.DecodeInto(t, testutil.DecodeResponse(t, following).Data, &users)
	require.Len(t, users, 1)
	require.Equal(t, bob.User.ID, users[0].ID)

	followers := env.Request(http.MethodGet, "/api/follow?type=followers&user_id="+bob.User.ID, nil, alice.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, followers.Code)
	testutil.DecodeInto(t, testutil.DecodeResponse(t, followers).Data, &users)
	require.Len(t, users, 1)
	require.Equal(t, alice.User.ID, users[0].ID)

	status := env.Request(http.MethodGet, "/api/follow?type=status&user_id="+bob.User.ID, nil, alice.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, status.Code)
	var statusBody services.FollowStatus
	testutil.DecodeInto(t, testutil.DecodeResponse(t, status).Data, &statusBody)
	require.True(t, statusBody.Following)
	require.False(t, statusBody.FollowedBy)
	require.EqualValues(t, 1, statusBody.Followers)

	unfollow := env.Request(http.MethodDelete, "/api/follow?following_id="+bob.User.ID, nil, alice.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, unfollow.Code)

	missing := env.Request(http.MethodDelete, "/api/follow?following_id="+bob.User.ID, nil, alice.Tokens.AccessToken)
	require.Equal(t, http.StatusNotFound, missing.Code)

	badType := env.Request(http.MethodGet, "/api/follow?type=enemies", nil, alice.Tokens.AccessToken)
	require.Equal(t, http.StatusBadRequest, badType.Code)
}
