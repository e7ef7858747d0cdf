package server

import (
	"fmt"
	"net/http"
	"testing"

	"connecto/internal/featureflags"
	"connecto/internal/models"
	"connecto/internal/service"
	"connecto/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollow_PublicUser(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db)
	bob := testutil.CreateUser(t, env.db)

	var out service.FollowOutcome
	status := env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/follows/%d", bob.ID), alice.ID, nil, &out)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, service.FollowFollowed, out.Status)
	assert.Equal(t, "Follow was successful", out.Message)

	assert.EqualValues(t, 1, testutil.Count(t, env.db, &models.Follow{}, "follower_id = ? AND followed_id = ?", alice.ID, bob.ID))
	assert.EqualValues(t, 1, testutil.Count(t, env.db, &models.Notification{},
		"receiver_id = ? AND sender_id = ? AND type = ?", bob.ID, alice.ID, models.NotificationNewFollower))

	var errBody errorBody
	status = env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/follows/%d", bob.ID), alice.ID, nil, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "already following this user", errBody.Error)
}

func TestFollow_PrivateUserCreatesRequest(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db)
	carol := testutil.CreateUser(t, env.db, testutil.Private())

	var out service.FollowOutcome
	status := env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/follows/%d", carol.ID), alice.ID, nil, &out)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, service.FollowRequestSent, out.Status)

	var errBody errorBody
	status = env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/follows/%d", carol.ID), alice.ID, nil, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "already sent a follow request", errBody.Error)

	assert.EqualValues(t, 1, testutil.Count(t, env.db, &models.FollowRequest{}, "follower_id = ? AND followed_id = ?", alice.ID, carol.ID))
	assert.Zero(t, testutil.Count(t, env.db, &models.Follow{}, "follower_id = ?", alice.ID))
}

func TestFollow_Errors(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db)
	blocker := testutil.CreateUser(t, env.db)
	blocked := testutil.CreateUser(t, env.db)
	testutil.Block(t, env.db, blocker.ID, alice.ID)
	testutil.Block(t, env.db, alice.ID, blocked.ID)

	tests := []struct {
		name   string
		target uint
		status int
		code   string
	}{
		{"self", alice.ID, http.StatusBadRequest, models.CodeInvalidArgument},
		{"missing", 99999, http.StatusNotFound, models.CodeNotFound},
		{"blocked by target", blocker.ID, http.StatusForbidden, models.CodeForbidden},
		{"target blocked by actor", blocked.ID, http.StatusConflict, models.CodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errBody errorBody
			status := env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/follows/%d", tt.target), alice.ID, nil, &errBody)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, errBody.Code)
		})
	}

	status, _ := env.do(t, http.MethodPost, "/api/follows/abc", alice.ID, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUnfollow_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db)
	bob := testutil.CreateUser(t, env.db)
	testutil.Follow(t, env.db, alice.ID, bob.ID)

	for i := 0; i < 2; i++ {
		status, _ := env.do(t, http.MethodDelete, fmt.Sprintf("/api/follows/%d", bob.ID), alice.ID, nil)
		assert.Equal(t, http.StatusNoContent, status)
	}
	assert.Zero(t, testutil.Count(t, env.db, &models.Follow{}, "follower_id = ?", alice.ID))

	status, _ := env.do(t, http.MethodDelete, fmt.Sprintf("/api/follows/%d", alice.ID), alice.ID, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRemoveFollower(t *testing.T) {
	env := newTestEnv(t)
	carol := testutil.CreateUser(t, env.db, testutil.Private())
	pub := testutil.CreateUser(t, env.db)
	fan := testutil.CreateUser(t, env.db)
	testutil.Follow(t, env.db, fan.ID, carol.ID)
	testutil.Follow(t, env.db, fan.ID, pub.ID)

	status, _ := env.do(t, http.MethodDelete, fmt.Sprintf("/api/follows/followers/%d", fan.ID), carol.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Zero(t, testutil.Count(t, env.db, &models.Follow{}, "follower_id = ? AND followed_id = ?", fan.ID, carol.ID))

	var errBody errorBody
	status = env.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/follows/followers/%d", fan.ID), pub.ID, nil, &errBody)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "public users cannot remove a follower", errBody.Error)
	assert.EqualValues(t, 1, testutil.Count(t, env.db, &models.Follow{}, "follower_id = ? AND followed_id = ?", fan.ID, pub.ID))
}

func TestFollowLists_Visibility(t *testing.T) {
	env := newTestEnv(t)
	viewer := testutil.CreateUser(t, env.db)
	carol := testutil.CreateUser(t, env.db, testutil.Private())
	friend := testutil.CreateUser(t, env.db)
	stranger := testutil.CreateUser(t, env.db)
	testutil.Follow(t, env.db, friend.ID, carol.ID)
	testutil.Follow(t, env.db, carol.ID, friend.ID)

	var errBody errorBody
	status := env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/follows/%d/followers", carol.ID), stranger.ID, nil, &errBody)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "private user you are not following", errBody.Error)

	var page userPage
	status = env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/follows/%d/followers", carol.ID), friend.ID, nil, &page)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []uint{friend.ID}, page.ids())
	assert.EqualValues(t, 1, page.TotalElements)
	assert.Equal(t, 10, page.Size)

	status = env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/follows/%d/following?page=0&size=5", carol.ID), carol.ID, nil, &page)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []uint{friend.ID}, page.ids())
	assert.Equal(t, 5, page.Size)

	testutil.Block(t, env.db, viewer.ID, friend.ID)
	status = env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/follows/%d/following", friend.ID), viewer.ID, nil, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "you blocked this user", errBody.Error)

	status = env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/follows/%d/following", viewer.ID), friend.ID, nil, &errBody)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "this user blocked you", errBody.Error)

	testutil.Block(t, env.db, stranger.ID, carol.ID)
	status = env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/follows/%d/followers", carol.ID), stranger.ID, nil, &errBody)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "private user you are not following", errBody.Error)
}

func TestFollowSuggestions(t *testing.T) {
	env := newTestEnv(t)
	me := testutil.CreateUser(t, env.db)
	friend := testutil.CreateUser(t, env.db)
	candidate := testutil.CreateUser(t, env.db)
	requested := testutil.CreateUser(t, env.db, testutil.Private())
	hostile := testutil.CreateUser(t, env.db)

	testutil.Follow(t, env.db, me.ID, friend.ID)
	for _, u := range []uint{candidate.ID, requested.ID, hostile.ID, me.ID} {
		testutil.Follow(t, env.db, friend.ID, u)
	}
	testutil.Request(t, env.db, me.ID, requested.ID)
	testutil.Block(t, env.db, hostile.ID, me.ID)

	var page userPage
	status := env.doJSON(t, http.MethodGet, "/api/follows/suggestions", me.ID, nil, &page)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []uint{candidate.ID}, page.ids())

	env.srv.followService = service.NewFollowService(nil, nil, nil, nil, nil,
		featureflags.NewManager("follow_suggestions=off"))
	status = env.doJSON(t, http.MethodGet, "/api/follows/suggestions", me.ID, nil, &page)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, page.Items)
}
