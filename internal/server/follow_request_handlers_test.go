package server

import (
	"fmt"
	"net/http"
	"testing"

	"connecto/internal/models"
	"connecto/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondToFollowRequest_Accept(t *testing.T) {
	env := newTestEnv(t)
	carol := testutil.CreateUser(t, env.db, testutil.Private())
	alice := testutil.CreateUser(t, env.db)
	testutil.Request(t, env.db, alice.ID, carol.ID)

	var msg messageBody
	status := env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/follow-requests/%d/respond", alice.ID), carol.ID,
		map[string]string{"action": "accept"}, &msg)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Follow request accepted", msg.Message)

	assert.EqualValues(t, 1, testutil.Count(t, env.db, &models.Follow{}, "follower_id = ? AND followed_id = ?", alice.ID, carol.ID))
	assert.Zero(t, testutil.Count(t, env.db, &models.FollowRequest{}, "follower_id = ?", alice.ID))
	assert.EqualValues(t, 1, testutil.Count(t, env.db, &models.Notification{},
		"receiver_id = ? AND sender_id = ? AND type = ?", alice.ID, carol.ID, models.NotificationFollowAccepted))

	var errBody errorBody
	status = env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/follow-requests/%d/respond", alice.ID), carol.ID,
		map[string]string{"action": "ACCEPT"}, &errBody)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "follow request not found", errBody.Error)
}

func TestRespondToFollowRequest_Reject(t *testing.T) {
	env := newTestEnv(t)
	carol := testutil.CreateUser(t, env.db, testutil.Private())
	alice := testutil.CreateUser(t, env.db)
	testutil.Request(t, env.db, alice.ID, carol.ID)

	var msg messageBody
	status := env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/follow-requests/%d/respond", alice.ID), carol.ID,
		map[string]string{"action": "REJECT"}, &msg)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Follow request rejected", msg.Message)

	assert.Zero(t, testutil.Count(t, env.db, &models.Follow{}, "follower_id = ?", alice.ID))
	assert.Zero(t, testutil.Count(t, env.db, &models.FollowRequest{}, "follower_id = ?", alice.ID))
	assert.Zero(t, testutil.Count(t, env.db, &models.Notification{}, "receiver_id = ?", alice.ID))
}

func TestRespondToFollowRequest_Errors(t *testing.T) {
	env := newTestEnv(t)
	carol := testutil.CreateUser(t, env.db, testutil.Private())
	pub := testutil.CreateUser(t, env.db)
	alice := testutil.CreateUser(t, env.db)

	tests := []struct {
		name   string
		actor  uint
		target uint
		body   any
		status int
		code   string
	}{
		{"bad action", carol.ID, alice.ID, map[string]string{"action": "MAYBE"}, http.StatusBadRequest, models.CodeValidation},
		{"missing action", carol.ID, alice.ID, map[string]string{}, http.StatusBadRequest, models.CodeValidation},
		{"public actor", pub.ID, alice.ID, map[string]string{"action": "ACCEPT"}, http.StatusConflict, models.CodeConflict},
		{"self", carol.ID, carol.ID, map[string]string{"action": "ACCEPT"}, http.StatusBadRequest, models.CodeInvalidArgument},
		{"unknown requester", carol.ID, 99999, map[string]string{"action": "ACCEPT"}, http.StatusNotFound, models.CodeNotFound},
		{"no request", carol.ID, alice.ID, map[string]string{"action": "REJECT"}, http.StatusNotFound, models.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errBody errorBody
			status := env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/follow-requests/%d/respond", tt.target), tt.actor, tt.body, &errBody)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, errBody.Code)
		})
	}
}

func TestFollowRequestLists(t *testing.T) {
	env := newTestEnv(t)
	carol := testutil.CreateUser(t, env.db, testutil.Private())
	dave := testutil.CreateUser(t, env.db, testutil.Private())
	alice := testutil.CreateUser(t, env.db)
	bob := testutil.CreateUser(t, env.db)
	testutil.Request(t, env.db, alice.ID, carol.ID)
	testutil.Request(t, env.db, bob.ID, carol.ID)
	testutil.Request(t, env.db, alice.ID, dave.ID)

	var page userPage
	status := env.doJSON(t, http.MethodGet, "/api/follow-requests/received", carol.ID, nil, &page)
	require.Equal(t, http.StatusOK, status)
	assert.ElementsMatch(t, []uint{alice.ID, bob.ID}, page.ids())
	assert.EqualValues(t, 2, page.TotalElements)

	status = env.doJSON(t, http.MethodGet, "/api/follow-requests/sent?size=1", alice.ID, nil, &page)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.TotalPages)

	var errBody errorBody
	status = env.doJSON(t, http.MethodGet, "/api/follow-requests/received", alice.ID, nil, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "public users do not have follow requests", errBody.Error)
}

func TestCancelFollowRequest_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	carol := testutil.CreateUser(t, env.db, testutil.Private())
	alice := testutil.CreateUser(t, env.db)
	testutil.Request(t, env.db, alice.ID, carol.ID)

	for i := 0; i < 2; i++ {
		status, _ := env.do(t, http.MethodDelete, fmt.Sprintf("/api/follow-requests/sent/%d", carol.ID), alice.ID, nil)
		assert.Equal(t, http.StatusNoContent, status)
	}
	assert.Zero(t, testutil.Count(t, env.db, &models.FollowRequest{}, "follower_id = ?", alice.ID))
}
