package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"connecto/internal/models"
	"connecto/internal/service"
	"connecto/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndUpdatePost(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db)
	bob := testutil.CreateUser(t, env.db)

	var post models.PostView
	status := env.doJSON(t, http.MethodPost, "/api/posts", alice.ID, map[string]string{"content": "hello"}, &post)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "hello", post.Content)
	assert.Equal(t, alice.ID, post.UserID)
	assert.Equal(t, alice.Name, post.UserName)

	status = env.doJSON(t, http.MethodPut, fmt.Sprintf("/api/posts/%d", post.ID), alice.ID, map[string]string{"content": "edited"}, &post)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "edited", post.Content)

	var errBody errorBody
	status = env.doJSON(t, http.MethodPut, fmt.Sprintf("/api/posts/%d", post.ID), bob.ID, map[string]string{"content": "mine now"}, &errBody)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "you can only edit your posts", errBody.Error)

	status = env.doJSON(t, http.MethodPost, "/api/posts", alice.ID, map[string]string{"content": strings.Repeat("x", 2001)}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, errBody.Code)

	status = env.doJSON(t, http.MethodPost, "/api/posts", alice.ID, map[string]string{"content": ""}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "content cannot be empty", errBody.Error)
}

func TestGetPost_Visibility(t *testing.T) {
	env := newTestEnv(t)
	carol := testutil.CreateUser(t, env.db, testutil.Private())
	follower := testutil.CreateUser(t, env.db)
	stranger := testutil.CreateUser(t, env.db)
	testutil.Follow(t, env.db, follower.ID, carol.ID)

	post := &models.Post{UserID: carol.ID, Content: "members only"}
	require.NoError(t, env.db.Create(post).Error)

	url := fmt.Sprintf("/api/posts/%d", post.ID)

	status, _ := env.do(t, http.MethodGet, url, carol.ID, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodGet, url, follower.ID, nil)
	assert.Equal(t, http.StatusOK, status)

	var errBody errorBody
	status = env.doJSON(t, http.MethodGet, url, stranger.ID, nil, &errBody)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "private user you are not following", errBody.Error)

	status = env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/users/%d/posts", carol.ID), stranger.ID, nil, &errBody)
	assert.Equal(t, http.StatusForbidden, status)

	var page struct {
		Items []models.PostView `json:"items"`
	}
	status = env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/users/%d/posts", carol.ID), follower.ID, nil, &page)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "members only", page.Items[0].Content)

	status, _ = env.do(t, http.MethodGet, "/api/posts/99999", carol.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestReactions_NotifyOnChangeOnly(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db)
	fan := testutil.CreateUser(t, env.db)
	post := &models.Post{UserID: author.ID, Content: "react to me"}
	require.NoError(t, env.db.Create(post).Error)

	like := fmt.Sprintf("/api/posts/%d/like", post.ID)
	dislike := fmt.Sprintf("/api/posts/%d/dislike", post.ID)

	for _, url := range []string{like, like, dislike} {
		status, _ := env.do(t, http.MethodPost, url, fan.ID, nil)
		assert.Equal(t, http.StatusNoContent, status)
	}
	status, _ := env.do(t, http.MethodPost, like, author.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)

	assert.EqualValues(t, 1, testutil.Count(t, env.db, &models.Notification{}, "receiver_id = ? AND type = ?", author.ID, models.NotificationLikedPost))
	assert.EqualValues(t, 1, testutil.Count(t, env.db, &models.Notification{}, "receiver_id = ? AND type = ?", author.ID, models.NotificationDislikedPost))
}

func TestSaveAndUnsavePost(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db)
	reader := testutil.CreateUser(t, env.db)
	post := &models.Post{UserID: author.ID, Content: "bookmark me"}
	require.NoError(t, env.db.Create(post).Error)

	var msg messageBody
	for i := 0; i < 2; i++ {
		status := env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/save", post.ID), reader.ID, nil, &msg)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Post saved successfully", msg.Message)
	}
	assert.EqualValues(t, 1, testutil.Count(t, env.db, &models.SavedPost{}, "user_id = ?", reader.ID))

	status, _ := env.do(t, http.MethodDelete, fmt.Sprintf("/api/posts/%d/save", post.ID), reader.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Zero(t, testutil.Count(t, env.db, &models.SavedPost{}, "user_id = ?", reader.ID))
}

func TestRepostLifecycle(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db)
	carol := testutil.CreateUser(t, env.db, testutil.Private())
	sharer := testutil.CreateUser(t, env.db)
	other := testutil.CreateUser(t, env.db)
	testutil.Follow(t, env.db, sharer.ID, carol.ID)

	public := &models.Post{UserID: author.ID, Content: "share me"}
	private := &models.Post{UserID: carol.ID, Content: "keep me"}
	require.NoError(t, env.db.Create(public).Error)
	require.NoError(t, env.db.Create(private).Error)

	var repost service.RepostView
	status := env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/reposts/%d", public.ID), sharer.ID, nil, &repost)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, public.ID, repost.PostID)
	assert.Equal(t, sharer.Name, repost.ReposterName)
	assert.EqualValues(t, 1, testutil.Count(t, env.db, &models.Notification{}, "receiver_id = ? AND type = ?", author.ID, models.NotificationSharedPost))

	var page userPage
	status = env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/posts/%d/reposts", public.ID), other.ID, nil, &page)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []uint{sharer.ID}, page.ids())

	var errBody errorBody
	status = env.doJSON(t, http.MethodPost, fmt.Sprintf("/api/reposts/%d", private.ID), sharer.ID, nil, &errBody)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "cannot repost a post that belongs to a private user", errBody.Error)

	status = env.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/reposts/%d", repost.ID), other.ID, nil, &errBody)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "you can only delete your reposts", errBody.Error)

	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/reposts/%d", repost.ID), sharer.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = env.do(t, http.MethodPost, "/api/reposts/abc", sharer.ID, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
