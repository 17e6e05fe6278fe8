package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"votecount/internal/db"
	"votecount/internal/middleware"
	"votecount/internal/models"
	"votecount/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAdminRouter(user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.CheckUserKey, user)
		}
		c.Next()
	})
	r.POST("/admin/votes/delete", NewAdminHandler().BulkDeleteVotes)
	return r
}

func postBulkDelete(r *gin.Engine, ids []uint, preserve bool) *httptest.ResponseRecorder {
	form := url.Values{}
	for _, id := range ids {
		form.Add("ids", strconv.FormatUint(uint64(id), 10))
	}
	if preserve {
		form.Set("preserve", "1")
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/votes/delete", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBulkDeleteRequiresAdmin(t *testing.T) {
	setupTestDB(t)

	// anonymous and plain users are both rejected before any processing
	assert.Equal(t, http.StatusForbidden, postBulkDelete(setupAdminRouter(nil), []uint{1}, false).Code)
	user := createUser(t, "alice", "user")
	assert.Equal(t, http.StatusForbidden, postBulkDelete(setupAdminRouter(user), []uint{1}, false).Code)
}

func TestBulkDeletePreservesTalliesAndReportsCount(t *testing.T) {
	setupTestDB(t)
	admin := createUser(t, "root", "admin")

	tally := services.NewTallyService()
	ledger := services.NewLedgerService(tally)
	vc, err := tally.GetOrCreate("story", "bulk-delete")
	require.NoError(t, err)

	ids := make([]uint, 0, 5)
	for _, name := range []string{"u1", "u2", "u3", "u4", "u5"} {
		u := createUser(t, name, "user")
		_, _, err := ledger.RegisterVote(u.ID, vc, models.Upvote, "10.0.0.1")
		require.NoError(t, err)
		vote, err := ledger.GetVote(u.ID, vc.ID)
		require.NoError(t, err)
		ids = append(ids, vote.ID)
	}

	w := postBulkDelete(setupAdminRouter(admin), ids, true)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), url.QueryEscape("5 votes were successfully deleted."))

	var fresh models.VoteCount
	require.NoError(t, db.DB.First(&fresh, vc.ID).Error)
	assert.Equal(t, 5, fresh.Upvotes)

	var remaining int64
	require.NoError(t, db.DB.Model(&models.Vote{}).Where("vote_count_id = ?", vc.ID).Count(&remaining).Error)
	assert.EqualValues(t, 0, remaining)
}
