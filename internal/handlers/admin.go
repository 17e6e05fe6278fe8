package handlers

import (
	"net/http"
	"net/url"
	"votecount/internal/db"
	"votecount/internal/middleware"
	"votecount/internal/models"
	"votecount/internal/services"
	"votecount/internal/utils"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	ledger *services.LedgerService
}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{ledger: services.NewLedgerService(services.NewTallyService())}
}

// NewAdminHandlerWithLedger is used by tests to inject a clock-controlled ledger.
func NewAdminHandlerWithLedger(ledger *services.LedgerService) *AdminHandler {
	return &AdminHandler{ledger: ledger}
}

// checkAdmin middleware helper
func (h *AdminHandler) checkAdmin(c *gin.Context) *models.User {
	u, exists := c.Get(middleware.CheckUserKey)
	if !exists {
		return nil
	}
	user := u.(*models.User)
	if user.Role != "admin" {
		return nil
	}
	return user
}

// ListVotes 最近的投票明细列表
func (h *AdminHandler) ListVotes(c *gin.Context) {
	if h.checkAdmin(c) == nil {
		c.Status(http.StatusForbidden)
		return
	}

	var votes []models.Vote
	db.DB.Preload("User").Preload("VoteCount").
		Order("created_at DESC").Limit(200).Find(&votes)

	Render(c, http.StatusOK, "admin/votes.html", gin.H{
		"Title":   "Votes",
		"Votes":   votes,
		"Message": c.Query("message"),
	})
}

// ListVoteCounts 计票汇总列表
func (h *AdminHandler) ListVoteCounts(c *gin.Context) {
	if h.checkAdmin(c) == nil {
		c.Status(http.StatusForbidden)
		return
	}

	var counts []models.VoteCount
	db.DB.Order("modified DESC").Limit(200).Find(&counts)

	Render(c, http.StatusOK, "admin/votecounts.html", gin.H{
		"Title":      "Vote Counts",
		"VoteCounts": counts,
	})
}

// BulkDeleteVotes removes the selected votes one at a time so each delete's
// counter side effect fires (or is deliberately skipped with preserve=1).
// The delete permission is checked once before touching the batch.
func (h *AdminHandler) BulkDeleteVotes(c *gin.Context) {
	if h.checkAdmin(c) == nil {
		c.Status(http.StatusForbidden)
		return
	}

	ids := make([]uint, 0)
	for _, raw := range c.PostFormArray("ids") {
		if id := utils.StringToUint(raw); id != 0 {
			ids = append(ids, id)
		}
	}
	preserve := c.PostForm("preserve") == "1"

	_, message, err := h.ledger.BulkDeleteVotes(ids, preserve)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Bulk delete failed")
		return
	}

	c.Redirect(http.StatusFound, "/admin/votes?message="+url.QueryEscape(message))
}
