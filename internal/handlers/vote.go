package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
	"votecount/internal/middleware"
	"votecount/internal/models"
	"votecount/internal/services"
	"votecount/internal/utils"

	"github.com/gin-gonic/gin"
)

// refCacheTTL (content_type, object_pk) -> votecount id 的缓存时间。
// 映射关系一旦建立就不会变，TTL 只是为了限制冷条目的存活时间
const refCacheTTL = 10 * time.Minute

type VoteHandler struct {
	tally  *services.TallyService
	ledger *services.LedgerService
}

func NewVoteHandler() *VoteHandler {
	tally := services.NewTallyService()
	return &VoteHandler{
		tally:  tally,
		ledger: services.NewLedgerService(tally),
	}
}

// NewVoteHandlerWithServices is used by tests to inject clock-controlled services.
func NewVoteHandlerWithServices(tally *services.TallyService, ledger *services.LedgerService) *VoteHandler {
	return &VoteHandler{tally: tally, ledger: ledger}
}

// Vote handles the vote registration call. Votes are counted via POST only;
// GET is simply not routed. The response mirrors the shape the page scripts
// expect: {"status": ..., "net_change": ...} on success, or
// {"success": false, "error_message": ...} with a 4xx status.
func (h *VoteHandler) Vote(c *gin.Context) {
	user, exists := c.Get(middleware.CheckUserKey)
	if !exists {
		JSONError(c, http.StatusUnauthorized, "You must be authenticated to vote.")
		return
	}
	currentUser := user.(*models.User)

	// 解析并校验投票方向
	direction, err := strconv.Atoi(c.PostForm("direction"))
	if err != nil {
		JSONError(c, http.StatusBadRequest, "Invalid vote direction")
		return
	}
	if direction != models.Upvote && direction != models.Downvote {
		JSONError(c, http.StatusBadRequest, "Invalid vote direction")
		return
	}

	// 校验计票记录是否存在
	votecountPK := utils.StringToUint(c.PostForm("votecount_pk"))
	vc, err := h.tally.Get(votecountPK)
	if err != nil {
		JSONError(c, http.StatusBadRequest, "VoteCount object_pk not working")
		return
	}

	netChange, accepted, err := h.ledger.RegisterVote(currentUser.ID, vc, direction, c.ClientIP())
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "Vote could not be registered")
		return
	}

	status := "success"
	if !accepted {
		status = "failed"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "net_change": netChange})
}

// Count returns the vote total for an arbitrary content object, lazily
// creating its VoteCount on first query. With ?within=days=1,minutes=30 it
// returns the number of votes cast in that trailing window instead of the
// vote sum.
func (h *VoteHandler) Count(c *gin.Context) {
	contentType := c.Param("ctype")
	objectPK := c.Param("pk")

	vc, err := h.lookupVoteCount(contentType, objectPK)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "VoteCount lookup failed")
		return
	}

	var votes int64
	if within := c.Query("within"); within != "" {
		period, err := utils.ParsePeriod(within)
		if err != nil {
			JSONError(c, http.StatusBadRequest, "Invalid time period")
			return
		}
		votes, err = h.tally.VotesInWindow(vc, period)
		if err != nil {
			JSONError(c, http.StatusBadRequest, "Invalid time period")
			return
		}
	} else {
		votes = int64(vc.VoteSum())
	}

	c.JSON(http.StatusOK, gin.H{"votecount_pk": vc.ID, "votes": votes})
}

// lookupVoteCount 先查本地缓存的 pair -> id 映射，未命中再走 GetOrCreate
func (h *VoteHandler) lookupVoteCount(contentType, objectPK string) (*models.VoteCount, error) {
	cache := utils.GetCache()
	key := fmt.Sprintf("votecount:%s:%s", contentType, objectPK)

	if cached := cache.Get(key); cached != nil {
		if vc, err := h.tally.Get(cached.(uint)); err == nil {
			return vc, nil
		}
		// 缓存的 id 已失效（比如重复清理删掉了），回退到完整查询
	}

	vc, err := h.tally.GetOrCreate(contentType, objectPK)
	if err != nil {
		return nil, err
	}
	cache.Set(key, vc.ID, refCacheTTL)
	return vc, nil
}
