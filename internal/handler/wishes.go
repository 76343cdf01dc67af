package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wedding-site/internal/errs"
	"wedding-site/internal/models"
	"wedding-site/internal/wishes"
)

type wishView struct {
	models.Wish
	LikedByMe bool `json:"liked_by_me"`
}

// ListWishes fetches the board from the store and returns it newest first.
func (h *Handler) ListWishes(c *gin.Context) {
	if err := h.deps.Board.Load(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}

	visitor := h.visitor(c)
	list := h.deps.Board.Wishes()
	views := make([]wishView, len(list))
	for i, w := range list {
		views[i] = wishView{Wish: w, LikedByMe: visitor != "" && w.HasLiked(visitor)}
	}
	c.JSON(http.StatusOK, gin.H{
		"wishes":  views,
		"loading": h.deps.Board.Loading(),
		"empty":   len(views) == 0,
	})
}

// SubmitWish adds a wish to the head of the board.
func (h *Handler) SubmitWish(c *gin.Context) {
	var nw models.NewWish
	if err := c.ShouldBindJSON(&nw); err != nil {
		fail(c, errs.E(errs.Invalid, "handler.SubmitWish", "Please fill in all fields"))
		return
	}

	w, err := h.deps.Board.Submit(c.Request.Context(), nw)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"wish": w, "message": wishes.SubmittedNotice})
}

// ToggleLike likes or unlikes a wish for the requesting visitor.
func (h *Handler) ToggleLike(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, errs.E(errs.Invalid, "handler.ToggleLike", "Invalid wish id"))
		return
	}

	res, err := h.deps.Board.ToggleLike(c.Request.Context(), id, h.visitor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wish": res.Wish, "liked": res.Liked, "message": res.Notice()})
}
