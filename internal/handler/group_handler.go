package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-portal/internal/models"
	"github.com/noah-isme/sma-portal/pkg/response"
)

type groupLister interface {
	ListGroups(ctx context.Context) ([]models.Group, error)
}

// GroupHandler lists student groups.
type GroupHandler struct {
	groups groupLister
}

func NewGroupHandler(groups groupLister) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// List godoc
// @Summary Student groups
// @Tags Groups
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /groups [get]
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groups.ListGroups(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups)
}
