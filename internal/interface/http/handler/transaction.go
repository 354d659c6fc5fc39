package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookstore-basket/internal/application/history"
	"github.com/xiebiao/bookstore-basket/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-basket/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookstore-basket/pkg/errors"
	"github.com/xiebiao/bookstore-basket/pkg/response"
)

// TransactionHandler 交易历史HTTP处理器
type TransactionHandler struct {
	listGroupsUseCase *history.ListGroupsUseCase
	getGroupUseCase   *history.GetGroupUseCase
}

// NewTransactionHandler 创建交易历史处理器
func NewTransactionHandler(listGroupsUseCase *history.ListGroupsUseCase, getGroupUseCase *history.GetGroupUseCase) *TransactionHandler {
	return &TransactionHandler{
		listGroupsUseCase: listGroupsUseCase,
		getGroupUseCase:   getGroupUseCase,
	}
}

// ListGroups 当前用户的全部交易组,按结算先后排列
// GET /api/v1/transactions
func (h *TransactionHandler) ListGroups(c *gin.Context) {
	groups, err := h.listGroupsUseCase.Execute(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewGroupResponses(groups))
}

// GetGroup 单个交易组
// GET /api/v1/transactions/:group_id
func (h *TransactionHandler) GetGroup(c *gin.Context) {
	var uri dto.GroupIDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	group, err := h.getGroupUseCase.Execute(c.Request.Context(), middleware.MustGetUserID(c), uri.GroupID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewGroupResponse(group))
}
