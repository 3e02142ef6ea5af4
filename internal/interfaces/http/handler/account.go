package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sparkgen-api/internal/application/ledger"
	"sparkgen-api/internal/interfaces/http/dto"
	"sparkgen-api/internal/interfaces/http/middleware"
	apperrors "sparkgen-api/pkg/errors"
)

// AccountHandler 账户查询处理器
type AccountHandler struct {
	ledger *ledger.Ledger
}

// NewAccountHandler 创建账户处理器
func NewAccountHandler(l *ledger.Ledger) *AccountHandler {
	return &AccountHandler{ledger: l}
}

// Me 返回当前调用方的账户视图。
// 未建号时返回默认余额视图，不触发建号写入。
// @Summary 账户信息
// @Tags Account
// @Produce json
// @Router /v1/account/me [get]
func (h *AccountHandler) Me(c *gin.Context) {
	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		dto.RespondError(c, apperrors.ErrTokenMissing)
		return
	}

	account, err := h.ledger.GetAccount(c.Request.Context(), ident)
	if err != nil {
		dto.RespondError(c, apperrors.Wrap(err, apperrors.CodeDatabaseError, "account lookup failed"))
		return
	}

	c.JSON(http.StatusOK, dto.AccountResponse{
		ID:          account.ID,
		Email:       account.Email,
		Name:        account.Name,
		Plan:        string(account.Plan),
		Credits:     account.Credits,
		CreditsUsed: account.CreditsUsed,
		Brand: dto.BrandResponse{
			Name:     account.Brand.Name,
			Industry: account.Brand.Industry,
			Tone:     account.Brand.Tone,
			Audience: account.Brand.Audience,
		},
	})
}
