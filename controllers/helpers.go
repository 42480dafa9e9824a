package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/aiblog/middleware"
	"github.com/cppla/aiblog/models"
	"github.com/cppla/aiblog/utils"
)

var (
	errInvalidPayload = utils.NewValidation(40000, "invalid request payload")
	errInvalidID      = utils.NewValidation(40009, "invalid id")
	errInvalidPaging  = utils.NewValidation(40010, "page and page_size must be integers")
	errUnauthorized   = utils.NewUnauthorized(40100, "unauthorized")
)

// parseID reads a positive integer path parameter.
func parseID(ctx *gin.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(ctx.Param(name)), 10, 64)
	if err != nil || n == 0 {
		return 0, errInvalidID
	}
	return uint(n), nil
}

// parsePagination reports whether paging was requested. Missing values default
// to page 1 and 10 per page; range checks happen in the service.
func parsePagination(ctx *gin.Context) (page, pageSize int, paged bool, err error) {
	pageStr, hasPage := ctx.GetQuery("page")
	sizeStr, hasSize := ctx.GetQuery("page_size")
	if !hasPage && !hasSize {
		return 0, 0, false, nil
	}
	page, pageSize = 1, 10
	if hasPage {
		if page, err = strconv.Atoi(strings.TrimSpace(pageStr)); err != nil {
			return 0, 0, true, errInvalidPaging
		}
	}
	if hasSize {
		if pageSize, err = strconv.Atoi(strings.TrimSpace(sizeStr)); err != nil {
			return 0, 0, true, errInvalidPaging
		}
	}
	return page, pageSize, true, nil
}

func identity(ctx *gin.Context) (models.Identity, bool) {
	id, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Fail(ctx, errUnauthorized)
	}
	return id, ok
}

// cachedEnvelope wraps payload the way Success writes it so cached bytes can be replayed.
func cachedEnvelope(payload interface{}) utils.JSONResponse {
	return utils.JSONResponse{Code: 0, Message: "success", Data: payload}
}
