package server

import (
	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/spendlens/internal/invoice/domain"
)

type listInvoicesQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search    string `form:"search" binding:"max=200"`
	Status    string `form:"status"`
	Vendor    string `form:"vendor" binding:"max=200"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

func (q listInvoicesQuery) toRequest() invoicedomain.ListInvoiceRequest {
	return invoicedomain.ListInvoiceRequest{
		Page:      q.Page,
		Limit:     q.Limit,
		Search:    q.Search,
		Status:    q.Status,
		Vendor:    q.Vendor,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
}

type chatRequest struct {
	Query string `json:"query" binding:"required,max=2000"`
}

type chatHistoryQuery struct {
	Limit int `form:"limit" binding:"min=0"`
}

type exportCSVRequest struct {
	Type    string                     `json:"type" binding:"required"`
	Filters invoicedomain.ExportFilter `json:"filters"`
}

func bindQuery(c *gin.Context, dest any) bool {
	if err := c.ShouldBindQuery(dest); err != nil {
		AbortWithError(c, bindingError(err))
		return false
	}
	return true
}

func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		AbortWithError(c, bindingError(err))
		return false
	}
	return true
}
