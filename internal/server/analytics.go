package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const topVendorsCount = 10

func (s *Server) GetStats(c *gin.Context) {
	stats, err := s.analyticsSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) ListVendors(c *gin.Context) {
	vendors, err := s.analyticsSvc.ListVendors(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendors)
}

func (s *Server) TopVendors(c *gin.Context) {
	vendors, err := s.analyticsSvc.TopVendors(c.Request.Context(), topVendorsCount)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendors)
}

func (s *Server) GetCategorySpend(c *gin.Context) {
	categories, err := s.analyticsSvc.CategorySpend(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) GetInvoiceTrends(c *gin.Context) {
	trends, err := s.analyticsSvc.InvoiceTrends(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, trends)
}

func (s *Server) GetCashOutflow(c *gin.Context) {
	weeks, err := s.analyticsSvc.CashOutflow(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, weeks)
}
