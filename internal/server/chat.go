package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	chatdomain "github.com/smallbiznis/spendlens/internal/chat/domain"
)

func (s *Server) ChatWithData(c *gin.Context) {
	var req chatRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := s.chatSvc.Ask(c.Request.Context(), chatdomain.AskRequest{Query: req.Query})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) ChatHistory(c *gin.Context) {
	var query chatHistoryQuery
	if !bindQuery(c, &query) {
		return
	}

	items, err := s.chatSvc.History(c.Request.Context(), query.Limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}
