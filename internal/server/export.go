package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/spendlens/internal/export"
)

func (s *Server) ExportCSV(c *gin.Context) {
	var req exportCSVRequest
	if !bindJSON(c, &req) {
		return
	}

	file, err := s.exportSvc.CSV(c.Request.Context(), export.CSVRequest{
		Type:    req.Type,
		Filters: req.Filters,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
