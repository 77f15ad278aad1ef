package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
)

const dateLayout = "2006-01-02"

// StatisticsHandler serves revenue reports.
type StatisticsHandler struct {
	facade   StatisticsFacade
	location *time.Location
}

// NewStatisticsHandler constructs StatisticsHandler. Dates are read in UTC.
func NewStatisticsHandler(facade StatisticsFacade) *StatisticsHandler {
	return &StatisticsHandler{facade: facade, location: time.UTC}
}

// Revenue handles GET /api/admin/statistics/revenue?from=YYYY-MM-DD&to=YYYY-MM-DD[&granularity=day|week|month].
// Both dates are inclusive. With a granularity only that bucket series is filled.
func (h *StatisticsHandler) Revenue(c *gin.Context) {
	from, err := time.ParseInLocation(dateLayout, c.Query("from"), h.location)
	if err != nil {
		badRequest(c, CodeValidation, "from must be a date in YYYY-MM-DD format")
		return
	}
	to, err := time.ParseInLocation(dateLayout, c.Query("to"), h.location)
	if err != nil {
		badRequest(c, CodeValidation, "to must be a date in YYYY-MM-DD format")
		return
	}

	if to.Before(from) {
		badRequest(c, CodeValidation, "to must not precede from")
		return
	}
	granularity := model.Granularity(c.Query("granularity"))
	if granularity != "" && !granularity.Valid() {
		badRequest(c, CodeValidation, "granularity must be one of day, week, month")
		return
	}

	stats, err := h.facade.RevenueStatistics(c.Request.Context(), model.DateRange{From: from, To: to.AddDate(0, 0, 1)})
	if err != nil {
		respondError(c, err)
		return
	}
	if granularity != "" {
		stats.KeepOnly(granularity)
	}
	c.JSON(http.StatusOK, toStatisticsResponse(*stats))
}
