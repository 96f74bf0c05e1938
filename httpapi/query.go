package httpapi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spektr-org/pulse/dashboard"
	"github.com/spektr-org/pulse/dataset"
	"github.com/spektr-org/pulse/schema"
)

// parseQuery reads the filter parameters:
//
//	start, end     YYYY-MM-DD bounds (either may be omitted)
//	date           repeatable; used when start/end are absent
//	min_messages   non-negative integer
//	retention      repeatable or comma separated bucket labels
//
// Unparsable dates are dropped and end up in the date range fallback.
func parseQuery(c *gin.Context) (dashboard.Query, error) {
	var q dashboard.Query

	start, hasStart := c.GetQuery("start")
	end, hasEnd := c.GetQuery("end")
	switch {
	case hasStart || hasEnd:
		s, errS := schema.ParseDate(start)
		e, errE := schema.ParseDate(end)
		switch {
		case errS == nil && errE == nil:
			q.Dates = dashboard.DateSelection{s, e}
		case errS == nil && !hasEnd:
			q.Dates = dashboard.DateSelection{s, {}}
		case errE == nil && !hasStart:
			q.Dates = dashboard.DateSelection{{}, e}
		}
	default:
		for _, raw := range c.QueryArray("date") {
			if d, err := schema.ParseDate(raw); err == nil {
				q.Dates = append(q.Dates, d)
			}
		}
	}

	if raw := strings.TrimSpace(c.Query("min_messages")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return dashboard.Query{}, fmt.Errorf("min_messages must be a non-negative integer, got %q", raw)
		}
		q.MinMessages = n
	}

	for _, raw := range c.QueryArray("retention") {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			g, ok := dataset.ParseRetentionGroup(part)
			if !ok {
				return dashboard.Query{}, fmt.Errorf("unknown retention group %q", part)
			}
			q.Retention = append(q.Retention, g)
		}
	}

	return q, nil
}
