package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/spektr-org/pulse/dashboard"
)

// Handler answers the read endpoints from the server's current snapshot.
type Handler struct {
	server *Server
}

func NewHandler(server *Server) *Handler {
	return &Handler{server: server}
}

func (h *Handler) Health(c *gin.Context) {
	dash, err := h.server.Dashboard()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"fingerprint": dash.Data().Fingerprint(),
	})
}

func (h *Handler) Metrics(c *gin.Context) {
	dash, q, ok := h.prepare(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dash.Metrics(q))
}

func (h *Handler) Charts(c *gin.Context) {
	h.withSnapshot(c, func(snap dashboard.Snapshot) {
		c.JSON(http.StatusOK, snap.Charts)
	})
}

func (h *Handler) Summary(c *gin.Context) {
	dash, q, ok := h.prepare(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dash.Summary(q))
}

func (h *Handler) Members(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	dash, q, ok := h.prepare(c)
	if !ok {
		return
	}
	members, _ := dashboard.Filter(dash.Data(), q.Dates, q.MinMessages)
	if len(q.Retention) > 0 {
		members = dashboard.FilterByRetention(members, q.Retention...)
	}
	c.JSON(http.StatusOK, gin.H{
		"count":        len(members),
		"max_messages": dash.MaxMessages(),
		"members":      members,
		"table":        dash.MembersTable(members, limit),
	})
}

func (h *Handler) Channels(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	dash, err := h.server.Dashboard()
	if err != nil {
		unavailable(c, err)
		return
	}
	channels := dash.Data().Channels()
	c.JSON(http.StatusOK, gin.H{
		"count":    len(channels),
		"channels": channels,
		"table":    dash.ChannelsTable(limit),
	})
}

func (h *Handler) Workspace(c *gin.Context) {
	dash, q, ok := h.prepare(c)
	if !ok {
		return
	}
	_, days := dashboard.Filter(dash.Data(), q.Dates, q.MinMessages)
	c.JSON(http.StatusOK, gin.H{
		"count": len(days),
		"days":  days,
	})
}

// ============================================================================
// HELPERS
// ============================================================================

func (h *Handler) withSnapshot(c *gin.Context, fn func(dashboard.Snapshot)) {
	dash, q, ok := h.prepare(c)
	if !ok {
		return
	}
	fn(dash.Snapshot(q))
}

func (h *Handler) prepare(c *gin.Context) (*dashboard.Dashboard, dashboard.Query, bool) {
	q, err := parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, dashboard.Query{}, false
	}
	dash, err := h.server.Dashboard()
	if err != nil {
		unavailable(c, err)
		return nil, dashboard.Query{}, false
	}
	return dash, q, true
}

func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return 0, false
	}
	return n, true
}

func unavailable(c *gin.Context, err error) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
}
