package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/clinic-scheduler-api/pkg/database"
)

// GetUsage returns usage stats for a key
func (h *Handler) GetUsage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid key id"})
		return
	}
	usage, err := database.UsageHistory(h.DB, uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": usage})
}

// GetMyUsage returns usage stats for the authenticated API key
func (h *Handler) GetMyUsage(c *gin.Context) {
	apiKey, ok := currentKey(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}

	usage, err := database.UsageHistory(h.DB, apiKey.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}

	// Calculate totals
	var totalRequests, totalStaff, totalClients int64
	for _, u := range usage {
		totalRequests += int64(u.RequestCount)
		totalStaff += int64(u.TotalStaff)
		totalClients += int64(u.TotalClients)
	}

	c.JSON(http.StatusOK, gin.H{
		"key_name":      apiKey.Name,
		"rate_limit":    apiKey.RateLimit,
		"usage_history": usage,
		"totals": gin.H{
			"requests": totalRequests,
			"staff":    totalStaff,
			"clients":  totalClients,
		},
	})
}

func currentKey(c *gin.Context) (*database.APIKey, bool) {
	raw, exists := c.Get("apiKey")
	if !exists {
		return nil, false
	}
	k, ok := raw.(*database.APIKey)
	return k, ok
}

// recordUsage counts the request against the caller's key. Failures are
// logged and do not fail the request.
func (h *Handler) recordUsage(c *gin.Context, staffCount, clientCount int) {
	apiKey, ok := currentKey(c)
	if !ok {
		return
	}
	if err := database.RecordUsage(h.DB, apiKey.ID, staffCount, clientCount); err != nil {
		h.log().Warnf("usage for key %d: %v", apiKey.ID, err)
	}
}
