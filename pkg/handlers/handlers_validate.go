package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
)

// ValidateRequest is the body of POST /api/validate.
type ValidateRequest struct {
	Exceptions []models.Exception `json:"exceptions"`
	Data       models.EngineData  `json:"data"`
}

// ValidateInput checks engine data for duplicate ids and dangling references
func (h *Handler) ValidateInput(c *gin.Context) {
	var input ValidateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	problems := validate(input)
	c.JSON(http.StatusOK, gin.H{
		"valid":  len(problems) == 0,
		"errors": problems,
		"stats": gin.H{
			"staff_count":     len(input.Data.Staff),
			"client_count":    len(input.Data.Clients),
			"template_rows":   len(input.Data.Template),
			"exception_count": len(input.Exceptions),
		},
	})
}

func validate(in ValidateRequest) []string {
	problems := []string{}
	if len(in.Data.Staff) == 0 {
		problems = append(problems, "At least one staff member is required")
	}

	staff := make(map[string]bool)
	for _, s := range in.Data.Staff {
		if staff[s.ID] {
			problems = append(problems, "Duplicate staff ID: "+s.ID)
		}
		staff[s.ID] = true
	}
	clients := make(map[string]bool)
	for _, cl := range in.Data.Clients {
		if clients[cl.ID] {
			problems = append(problems, "Duplicate client ID: "+cl.ID)
		}
		clients[cl.ID] = true
	}

	for _, r := range in.Data.Template {
		if !staff[r.StaffID] {
			problems = append(problems, fmt.Sprintf("Template row %s: unknown staff %s", r.ID, r.StaffID))
		}
		if r.ClientID != nil && !clients[*r.ClientID] {
			problems = append(problems, fmt.Sprintf("Template row %s: unknown client %s", r.ID, *r.ClientID))
		}
		if r.Block != models.BlockAM && r.Block != models.BlockPM {
			problems = append(problems, fmt.Sprintf("Template row %s: invalid block %q", r.ID, r.Block))
		}
	}
	for _, l := range in.Data.CancelLinks {
		if !clients[l.ClientID] || !clients[l.LinkedClientID] {
			problems = append(problems, fmt.Sprintf("Cancel link %s-%s: unknown client", l.ClientID, l.LinkedClientID))
		}
	}
	for _, ex := range in.Exceptions {
		known := staff
		if ex.Type == models.ExceptionClient {
			known = clients
		}
		if !known[ex.EntityID] {
			problems = append(problems, fmt.Sprintf("Exception: unknown %s %s", ex.Type, ex.EntityID))
		}
	}
	return problems
}
