package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/clinic-scheduler-api/pkg/approval"
	"github.com/arnavshah/clinic-scheduler-api/pkg/cancellation"
	"github.com/arnavshah/clinic-scheduler-api/pkg/database"
	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
	"github.com/arnavshah/clinic-scheduler-api/pkg/scheduler"
)

// ScheduleRequest is the body of POST /api/schedule. DayOfWeek defaults to
// the weekday of Date.
type ScheduleRequest struct {
	Date         string               `json:"date" binding:"required"`
	DayOfWeek    *time.Weekday        `json:"day_of_week,omitempty"`
	Exceptions   []models.Exception   `json:"exceptions"`
	Data         models.EngineData    `json:"data"`
	ApprovedSubs []models.ApprovedSub `json:"approved_subs,omitempty"`
}

// Input converts the request for the engine.
func (r ScheduleRequest) Input() (scheduler.Input, error) {
	date, err := time.Parse(time.DateOnly, r.Date)
	if err != nil {
		return scheduler.Input{}, errors.New("date must be YYYY-MM-DD")
	}
	day := date.Weekday()
	if r.DayOfWeek != nil {
		day = *r.DayOfWeek
	}
	return scheduler.Input{
		Exceptions:   r.Exceptions,
		Data:         r.Data,
		ApprovedSubs: r.ApprovedSubs,
		DayOfWeek:    day,
		AsOf:         date,
	}, nil
}

// Schedule runs the engine for one date. Approval decisions already stored
// for the date are carried over before the new set is saved.
func (h *Handler) Schedule(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in, err := req.Input()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	res := h.Scheduler.GenerateDailySchedule(in)

	previous, err := database.LoadApprovals(h.DB, req.Date)
	if err != nil {
		h.log().Errorf("schedule %s: %v", req.Date, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load approvals"})
		return
	}
	res.PendingApprovals = approval.Merge(previous, res.PendingApprovals)
	if err := database.SaveApprovals(h.DB, req.Date, res.PendingApprovals); err != nil {
		h.log().Errorf("schedule %s: %v", req.Date, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save approvals"})
		return
	}

	h.recordUsage(c, len(req.Data.Staff), len(req.Data.Clients))
	if h.Metrics != nil {
		h.Metrics.RecordRun(res, time.Since(start))
	}

	c.JSON(http.StatusOK, gin.H{
		"date":        req.Date,
		"result":      res,
		"finalizable": res.Finalizable(),
	})
}

// SelectCancel picks the next cancellation target from caller-built candidates.
func (h *Handler) SelectCancel(c *gin.Context) {
	var req struct {
		Candidates    []models.CancelCandidate `json:"candidates"`
		PreferFullDay *bool                    `json:"prefer_full_day,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	prefer := h.Scheduler.Policy().PreferFullDay
	if req.PreferFullDay != nil {
		prefer = *req.PreferFullDay
	}
	c.JSON(http.StatusOK, gin.H{"decision": cancellation.SelectCancelTarget(req.Candidates, prefer)})
}

// ListApprovals returns the stored approval requests for ?date=.
func (h *Handler) ListApprovals(c *gin.Context) {
	date := c.Query("date")
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	reqs, err := database.LoadApprovals(h.DB, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load approvals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":      date,
		"approvals": reqs,
		"blocking":  approval.Blocking(reqs),
	})
}

// DecideApproval approves or denies one stored request.
func (h *Handler) DecideApproval(c *gin.Context) {
	var req struct {
		Date   string                `json:"date" binding:"required"`
		Status models.ApprovalStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != models.StatusApproved && req.Status != models.StatusDenied {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be approved or denied"})
		return
	}

	row, err := database.DecideApproval(h.DB, req.Date, c.Param("id"), req.Status, c.GetString("userID"))
	if errors.Is(err, database.ErrApprovalNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Approval not found"})
		return
	}
	if err != nil {
		h.log().Errorf("decide approval %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not record decision"})
		return
	}
	h.log().Infof("approval %s %s by %s", row.RequestID, row.Status, row.DecidedBy)
	c.JSON(http.StatusOK, gin.H{"approval": row.Request()})
}
