package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"r2d2-service/internal/api/dto"
	"r2d2-service/internal/domain"
	"r2d2-service/internal/types"

	"github.com/gin-gonic/gin"
)

const queuedMessage = "Email queued for sending"

// sendEmailHandler
// @Summary      Queues an email
// @Description  Stores a QUEUED email and wakes the sweep job. With inline=true the request waits for the send attempt.
// @Tags         Email
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        sender   query  string  false  "originator"
// @Param        subject  query  string  false  "subject"
// @Param        message  query  string  false  "body"
// @Param        inline   query  bool    false  "send before responding"
// @Success      200  {object}  dto.EmailQueuedResponse
// @Success      202  {object}  dto.EmailQueuedResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.EmailQueuedResponse
// @Router       /email/send-email [post]
func (h *Handler) sendEmailHandler(c *gin.Context) {
	var req dto.SendEmailRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Request: " + err.Error()})
		return
	}

	record, err := h.emailService.Enqueue(c.Request.Context(), req.Sender, req.Subject, req.Message, "api")
	if err != nil {
		h.writeError(c, err, "failed to queue email")
		return
	}

	inline, _ := strconv.ParseBool(c.Query("inline"))
	if !inline {
		h.jobs.Trigger()
		c.JSON(http.StatusAccepted, dto.EmailQueuedResponse{Status: queuedMessage, EmailID: record.ID})
		return
	}

	// once started, the send outlives a client that hangs up; the SMTP timeout still applies
	err = h.emailService.Dispatch(context.WithoutCancel(c.Request.Context()), record)
	var sendFailure *types.SendFailure
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.EmailQueuedResponse{Status: "Email sent", EmailID: record.ID, State: record.Status})
	case errors.Is(err, types.ErrRateLimitExceeded):
		c.JSON(http.StatusAccepted, dto.EmailQueuedResponse{
			Status:  queuedMessage,
			EmailID: record.ID,
			State:   domain.StatusQueued,
			Detail:  "send rate limit reached, the email will go out with the next sweep",
		})
	case errors.As(err, &sendFailure):
		c.JSON(http.StatusBadGateway, dto.EmailQueuedResponse{
			Status:  "Email could not be sent",
			EmailID: record.ID,
			State:   domain.StatusFailed,
			Detail:  sendFailure.Err.Error(),
		})
	default:
		h.writeError(c, err, "failed to send email")
	}
}

// getSentEmailsHandler
// @Summary      Lists emails by status
// @Tags         Email
// @Produce      json
// @Param        status  query  string  false  "QUEUED, SENDING, SENT or FAILED"  default(SENT)
// @Success      200  {object}  dto.SentEmailsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /email/sent-emails [get]
func (h *Handler) getSentEmailsHandler(c *gin.Context) {
	status, err := domain.ParseEmailStatus(c.DefaultQuery("status", string(domain.StatusSent)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := h.emailService.ListEmails(c.Request.Context(), &status)
	if err != nil {
		h.writeError(c, err, "failed to list emails")
		return
	}
	c.JSON(http.StatusOK, dto.SentEmailsResponse{SentEmails: dto.ToEmailResponseList(records)})
}

// getEmailStatusHandler
// @Summary      Gets the status of one email
// @Tags         Email
// @Produce      json
// @Param        id  path  int  true  "email id"
// @Success      200  {object}  dto.EmailStatusResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /email/email-status/{id} [get]
func (h *Handler) getEmailStatusHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email id"})
		return
	}

	record, err := h.emailService.GetEmail(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "email "+c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, dto.EmailStatusResponse{EmailID: record.ID, Status: record.Status})
}

// getAllEmailsHandler
// @Summary      Lists every email record
// @Tags         Email
// @Produce      json
// @Success      200  {object}  dto.AllEmailsResponse
// @Router       /email/all-emails [get]
func (h *Handler) getAllEmailsHandler(c *gin.Context) {
	records, err := h.emailService.ListEmails(c.Request.Context(), nil)
	if err != nil {
		h.writeError(c, err, "failed to list emails")
		return
	}
	c.JSON(http.StatusOK, dto.AllEmailsResponse{AllEmails: dto.ToEmailResponseList(records)})
}

// getRecentSentEmailsHandler
// @Summary      Pages recently sent emails
// @Tags         Email
// @Produce      json
// @Param        page      query  int  false  "page number"
// @Param        pageSize  query  int  false  "size of page"
// @Success      200  {object}  dto.RecentSentEmailsResponse
// @Success      204
// @Router       /email/recent-sent [get]
func (h *Handler) getRecentSentEmailsHandler(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page number"})
		return
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if err != nil || pageSize <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page size"})
		return
	}

	records, total, err := h.emailService.GetRecentSentEmails(c.Request.Context(), page, pageSize)
	if err != nil {
		h.writeError(c, err, "failed to fetch sent emails")
		return
	}
	if len(records) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, dto.RecentSentEmailsResponse{Emails: dto.ToEmailResponseList(records), Total: total})
}

// sweepQueuedEmailsHandler
// @Summary      Sweeps the queue now
// @Description  Dispatches every QUEUED email and reports the outcome counts.
// @Tags         Email
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  services.SweepReport
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /email/cronjob-send-queued-emails [post]
func (h *Handler) sweepQueuedEmailsHandler(c *gin.Context) {
	report, err := h.sweeper.Sweep(c.Request.Context(), "cron")
	if err != nil {
		h.writeError(c, err, "failed to sweep queued emails")
		return
	}
	c.JSON(http.StatusOK, report)
}

// toggleSweepJobHandler
// @Summary      Starts or stops the periodic sweep job
// @Tags         Email
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.JobResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /email/toggle-job [put]
func (h *Handler) toggleSweepJobHandler(c *gin.Context) {
	var (
		err      error
		response dto.JobResponse
	)
	if h.jobs.IsRunning() {
		err = h.jobs.Stop()
		response = dto.JobResponse{Status: "stopped"}
	} else {
		err = h.jobs.Start(h.appCtx)
		response = dto.JobResponse{Status: "started"}
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, response)
}
