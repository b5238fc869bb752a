package api

import (
	"net/http"
	"strconv"

	"r2d2-service/internal/api/dto"
	"r2d2-service/internal/domain"

	"github.com/gin-gonic/gin"
)

// createZaansrechtFormHandler
// @Summary      Submits a Zaansrecht contact form
// @Description  Requires a valid CAPTCHA token. Stores the form and its request metadata and queues a notification email.
// @Tags         Forms
// @Accept       json
// @Produce      json
// @Param        X-Captcha-Token  header  string                     true  "CAPTCHA response token"
// @Param        form             body    dto.ZaansrechtFormRequest  true  "form fields"
// @Success      201  {object}  dto.FormResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      429  {object}  dto.ErrorResponse
// @Router       /forms/zaansrecht [post]
func (h *Handler) createZaansrechtFormHandler(c *gin.Context) {
	var req dto.ZaansrechtFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Request: " + err.Error()})
		return
	}

	form, err := h.formService.SubmitForm(c.Request.Context(), req.ToInput(), submissionMetadata(c))
	if err != nil {
		h.writeError(c, err, "failed to create form")
		return
	}
	h.jobs.Trigger()

	c.JSON(http.StatusCreated, dto.ToFormResponse(*form))
}

// getFormsHandler
// @Summary      Lists forms
// @Tags         Forms
// @Produce      json
// @Security     BearerAuth
// @Param        status  query  string  false  "NEW, IN_PROGRESS, COMPLETED or ARCHIVED"
// @Success      200  {object}  dto.FormListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /forms/ [get]
func (h *Handler) getFormsHandler(c *gin.Context) {
	var status *domain.FormStatus
	if raw, ok := c.GetQuery("status"); ok && raw != "" {
		st, err := domain.ParseFormStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status = &st
	}

	forms, err := h.formService.ListForms(c.Request.Context(), status)
	if err != nil {
		h.writeError(c, err, "failed to list forms")
		return
	}
	c.JSON(http.StatusOK, dto.ToFormListResponse(forms))
}

// updateFormStatusHandler
// @Summary      Changes the status of a form
// @Tags         Forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path  int                   true  "form id"
// @Param        update  body  dto.FormStatusUpdate  true  "new status"
// @Success      200  {object}  dto.FormResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /forms/{id}/status [put]
func (h *Handler) updateFormStatusHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form id"})
		return
	}

	var req dto.FormStatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Request: " + err.Error()})
		return
	}
	status, err := domain.ParseFormStatus(req.NewStatus)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	form, err := h.formService.UpdateFormStatus(c.Request.Context(), id, status)
	if err != nil {
		h.writeError(c, err, "form "+c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, dto.ToFormResponse(*form))
}
