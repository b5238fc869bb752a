package dto

import (
	"time"

	"r2d2-service/internal/domain"
	"r2d2-service/internal/services"
)

type ZaansrechtFormRequest struct {
	FullName        string     `json:"full_name" binding:"required,max=200"`
	Email           string     `json:"email" binding:"required,email"`
	TermsAccepted   bool       `json:"terms_accepted"`
	Telephone       *string    `json:"telephone" binding:"omitempty,max=40"`
	Description     *string    `json:"description" binding:"omitempty,max=5000"`
	Subject         *string    `json:"subject" binding:"omitempty,max=200"`
	MeetingDatetime *time.Time `json:"meeting_datetime"`
	MeetingType     *string    `json:"meeting_type" binding:"omitempty,oneof=in_person virtual"`
}

func (r ZaansrechtFormRequest) ToInput() services.FormInput {
	return services.FormInput{
		FullName:        r.FullName,
		Email:           r.Email,
		TermsAccepted:   r.TermsAccepted,
		Telephone:       r.Telephone,
		Description:     r.Description,
		Subject:         r.Subject,
		MeetingDatetime: r.MeetingDatetime,
		MeetingType:     r.MeetingType,
	}
}

type FormStatusUpdate struct {
	NewStatus string `json:"new_status" binding:"required"`
}

type FormResponse struct {
	ID              int64             `json:"id"`
	FullName        string            `json:"full_name"`
	Email           string            `json:"email"`
	Status          domain.FormStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       *time.Time        `json:"updated_at"`
	TermsAccepted   bool              `json:"terms_accepted"`
	Telephone       *string           `json:"telephone"`
	Description     *string           `json:"description"`
	Subject         *string           `json:"subject"`
	MeetingDatetime *time.Time        `json:"meeting_datetime"`
	MeetingType     *string           `json:"meeting_type"`
}

type FormListResponse struct {
	Forms []FormResponse `json:"forms"`
}

func ToFormResponse(f domain.Form) FormResponse {
	return FormResponse{
		ID:              f.ID,
		FullName:        f.FullName,
		Email:           f.Email,
		Status:          f.Status,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
		TermsAccepted:   f.TermsAccepted,
		Telephone:       f.Telephone,
		Description:     f.Description,
		Subject:         f.Subject,
		MeetingDatetime: f.MeetingDatetime,
		MeetingType:     f.MeetingType,
	}
}

func ToFormListResponse(forms []domain.Form) FormListResponse {
	out := make([]FormResponse, len(forms))
	for i, f := range forms {
		out[i] = ToFormResponse(f)
	}
	return FormListResponse{Forms: out}
}
