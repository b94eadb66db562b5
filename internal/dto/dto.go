package dto

import "time"

type InitiatePaymentResponse struct {
	Message     string `json:"message"`
	OrderID     string `json:"order_id"`
	RedirectURL string `json:"redirect_url"`
}

// CallbackResult is the reconciler's outcome, rendered by the handler as
// either a "processed" or a "redirect_required" envelope.
type CallbackResult struct {
	OrderID          string
	PaymentStatus    string
	RedirectRequired bool
	RedirectURL      string
}

type CreateCompanyRequest struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	PhoneNumber string   `json:"phone_number"`
	CR          string   `json:"cr"`
	Website     string   `json:"website"`
	Description string   `json:"description"`
	Tagline     string   `json:"tagline"`
	LogoKey     string   `json:"logo_key"`
	Awards      []string `json:"awards"`
	Sectors     []string `json:"sectors"`
}

// UpdateCompanyRequest carries optional field updates; nil means "leave
// unchanged".
type UpdateCompanyRequest struct {
	Name        *string  `json:"name"`
	Email       *string  `json:"email"`
	PhoneNumber *string  `json:"phone_number"`
	CR          *string  `json:"cr"`
	Website     *string  `json:"website"`
	Description *string  `json:"description"`
	Tagline     *string  `json:"tagline"`
	LogoKey     *string  `json:"logo_key"`
	Awards      []string `json:"awards"`
	Sectors     []string `json:"sectors"`
}

type UpdateScoreRequest struct {
	Year      *int     `json:"year"`
	Score     *float64 `json:"score"`
	ScoreType *string  `json:"score_type"`
	FileKey   *string  `json:"file_key"`
}

type ValidateCompanyRequest struct {
	Status          string `json:"status"` // approved or rejected
	RejectionReason string `json:"rejection_reason"`
}

type ValidateCompanyResponse struct {
	Message         string  `json:"message"`
	CompanyID       uint    `json:"company_id"`
	Status          string  `json:"status"`
	RejectionReason *string `json:"rejection_reason"`
	Changed         bool    `json:"changed"`
}

type UpsertSubscriptionRequest struct {
	UserID     uint      `json:"user_id"`
	PlanID     uint      `json:"plan_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	AmountPaid float64   `json:"amount_paid"`
}
