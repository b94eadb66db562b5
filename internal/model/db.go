package model

import "time"

// Payment statuses. SETTLED, DECLINED and FAILURE are terminal;
// AWAITING_3DS re-enters via a second gateway callback.
const (
	PaymentPending     = "PENDING"
	PaymentSettled     = "SETTLED"
	PaymentDeclined    = "DECLINED"
	PaymentFailure     = "FAILURE"
	PaymentAwaiting3DS = "AWAITING_3DS"
)

const (
	SubscriptionActive    = "ACTIVE"
	SubscriptionSuspended = "SUSPENDED"
	SubscriptionExpired   = "EXPIRED"
)

// Company profile statuses.
const (
	CompanyPending           = "pending"
	CompanyApproved          = "approved"
	CompanyRejected          = "rejected"
	CompanyReEvaluation      = "re-evaluation"
	CompanyRevisionRequested = "revision-requested"
	CompanyDeleted           = "deleted"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidCompanyStatus rejects anything outside the known status set before
// it reaches the database.
func ValidCompanyStatus(s string) bool {
	switch s {
	case CompanyPending, CompanyApproved, CompanyRejected,
		CompanyReEvaluation, CompanyRevisionRequested, CompanyDeleted:
		return true
	}
	return false
}

type User struct {
	ID             uint   `gorm:"primaryKey"`
	FirstName      string `gorm:"size:64;not null"`
	LastName       string `gorm:"size:64;not null"`
	PhoneNumber    string `gorm:"size:32"`
	CompanyName    string `gorm:"size:128"`
	Email          string `gorm:"size:128;uniqueIndex;not null"`
	HashedPassword string `gorm:"size:128;not null"`
	Role           string `gorm:"size:16;not null;default:user"` // user, admin
	IsActive       bool   `gorm:"not null;default:true"`
	IsVerified     bool   `gorm:"not null;default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Company struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"index;not null"` // owner
	Name        string `gorm:"size:128;not null"`
	Email       string `gorm:"size:128;not null"`
	PhoneNumber string `gorm:"size:32;not null"`
	CR          string `gorm:"size:32;not null"` // commercial registration number
	Website     string `gorm:"size:255"`
	Description string `gorm:"size:1024"`
	Logo        string `gorm:"size:255"` // object storage key
	Tagline     string `gorm:"size:255"`

	Awards  []string `gorm:"serializer:json"`
	Sectors []string `gorm:"serializer:json"`

	Status string `gorm:"size:32;index;not null;default:pending"`
	// non-null only while status is rejected
	RejectionReason *string `gorm:"size:512"`

	LastUpdated time.Time
	CreatedAt   time.Time
}

type Score struct {
	ID        uint    `gorm:"primaryKey"`
	CompanyID uint    `gorm:"index;not null"`
	Year      int     `gorm:"not null"`
	Score     float64 `gorm:"not null"`
	ScoreType string  `gorm:"size:32;not null"` // local, iktva
	File      string  `gorm:"size:255"`         // object storage key of the certificate
	CreatedAt time.Time
}

type SubscriptionPlan struct {
	ID           uint    `gorm:"primaryKey"`
	Name         string  `gorm:"size:64;uniqueIndex;not null"`
	Description  string  `gorm:"size:255"`
	Price        float64 `gorm:"not null"`
	DurationDays int     `gorm:"not null"`
	IsActive     bool    `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Subscription struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"index;not null"`
	PlanID     uint      `gorm:"index"`
	StartDate  time.Time `gorm:"not null"`
	EndDate    time.Time `gorm:"not null"`
	AmountPaid float64   `gorm:"not null"`
	Status     string    `gorm:"size:16;not null"` // ACTIVE, SUSPENDED, EXPIRED
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Payment is a single payment attempt against the gateway, keyed by the
// locally generated order id. Amount, currency and description are a
// snapshot of the plan terms at initiation time.
type Payment struct {
	ID             uint   `gorm:"primaryKey"`
	OrderID        string `gorm:"size:64;uniqueIndex;not null"`
	UserID         uint   `gorm:"index;not null"`
	PlanID         *uint  `gorm:"index"`
	SubscriptionID *uint  `gorm:"index"` // set exactly once, on first settlement

	Amount      float64 `gorm:"not null"`
	Currency    string  `gorm:"size:8;not null"`
	Description string  `gorm:"size:255"`
	Status      string  `gorm:"size:32;index;not null;default:PENDING"`

	// gateway-supplied, absent until the first callback
	TransID       *string `gorm:"size:64;uniqueIndex"`
	TransDate     *time.Time
	FailureReason *string `gorm:"size:512"`
	RedirectURL   *string `gorm:"size:512"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Notification struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	Message   string `gorm:"size:512;not null"`
	Type      string `gorm:"size:32;not null;default:GENERAL"` // GENERAL, PAYMENT, COMPANY
	IsRead    bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}

// OTPRateLimit is an advisory per-identifier counter with a time-window
// reset. Not row-locked: it throttles OTP requests, it does not guard money.
type OTPRateLimit struct {
	Identifier  string `gorm:"primaryKey;size:128"`
	Count       int    `gorm:"not null"`
	WindowStart time.Time
}
