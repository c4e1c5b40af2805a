package models

import "time"

// ============================================================================
// USER MODEL
// ============================================================================

type User struct {
	ID            string `json:"id" bson:"_id"`
	Email         string `json:"email" bson:"email"`
	Name          string `json:"name" bson:"name"`
	PasswordHash  string `json:"-" bson:"password_hash"` // Never expose in JSON
	TOTPSecret    string `json:"-" bson:"totp_secret,omitempty"`
	TOTPEnabled   bool   `json:"totp_enabled" bson:"totp_enabled"`
	EmailVerified bool   `json:"email_verified" bson:"email_verified"`

	// Budget profile: drives strategy selection during prescription generation.
	MonthlyNet          float64 `json:"monthly_net" bson:"monthly_net"`
	EmergencyFundAmount float64 `json:"emergency_fund_amount" bson:"emergency_fund_amount"`
	MaxMonthlyExpense   float64 `json:"max_monthly_expense" bson:"max_monthly_expense"`
	NumberOfChildren    int     `json:"number_of_children" bson:"number_of_children"`
	EmploymentStatus    string  `json:"employment_status,omitempty" bson:"employment_status,omitempty"`
	AgeGroup            string  `json:"age_group,omitempty" bson:"age_group,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// ============================================================================
// SESSIONS & PASSWORD RESET
// ============================================================================

type Session struct {
	ID           string    `json:"id" bson:"_id"`
	UserID       string    `json:"user_id" bson:"user_id"`
	RefreshToken string    `json:"-" bson:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

type PasswordReset struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Token     string    `json:"-" bson:"token"`
	Used      bool      `json:"used" bson:"used"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// ============================================================================
// AUTHENTICATION REQUESTS
// ============================================================================

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	TOTPCode string `json:"totp_code,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type AuthResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ============================================================================
// PROFILE & SECURITY
// ============================================================================

type UpdateProfileRequest struct {
	Name                string  `json:"name" binding:"required"`
	MonthlyNet          float64 `json:"monthly_net" binding:"gte=0"`
	EmergencyFundAmount float64 `json:"emergency_fund_amount" binding:"gte=0"`
	MaxMonthlyExpense   float64 `json:"max_monthly_expense" binding:"gte=0"`
	NumberOfChildren    int     `json:"number_of_children" binding:"gte=0"`
	EmploymentStatus    string  `json:"employment_status"`
	AgeGroup            string  `json:"age_group"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

type VerifyTOTPRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

type DisableTOTPRequest struct {
	Password string `json:"password" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

type DeleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}
