package domain

import "encoding/json"

// TokenPair is the answer of the token endpoint.
type TokenPair struct {
	Access       string `json:"access"`
	Refresh      string `json:"refresh"`
	DepartmentID string `json:"department_id,omitempty"`
}

// Department is a university department collecting fees.
type Department struct {
	ID         json.Number `json:"id"`
	Name       string      `json:"name"`
	Faculty    string      `json:"faculty,omitempty"`
	Email      string      `json:"email,omitempty"`
	Phone      string      `json:"phone,omitempty"`
	IsVerified bool        `json:"is_verified"`
}

// SignupForm registers a new department account.
type SignupForm struct {
	Name     string `json:"name"`
	Faculty  string `json:"faculty"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// FeeItem is something a department collects payments for.
type FeeItem struct {
	ID         json.Number `json:"id"`
	PaymentFor string      `json:"payment_for"`
	AmountDue  float64     `json:"amount_due"`
	Department json.Number `json:"department,omitempty"`
}

// FeeItemInput creates or replaces a fee item.
type FeeItemInput struct {
	PaymentFor string  `json:"payment_for"`
	AmountDue  float64 `json:"amount_due"`
}

// DashboardStats is the aggregate view shown on the department dashboard.
type DashboardStats struct {
	TotalPayments  int64            `json:"total_payments"`
	TotalAmount    float64          `json:"total_amount"`
	RecentPayments []PaymentRecord  `json:"recent_payments,omitempty"`
	Monthly        []MonthlyRevenue `json:"monthly,omitempty"`
}

// PaymentRecord is one collected payment.
type PaymentRecord struct {
	Reference     string  `json:"reference"`
	CustomerEmail string  `json:"customer_email"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}

// MonthlyRevenue is one point of the dashboard chart.
type MonthlyRevenue struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// ProfileUpdate changes the editable department details.
type ProfileUpdate struct {
	Name    string `json:"name,omitempty"`
	Faculty string `json:"faculty,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// PasswordChange replaces the department password.
type PasswordChange struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
	LogoutAll   bool   `json:"logout_all"`
}

// PaymentRequest starts a student payment for a fee item.
type PaymentRequest struct {
	CustomerEmail string `json:"customer_email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Payment       string `json:"payment"`
	Department    string `json:"department"`
}

// PaymentInitiation tells the student where to complete the payment.
type PaymentInitiation struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
	AccessCode       string `json:"access_code,omitempty"`
}

// TransactionVerification is the result of confirming a gateway callback.
type TransactionVerification struct {
	Status     string `json:"status"`
	Reference  string `json:"reference"`
	ReceiptURL string `json:"receipt_url"`
}

// ReceiptVerification is the result of checking a receipt hash.
type ReceiptVerification struct {
	Status        string  `json:"status"`
	Reference     string  `json:"reference,omitempty"`
	CustomerEmail string  `json:"customer_email,omitempty"`
	StudentName   string  `json:"student_name,omitempty"`
	Department    string  `json:"department,omitempty"`
	PaymentFor    string  `json:"payment_for,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
	PaidAt        string  `json:"paid_at,omitempty"`
	Detail        string  `json:"detail,omitempty"`
}

// Valid reports whether the backend recognised the receipt.
func (r ReceiptVerification) Valid() bool {
	return r.Status == "valid"
}
