package payment

import "roombooking/internal/domain"

type SubmitPaymentRequest struct {
	PaymentMethodID      int64  `json:"payment_method_id" binding:"required"`
	TransactionReference string `json:"transaction_reference" binding:"max=200"`
	PaymentProofURL      string `json:"payment_proof_url" binding:"omitempty,url,max=500"`
	Notes                string `json:"notes" binding:"max=1000"`
}

type ReviewRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

type ListFilter struct {
	Status domain.PaymentStatus
	Limit  int
	Offset int
}

type CreateMethodRequest struct {
	Name          string                   `json:"name" validate:"required,max=100"`
	Description   string                   `json:"description" validate:"max=500"`
	Type          domain.PaymentMethodType `json:"type" validate:"required,oneof=cash bank_transfer credit_card mobile_banking qr_code"`
	AccountNumber string                   `json:"account_number" validate:"max=100"`
	AccountName   string                   `json:"account_name" validate:"max=100"`
	BankName      string                   `json:"bank_name" validate:"max=100"`
	QRCodeURL     string                   `json:"qr_code_url" validate:"omitempty,url,max=500"`
	DisplayOrder  int                      `json:"display_order"`
}

// UpdateMethodRequest is a partial update; nil fields are left untouched.
// IsActive brings a retired method back.
type UpdateMethodRequest struct {
	Name          *string                   `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description   *string                   `json:"description,omitempty" validate:"omitempty,max=500"`
	Type          *domain.PaymentMethodType `json:"type,omitempty" validate:"omitempty,oneof=cash bank_transfer credit_card mobile_banking qr_code"`
	AccountNumber *string                   `json:"account_number,omitempty" validate:"omitempty,max=100"`
	AccountName   *string                   `json:"account_name,omitempty" validate:"omitempty,max=100"`
	BankName      *string                   `json:"bank_name,omitempty" validate:"omitempty,max=100"`
	QRCodeURL     *string                   `json:"qr_code_url,omitempty" validate:"omitempty,max=500"`
	DisplayOrder  *int                      `json:"display_order,omitempty"`
	IsActive      *bool                     `json:"is_active,omitempty"`
}
