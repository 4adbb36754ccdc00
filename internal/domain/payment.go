package domain

import "time"

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type PaymentMethodType string

const (
	MethodCash          PaymentMethodType = "cash"
	MethodBankTransfer  PaymentMethodType = "bank_transfer"
	MethodCreditCard    PaymentMethodType = "credit_card"
	MethodMobileBanking PaymentMethodType = "mobile_banking"
	MethodQRCode        PaymentMethodType = "qr_code"
)

type PaymentMethod struct {
	ID            int64             `json:"id" gorm:"primaryKey"`
	Name          string            `json:"name" gorm:"size:100;not null"`
	Description   string            `json:"description,omitempty" gorm:"size:500"`
	Type          PaymentMethodType `json:"type" gorm:"size:30;not null"`
	AccountNumber string            `json:"account_number,omitempty" gorm:"size:100"`
	AccountName   string            `json:"account_name,omitempty" gorm:"size:100"`
	BankName      string            `json:"bank_name,omitempty" gorm:"size:100"`
	QRCodeURL     string            `json:"qr_code_url,omitempty" gorm:"size:500"`
	IsActive      bool              `json:"is_active" gorm:"not null"`
	DisplayOrder  int               `json:"display_order"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Payment is created by the booking owner and mutated only by staff.
type Payment struct {
	ID                   int64         `json:"id" gorm:"primaryKey"`
	BookingID            int64         `json:"booking_id" gorm:"not null;index"`
	UserID               int64         `json:"user_id" gorm:"not null;index"`
	PaymentMethodID      int64         `json:"payment_method_id" gorm:"not null"`
	Amount               float64       `json:"amount" gorm:"not null"`
	Status               PaymentStatus `json:"status" gorm:"size:20;not null;index"`
	TransactionReference string        `json:"transaction_reference,omitempty" gorm:"size:200"`
	PaymentProofURL      string        `json:"payment_proof_url,omitempty" gorm:"size:500"`
	PaidAt               *time.Time    `json:"paid_at,omitempty"`
	ConfirmedBy          *int64        `json:"confirmed_by,omitempty"`
	ConfirmedAt          *time.Time    `json:"confirmed_at,omitempty"`
	Notes                string        `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`

	Booking       *Booking       `json:"booking,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:RESTRICT"`
	User          *User          `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty" gorm:"foreignKey:PaymentMethodID;constraint:OnDelete:RESTRICT"`
}
