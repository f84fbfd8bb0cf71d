package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidInput       = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is the identity record. Password is the bcrypt hash and never leaves
// the service layer in responses.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"`
	Name      string    `json:"name" db:"name"`
	Surnames  string    `json:"surnames" db:"surnames"`
	Phone     *string   `json:"phone" db:"phone"`
	Country   *string   `json:"country" db:"country"`
	Image     *string   `json:"image" db:"image"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "PENDING"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

type PaymentMethod string

const (
	PaymentMethodPaypal     PaymentMethod = "PAYPAL"
	PaymentMethodVisa       PaymentMethod = "VISA"
	PaymentMethodMastercard PaymentMethod = "MASTERCARD"
	PaymentMethodOther      PaymentMethod = "OTHER"
)

type Invoice struct {
	ID            int64         `json:"id" db:"id"`
	InvoiceNumber string        `json:"invoice_number" db:"invoice_number"`
	IssuerID      int64         `json:"issuer_id" db:"issuer_id"`
	DebtorID      int64         `json:"debtor_id" db:"debtor_id"`
	Amount        float64       `json:"amount" db:"amount"`
	Tax           float64       `json:"tax" db:"tax"`
	Status        InvoiceStatus `json:"status" db:"status"`
	IssueDate     time.Time     `json:"issue_date" db:"issue_date"`
	DueDate       time.Time     `json:"due_date" db:"due_date"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

type Payment struct {
	ID        int64         `json:"id" db:"id"`
	InvoiceID int64         `json:"invoice_id" db:"invoice_id"`
	Amount    float64       `json:"amount" db:"amount"`
	Method    PaymentMethod `json:"method" db:"method"`
	Reference string        `json:"reference" db:"reference"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// UpdateProfile carries the replaceable profile fields for a PUT update.
// Nil optional fields clear the stored value.
type UpdateProfile struct {
	Email    string
	Name     string
	Surnames string
	Phone    *string
	Country  *string
	Image    *string
}
