// Package payment holds the request and response DTOs for Payment Service
// operations. Monetary fields use decimal values that encode as canonical
// strings on the wire, so amounts survive the round trip exactly.
package payment

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var expirationDatePattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)

// AddBankCardRequest registers a bank card as a payment method.
type AddBankCardRequest struct {
	UserID              uuid.UUID `json:"user_id"`
	CardHolderFirstName string    `json:"card_holder_first_name"`
	CardHolderLastName  string    `json:"card_holder_last_name"`
	CardNumber          string    `json:"card_number"`
	ExpirationDate      string    `json:"expiration_date"` // MM/YY
	CVVCode             string    `json:"cvv_code"`
}

// Validate enforces the card DTO invariants: MM/YY format and a
// non-expired date.
func (r AddBankCardRequest) Validate() error {
	month, year, err := parseExpiration(r.ExpirationDate)
	if err != nil {
		return err
	}
	expiry := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	if !expiry.After(time.Now().UTC()) {
		return fmt.Errorf("expiration date must be in the future")
	}
	return nil
}

// ExpirationMonth returns the card's expiration month, or 0 when the date
// is malformed.
func (r AddBankCardRequest) ExpirationMonth() int {
	month, _, err := parseExpiration(r.ExpirationDate)
	if err != nil {
		return 0
	}
	return month
}

// ExpirationYear returns the full four-digit expiration year, or 0 when the
// date is malformed.
func (r AddBankCardRequest) ExpirationYear() int {
	_, year, err := parseExpiration(r.ExpirationDate)
	if err != nil {
		return 0
	}
	return year
}

func parseExpiration(value string) (month, year int, err error) {
	m := expirationDatePattern.FindStringSubmatch(value)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid expiration date format, use MM/YY")
	}
	month, _ = strconv.Atoi(m[1])
	short, _ := strconv.Atoi(m[2])
	return month, 2000 + short, nil
}

// Payload converts the request into the broker wire form with canonical
// string encoding for the UUID field.
func (r AddBankCardRequest) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":                r.UserID.String(),
		"card_holder_first_name": r.CardHolderFirstName,
		"card_holder_last_name":  r.CardHolderLastName,
		"card_number":            r.CardNumber,
		"expiration_date":        r.ExpirationDate,
		"cvv_code":               r.CVVCode,
	}
}

// AddBankCardResponse is the stored card as reported by the Payment Service.
type AddBankCardResponse struct {
	ID                  uuid.UUID       `json:"id"`
	UserID              uuid.UUID       `json:"user_id"`
	IsActive            bool            `json:"is_active"`
	CardHolderFirstName string          `json:"card_holder_first_name"`
	CardHolderLastName  string          `json:"card_holder_last_name"`
	CardLastFour        string          `json:"card_last_four"`
	ExpirationDate      string          `json:"expiration_date"`
	PaymentToken        string          `json:"payment_token"`
	Balance             decimal.Decimal `json:"balance"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// AddBankAccountRequest registers a company bank account.
type AddBankAccountRequest struct {
	AccountHolderName string    `json:"account_holder_name"`
	AccountNumber     string    `json:"account_number"`
	CompanyID         uuid.UUID `json:"company_id"`
}

// Validate rejects blank holder name or account number.
func (r AddBankAccountRequest) Validate() error {
	if strings.TrimSpace(r.AccountHolderName) == "" {
		return fmt.Errorf("account_holder_name cannot be empty")
	}
	if strings.TrimSpace(r.AccountNumber) == "" {
		return fmt.Errorf("account_number cannot be empty")
	}
	return nil
}

// Payload converts the request into the broker wire form.
func (r AddBankAccountRequest) Payload() map[string]interface{} {
	return map[string]interface{}{
		"account_holder_name": r.AccountHolderName,
		"account_number":      r.AccountNumber,
		"company_id":          r.CompanyID.String(),
	}
}

// AddBankAccountResponse is the stored account as reported by the Payment
// Service.
type AddBankAccountResponse struct {
	ID                uuid.UUID       `json:"id"`
	CompanyID         uuid.UUID       `json:"company_id"`
	AccountHolderName string          `json:"account_holder_name"`
	AccountNumber     string          `json:"account_number"`
	BankName          string          `json:"bank_name,omitempty"`
	BankBIC           string          `json:"bank_bic,omitempty"`
	IsActive          bool            `json:"is_active"`
	Balance           decimal.Decimal `json:"balance"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// P2BTransferRequest moves funds from a user's bank card to a company bank
// account.
type P2BTransferRequest struct {
	UserID    uuid.UUID       `json:"user_id"`
	CompanyID uuid.UUID       `json:"company_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

// Validate enforces a positive amount and a 3-letter currency code.
func (r P2BTransferRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return fmt.Errorf("transferred amount must be greater than zero")
	}
	if len(r.Currency) != 3 {
		return fmt.Errorf("currency must be a 3-letter ISO code")
	}
	return nil
}

// Payload converts the request into the broker wire form with canonical
// string encoding for UUID and decimal fields.
func (r P2BTransferRequest) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":    r.UserID.String(),
		"company_id": r.CompanyID.String(),
		"amount":     r.Amount.String(),
		"currency":   r.Currency,
	}
}

// P2BTransferResponse reports a settled P2B transaction.
type P2BTransferResponse struct {
	TransactionID             uuid.UUID       `json:"transaction_id"`
	TransferredAmount         decimal.Decimal `json:"transferred_amount"`
	Currency                  string          `json:"currency"`
	UpdatedBankCardBalance    decimal.Decimal `json:"updated_bank_card_balance"`
	UpdatedBankAccountBalance decimal.Decimal `json:"updated_bank_account_balance"`
	TransactionFee            decimal.Decimal `json:"transaction_fee"`
	Timestamp                 time.Time       `json:"timestamp"`
}
