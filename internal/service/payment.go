package service

import (
	"context"

	"github.com/autozen/api-gateway/internal/domain/payment"
	"github.com/autozen/api-gateway/internal/errors"
	"github.com/autozen/api-gateway/internal/logging"
)

// PaymentBackend is the broker-facing surface of the Payment Service.
type PaymentBackend interface {
	AddBankCard(ctx context.Context, req payment.AddBankCardRequest, accessToken string) (*payment.AddBankCardResponse, error)
	AddBankAccount(ctx context.Context, req payment.AddBankAccountRequest, accessToken string) (*payment.AddBankAccountResponse, error)
	P2BTransfer(ctx context.Context, req payment.P2BTransferRequest, accessToken, paymentToken string) (*payment.P2BTransferResponse, error)
}

// PaymentService fronts the Payment Service backend. DTO validation happens
// here; token and role checks happen in the adapter before any publish.
type PaymentService struct {
	backend PaymentBackend
	logger  *logging.Logger
}

// NewPaymentService creates the payment application service.
func NewPaymentService(backend PaymentBackend, logger *logging.Logger) *PaymentService {
	return &PaymentService{backend: backend, logger: logger}
}

// AddBankCard registers a bank card for a user.
func (s *PaymentService) AddBankCard(ctx context.Context, req payment.AddBankCardRequest, accessToken string) (*payment.AddBankCardResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Validation(err.Error())
	}
	return s.backend.AddBankCard(ctx, req, accessToken)
}

// AddBankAccount registers a company bank account.
func (s *PaymentService) AddBankAccount(ctx context.Context, req payment.AddBankAccountRequest, accessToken string) (*payment.AddBankAccountResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Validation(err.Error())
	}
	return s.backend.AddBankAccount(ctx, req, accessToken)
}

// P2BTransfer moves funds from a user's card to a company account.
func (s *PaymentService) P2BTransfer(ctx context.Context, req payment.P2BTransferRequest, accessToken, paymentToken string) (*payment.P2BTransferResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Validation(err.Error())
	}

	transfer, err := s.backend.P2BTransfer(ctx, req, accessToken, paymentToken)
	if err != nil {
		return nil, err
	}
	s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"transaction_id": transfer.TransactionID.String(),
		"amount":         transfer.TransferredAmount.String(),
		"currency":       transfer.Currency,
	}).Info("p2b transfer settled")
	return transfer, nil
}
