package adapter

import (
	"context"

	"github.com/autozen/api-gateway/internal/domain/payment"
	"github.com/autozen/api-gateway/internal/errors"
	"github.com/autozen/api-gateway/internal/logging"
	"github.com/autozen/api-gateway/internal/token"
)

// Operation tags the Payment Service dispatches on.
const (
	opAddBankCard    = "add_bank_card"
	opAddBankAccount = "add_bank_account"
	opP2BTransfer    = "p2b_transfer"
)

// PaymentAdapter bridges payment operations to the Payment Service over the
// broker. Authorized operations validate the caller's access token locally
// before any publish, so an unauthorized request never reaches the backend.
type PaymentAdapter struct {
	rpc        rpcCaller
	validator  tokenValidator
	routingKey string
	logger     *logging.Logger
}

// NewPaymentAdapter creates the Payment Service adapter. routingKey is the
// backend's operation-family key (PAYMENT.all).
func NewPaymentAdapter(rpc rpcCaller, validator tokenValidator, routingKey string, logger *logging.Logger) *PaymentAdapter {
	return &PaymentAdapter{rpc: rpc, validator: validator, routingKey: routingKey, logger: logger}
}

// AddBankCard registers a bank card. Requires an access token with the
// css_admin role.
func (p *PaymentAdapter) AddBankCard(ctx context.Context, req payment.AddBankCardRequest, accessToken string) (*payment.AddBankCardResponse, error) {
	if _, err := p.validator.Validate(accessToken, token.TypeAccess, token.RoleCSSAdmin); err != nil {
		return nil, err
	}

	resp, err := p.rpc.Call(ctx, opAddBankCard, p.routingKey, req.Payload())
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, mapBrokerError(p.logger, opAddBankCard, resp)
	}

	card := &payment.AddBankCardResponse{}
	if err := resp.DecodeBody(card); err != nil {
		return nil, errors.Internal("Malformed bank card response from Payment Service.", err)
	}
	return card, nil
}

// AddBankAccount registers a company bank account. Requires an access token
// with the css_admin role.
func (p *PaymentAdapter) AddBankAccount(ctx context.Context, req payment.AddBankAccountRequest, accessToken string) (*payment.AddBankAccountResponse, error) {
	if _, err := p.validator.Validate(accessToken, token.TypeAccess, token.RoleCSSAdmin); err != nil {
		return nil, err
	}

	resp, err := p.rpc.Call(ctx, opAddBankAccount, p.routingKey, req.Payload())
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, mapBrokerError(p.logger, opAddBankAccount, resp)
	}

	account := &payment.AddBankAccountResponse{}
	if err := resp.DecodeBody(account); err != nil {
		return nil, errors.Internal("Malformed bank account response from Payment Service.", err)
	}
	return account, nil
}

// P2BTransfer moves funds from a user's card to a company account. Requires
// an access token with the user role plus the card's payment token.
func (p *PaymentAdapter) P2BTransfer(ctx context.Context, req payment.P2BTransferRequest, accessToken, paymentToken string) (*payment.P2BTransferResponse, error) {
	if _, err := p.validator.Validate(accessToken, token.TypeAccess, token.RoleUser); err != nil {
		return nil, err
	}

	payload := req.Payload()
	payload["payment_token"] = paymentToken

	resp, err := p.rpc.Call(ctx, opP2BTransfer, p.routingKey, payload)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, mapBrokerError(p.logger, opP2BTransfer, resp)
	}

	transfer := &payment.P2BTransferResponse{}
	if err := resp.DecodeBody(transfer); err != nil {
		return nil, errors.Internal("Malformed transfer response from Payment Service.", err)
	}
	return transfer, nil
}
