package adapter

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autozen/api-gateway/internal/broker"
	"github.com/autozen/api-gateway/internal/domain/payment"
	"github.com/autozen/api-gateway/internal/errors"
	"github.com/autozen/api-gateway/internal/token"
)

func okValidator() *fakeValidator {
	return &fakeValidator{payload: &token.Payload{
		UserID:    "u-1",
		TokenType: token.TypeAccess,
		Roles:     []token.Role{token.RoleCSSAdmin, token.RoleUser},
	}}
}

func TestPaymentAdapter_AddBankCard_Success(t *testing.T) {
	cardID := uuid.New()
	rpc := &fakeRPC{resp: successResponse(t, 201, map[string]interface{}{
		"id":             cardID.String(),
		"card_last_four": "1111",
		"payment_token":  "pt-abc",
	})}
	v := okValidator()
	p := NewPaymentAdapter(rpc, v, "PAYMENT.all", testLogger())

	card, err := p.AddBankCard(context.Background(), payment.AddBankCardRequest{
		UserID:         uuid.New(),
		CardNumber:     "4111111111111111",
		ExpirationDate: "03/31",
		CVVCode:        "123",
	}, "token")
	if err != nil {
		t.Fatalf("AddBankCard() error = %v", err)
	}
	if card.ID != cardID {
		t.Errorf("ID = %s, want %s", card.ID, cardID)
	}
	if card.PaymentToken != "pt-abc" {
		t.Errorf("PaymentToken = %q, want pt-abc", card.PaymentToken)
	}

	if v.lastType != token.TypeAccess {
		t.Errorf("validated type = %q, want access", v.lastType)
	}
	if len(v.lastRoles) != 1 || v.lastRoles[0] != token.RoleCSSAdmin {
		t.Errorf("required roles = %v, want [css_admin]", v.lastRoles)
	}
	if rpc.lastOp != "add_bank_card" {
		t.Errorf("operation = %q, want add_bank_card", rpc.lastOp)
	}
	if rpc.lastKey != "PAYMENT.all" {
		t.Errorf("routing key = %q, want PAYMENT.all", rpc.lastKey)
	}
}

func TestPaymentAdapter_AddBankCard_DeniedBeforePublish(t *testing.T) {
	rpc := &fakeRPC{}
	v := &fakeValidator{err: errors.AccessDenied("")}
	p := NewPaymentAdapter(rpc, v, "PAYMENT.all", testLogger())

	_, err := p.AddBankCard(context.Background(), payment.AddBankCardRequest{}, "user-token")
	if !stderrors.Is(err, errors.AccessDenied("")) {
		t.Fatalf("AddBankCard() error = %v, want AccessDenied", err)
	}
	if rpc.calls != 0 {
		t.Errorf("rpc calls = %d, want 0 for a rejected token", rpc.calls)
	}
}

func TestPaymentAdapter_AddBankAccount_RequiresCSSAdmin(t *testing.T) {
	accountID := uuid.New()
	rpc := &fakeRPC{resp: successResponse(t, 201, map[string]interface{}{
		"id": accountID.String(),
	})}
	v := okValidator()
	p := NewPaymentAdapter(rpc, v, "PAYMENT.all", testLogger())

	account, err := p.AddBankAccount(context.Background(), payment.AddBankAccountRequest{
		AccountHolderName: "ACME LLP",
		AccountNumber:     "KZ1234",
		CompanyID:         uuid.New(),
	}, "token")
	if err != nil {
		t.Fatalf("AddBankAccount() error = %v", err)
	}
	if account.ID != accountID {
		t.Errorf("ID = %s, want %s", account.ID, accountID)
	}
	if len(v.lastRoles) != 1 || v.lastRoles[0] != token.RoleCSSAdmin {
		t.Errorf("required roles = %v, want [css_admin]", v.lastRoles)
	}
	if rpc.lastOp != "add_bank_account" {
		t.Errorf("operation = %q, want add_bank_account", rpc.lastOp)
	}
}

func TestPaymentAdapter_P2BTransfer_Success(t *testing.T) {
	rpc := &fakeRPC{resp: successResponse(t, 200, map[string]interface{}{
		"transaction_id":     uuid.New().String(),
		"transferred_amount": "150.25",
		"currency":           "KZT",
	})}
	v := okValidator()
	p := NewPaymentAdapter(rpc, v, "PAYMENT.all", testLogger())

	transfer, err := p.P2BTransfer(context.Background(), payment.P2BTransferRequest{
		UserID:    uuid.New(),
		CompanyID: uuid.New(),
		Amount:    decimal.RequireFromString("150.25"),
		Currency:  "KZT",
	}, "access-token", "pay-token")
	if err != nil {
		t.Fatalf("P2BTransfer() error = %v", err)
	}
	if transfer.TransferredAmount.String() != "150.25" {
		t.Errorf("TransferredAmount = %s, want 150.25", transfer.TransferredAmount)
	}

	if len(v.lastRoles) != 1 || v.lastRoles[0] != token.RoleUser {
		t.Errorf("required roles = %v, want [user]", v.lastRoles)
	}
	if rpc.lastPayload["payment_token"] != "pay-token" {
		t.Errorf("payment_token = %v, want pay-token", rpc.lastPayload["payment_token"])
	}
	if rpc.lastPayload["amount"] != "150.25" {
		t.Errorf("amount = %v, want canonical string", rpc.lastPayload["amount"])
	}
	if rpc.lastOp != "p2b_transfer" {
		t.Errorf("operation = %q, want p2b_transfer", rpc.lastOp)
	}
}

func TestPaymentAdapter_P2BTransfer_BackendDenied(t *testing.T) {
	rpc := &fakeRPC{resp: &broker.Response{StatusCode: 403, Success: false, ErrorMessage: "payment token mismatch"}}
	v := okValidator()
	p := NewPaymentAdapter(rpc, v, "PAYMENT.all", testLogger())

	_, err := p.P2BTransfer(context.Background(), payment.P2BTransferRequest{}, "access-token", "wrong")
	if !stderrors.Is(err, errors.AccessDenied("")) {
		t.Fatalf("P2BTransfer() error = %v, want AccessDenied", err)
	}
	if se := errors.GetServiceError(err); se.Message != "payment token mismatch" {
		t.Errorf("Message = %q, want backend's error message", se.Message)
	}
}

func TestPaymentAdapter_BrokerUnavailable(t *testing.T) {
	rpc := &fakeRPC{err: errors.SourceUnavailable("")}
	v := okValidator()
	p := NewPaymentAdapter(rpc, v, "PAYMENT.all", testLogger())

	_, err := p.AddBankAccount(context.Background(), payment.AddBankAccountRequest{}, "token")
	if !stderrors.Is(err, errors.SourceUnavailable("")) {
		t.Fatalf("AddBankAccount() error = %v, want SourceUnavailable propagated", err)
	}
}

func TestPaymentAdapter_NotFoundPassthrough(t *testing.T) {
	rpc := &fakeRPC{resp: &broker.Response{StatusCode: 404, Success: false, ErrorMessage: "company not found"}}
	v := okValidator()
	p := NewPaymentAdapter(rpc, v, "PAYMENT.all", testLogger())

	_, err := p.P2BTransfer(context.Background(), payment.P2BTransferRequest{}, "access-token", "pay-token")
	if !stderrors.Is(err, errors.NotFound("")) {
		t.Fatalf("P2BTransfer() error = %v, want NotFound", err)
	}
}
