package httpapi

import (
	"net/http"

	"github.com/autozen/api-gateway/internal/domain/payment"
)

func (s *Server) handleAddBankCard(w http.ResponseWriter, r *http.Request) {
	var req payment.AddBankCardRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	card, err := s.payment.AddBankCard(r.Context(), req, bearerToken(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (s *Server) handleAddBankAccount(w http.ResponseWriter, r *http.Request) {
	var req payment.AddBankAccountRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	account, err := s.payment.AddBankAccount(r.Context(), req, bearerToken(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// p2bTransferBody is the transfer DTO plus the card's payment token, which
// travels in the body rather than a header.
type p2bTransferBody struct {
	payment.P2BTransferRequest
	PaymentToken string `json:"payment_token"`
}

func (s *Server) handleP2BTransfer(w http.ResponseWriter, r *http.Request) {
	var req p2bTransferBody
	if err := decodeJSON(r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	transfer, err := s.payment.P2BTransfer(r.Context(), req.P2BTransferRequest, bearerToken(r), req.PaymentToken)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transfer)
}
