package http

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/core"
)

type createTransactionRequest struct {
	Date     string      `json:"date"`
	Type     string      `json:"type"`
	Amount   json.Number `json:"amount"`
	Category string      `json:"category"`
	Merchant string      `json:"merchant"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeFailure(w, http.StatusUnprocessableEntity, "Invalid date, expected YYYY-MM-DD")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeFailure(w, http.StatusUnprocessableEntity, "Invalid amount")
		return
	}

	tx := core.Transaction{
		UserID:   userID(r),
		Date:     date,
		Type:     core.TransactionType(req.Type),
		Amount:   amount,
		Category: req.Category,
		Merchant: req.Merchant,
	}

	saved, err := s.svc.Transactions.Create(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// New data invalidates the cached dashboard.
	s.svc.Dashboard.Invalidate(saved.UserID)

	writeSuccess(w, payload{
		"message": "Transaction recorded",
		"transaction": payload{
			"id":       saved.ID,
			"date":     saved.Date.String(),
			"type":     string(saved.Type),
			"amount":   round2(saved.Amount.Units()),
			"category": saved.Category,
			"merchant": saved.Merchant,
		},
	})
}
