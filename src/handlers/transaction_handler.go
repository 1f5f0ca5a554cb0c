package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/username/cgtfolio/backend/src/config"
	"github.com/username/cgtfolio/backend/src/logger"
	"github.com/username/cgtfolio/backend/src/models"
	"github.com/username/cgtfolio/backend/src/services"
	"github.com/username/cgtfolio/backend/src/utils"
)

type TransactionHandler struct {
	calculationService services.CalculationService
}

func NewTransactionHandler(calculationService services.CalculationService) *TransactionHandler {
	return &TransactionHandler{calculationService: calculationService}
}

// HandleUploadTransactions accepts a JSON batch of already currency-resolved
// transaction records. Broker file parsing and FX resolution happen
// upstream; this endpoint only takes the normalized form.
func (h *TransactionHandler) HandleUploadTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.Cfg.MaxUploadSizeBytes)

	var records []models.RawTransaction
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		logger.L.Warn("Transaction upload decode failed", "userID", userID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Invalid transaction batch: %v", err), http.StatusBadRequest)
		return
	}

	inserted, err := h.calculationService.SaveTransactions(userID, records)
	if err != nil {
		logger.L.Error("Transaction upload failed", "userID", userID, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	utils.SendJSON(w, map[string]interface{}{"inserted": inserted}, http.StatusCreated)
}

func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	records, err := h.calculationService.GetTransactions(userID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error fetching transactions: %v", err), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []models.RawTransaction{}
	}
	utils.SendJSON(w, records, http.StatusOK)
}

func (h *TransactionHandler) HandleDeleteAllTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	if err := h.calculationService.DeleteAllTransactions(userID); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error deleting transactions: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]string{"message": "all transactions deleted"}, http.StatusOK)
}
