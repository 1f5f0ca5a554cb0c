package handlers

import (
	"fmt"
	"net/http"

	"github.com/username/cgtfolio/backend/src/services"
	"github.com/username/cgtfolio/backend/src/utils"
)

type ReportHandler struct {
	calculationService services.CalculationService
}

func NewReportHandler(calculationService services.CalculationService) *ReportHandler {
	return &ReportHandler{calculationService: calculationService}
}

// HandleGetReport returns the full CGT report: tax year summaries, pool
// snapshots, all disposals, diagnostics, and global totals.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	report, err := h.calculationService.GetReport(userID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error generating report: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, report, http.StatusOK)
}

// HandleGetDisposals returns only the disposal list with its match details.
func (h *ReportHandler) HandleGetDisposals(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	report, err := h.calculationService.GetReport(userID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error generating report: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, report.AllDisposals, http.StatusOK)
}

// HandleGetPools returns the end-of-data Section 104 holdings.
func (h *ReportHandler) HandleGetPools(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	report, err := h.calculationService.GetReport(userID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error generating report: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, report.Section104Pools, http.StatusOK)
}
