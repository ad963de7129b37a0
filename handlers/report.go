package handlers

import (
	"net/http"
)

func (h *TransactionHandler) GetCategorySummary(w http.ResponseWriter, r *http.Request) {
	totals, err := h.ledger.SummarizeByCategory(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, totals)
}
