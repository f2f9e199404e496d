package reconcile

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
)

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

// handleListExpenses returns all reconciled expenses
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.ListExpenses()
	if err != nil {
		slog.Error("Error listing expenses", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Ensure we always return an array, not nil
	if records == nil {
		records = []*Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// handleGetExpense returns a single reconciled expense
func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Expense ID must be numeric")
		return
	}

	record, err := s.service.GetExpense(id)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Expense not found")
			return
		}
		slog.Error("Error getting expense", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleSync triggers a sync pass
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Sync(r.Context())
	if err != nil {
		slog.Error("Sync failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleUpdateBalance pushes the Splitwise balance to the ledger asset
func (s *Server) handleUpdateBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.service.UpdateBalance(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoBalanceAsset) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("Balance update failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"balance": balance.StringFixed(2)})
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
