package api

import (
	"net/http"
	"time"
)

const contextPromptMaxLength = 8000

// handleGetContext renders the home context at the requested tier:
// full (default), prose, compact, or summary.
func handleGetContext(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hc, err := deps.Builder.Build(r.Context(), time.Now().UTC())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to build context: %v", err)
			return
		}

		tier := r.URL.Query().Get("tier")
		var text string
		switch tier {
		case "", "full":
			tier = "full"
			text = hc.ToPrompt(contextPromptMaxLength)
		case "prose":
			text = hc.ToNaturalLanguage()
		case "compact":
			text, err = hc.ToCompactJSON()
			if err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to encode context: %v", err)
				return
			}
		case "summary":
			text = hc.SummaryLine()
		default:
			httpError(w, http.StatusBadRequest, "invalid_request_error", "unknown tier %q", tier)
			return
		}

		writeJSON(w, map[string]string{"tier": tier, "context": text})
	}
}

type summaryResponse struct {
	OverdueTasks       int `json:"overdue_tasks"`
	ExpiringWarranties int `json:"expiring_warranties"`
	LowStockItems      int `json:"low_stock_items"`
	StalledProjects    int `json:"stalled_projects"`
}

// handleGetSummary returns headline counts straight from SQL aggregates,
// skipping the full context build.
func handleGetSummary(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		today := now.Format("2006-01-02")
		horizon := now.AddDate(0, 0, 90).Format("2006-01-02")

		overdue, err := deps.Store.CountPendingOverdue(today)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to count overdue tasks: %v", err)
			return
		}
		expiring, err := deps.Store.CountExpiringWarranties(today, horizon)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to count warranties: %v", err)
			return
		}
		lowStock, err := deps.Store.CountLowStock()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to count low stock: %v", err)
			return
		}
		stalled, err := deps.Store.CountStalledProjects()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to count projects: %v", err)
			return
		}

		writeJSON(w, summaryResponse{
			OverdueTasks:       overdue,
			ExpiringWarranties: expiring,
			LowStockItems:      lowStock,
			StalledProjects:    stalled,
		})
	}
}
