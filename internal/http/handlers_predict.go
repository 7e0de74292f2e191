package http

import (
	"fmt"
	"net/http"
)

func (s *Server) handlePredictExpenses(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Predictions.PredictExpenses(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if result.Insufficient {
		writeOutcome(w, "Insufficient data for prediction. At least 3 expense transactions are required.", payload{
			"transaction_count": result.TransactionCount,
		})
		return
	}

	writeSuccess(w, payload{
		"prediction": payload{
			"next_month_expense": round2(result.Value),
			"confidence":         round2(result.Confidence),
			"months_analyzed":    result.MonthsUsed,
			"transaction_count":  result.TransactionCount,
		},
	})
}

func (s *Server) handlePredictSavings(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Predictions.PredictSavings(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if result.Insufficient {
		writeOutcome(w, "No transaction data available for a savings prediction.", nil)
		return
	}

	writeSuccess(w, payload{
		"prediction": payload{
			"next_month_savings": round2(result.Value),
			"confidence":         round2(result.Confidence),
		},
	})
}

func (s *Server) handlePredictBills(w http.ResponseWriter, r *http.Request) {
	estimate, err := s.svc.Predictions.EstimateBills(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if estimate.Insufficient {
		writeOutcome(w, "No bill history found. Record some Bills or Rent transactions first.", nil)
		return
	}

	breakdown := make(payload, len(estimate.Breakdown))
	for category, amount := range estimate.Breakdown {
		breakdown[category] = round2(amount)
	}
	writeSuccess(w, payload{
		"estimated_total": round2(estimate.Total),
		"breakdown":       breakdown,
	})
}

func (s *Server) handleDetectAnomalies(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Predictions.DetectAnomalies(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if report.Insufficient {
		writeOutcome(w, fmt.Sprintf("Insufficient data for anomaly detection. At least 10 expense transactions are required, found %d.", report.TransactionCount), payload{
			"transaction_count": report.TransactionCount,
		})
		return
	}

	anomalies := make([]payload, 0, len(report.Anomalies))
	for _, a := range report.Anomalies {
		anomalies = append(anomalies, payload{
			"id":             a.ID,
			"transaction_id": a.TransactionID,
			"date":           a.Date.String(),
			"category":       a.Category,
			"merchant":       a.Merchant,
			"amount":         round2(a.Amount),
			"category_mean":  round2(a.CategoryMean),
			"threshold":      round2(a.Threshold),
			"reason":         a.Reason,
		})
	}
	writeSuccess(w, payload{
		"anomalies": anomalies,
		"count":     len(anomalies),
	})
}

func (s *Server) handleRecommendBudget(w http.ResponseWriter, r *http.Request) {
	recs, err := s.svc.Predictions.RecommendBudget(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if recs == nil {
		writeOutcome(w, "No expense data available for budget recommendations.", nil)
		return
	}

	out := make([]payload, 0, len(recs))
	for _, rec := range recs {
		out = append(out, payload{
			"category":           rec.Category,
			"current_pct":        rec.CurrentPct,
			"recommended_pct":    rec.RecommendedPct,
			"recommended_amount": rec.RecommendedAmount,
			"status":             rec.Status,
		})
	}
	writeSuccess(w, payload{"recommendations": out})
}
