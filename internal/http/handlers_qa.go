package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
)

type askRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.svc.QA.Ask(r.Context(), userID(r), req.Question, core.DateOf(time.Now()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, payload{
		"intent":      result.Intent,
		"response":    result.Answer.Response,
		"insights":    result.Answer.Insights,
		"suggestions": result.Answer.Suggestions,
	})
}

func (s *Server) handleQAHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.QA.History(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	history := make([]payload, 0, len(records))
	for _, rec := range records {
		history = append(history, payload{
			"id":         rec.ID,
			"question":   rec.Question,
			"answer":     rec.Answer,
			"created_at": rec.CreatedAt.Format(time.RFC3339),
		})
	}
	writeSuccess(w, payload{"history": history})
}
