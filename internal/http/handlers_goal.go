package http

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type goalRequest struct {
	Name         string      `json:"name"`
	Type         string      `json:"type"`
	TargetAmount json.Number `json:"target_amount"`
	StartDate    string      `json:"start_date"`
	TargetDate   string      `json:"target_date"`
	Category     string      `json:"category"`
	Description  string      `json:"description"`
	Priority     string      `json:"priority"`
}

func (req goalRequest) toGoal(w http.ResponseWriter, userID int64) (core.Goal, bool) {
	target, err := parseAmount(req.TargetAmount)
	if err != nil {
		writeFailure(w, http.StatusUnprocessableEntity, "Invalid target amount")
		return core.Goal{}, false
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		writeFailure(w, http.StatusUnprocessableEntity, "Invalid start date, expected YYYY-MM-DD")
		return core.Goal{}, false
	}
	targetDate, err := parseDate(req.TargetDate)
	if err != nil {
		writeFailure(w, http.StatusUnprocessableEntity, "Invalid target date, expected YYYY-MM-DD")
		return core.Goal{}, false
	}

	return core.Goal{
		UserID:       userID,
		Name:         req.Name,
		Type:         req.Type,
		TargetAmount: target,
		StartDate:    startDate,
		TargetDate:   targetDate,
		Category:     req.Category,
		Description:  req.Description,
		Priority:     req.Priority,
	}, true
}

func goalJSON(summary services.GoalSummary) payload {
	g := summary.Goal
	p := summary.Projection

	body := payload{
		"id":               g.ID,
		"name":             g.Name,
		"type":             g.Type,
		"target_amount":    round2(g.TargetAmount.Units()),
		"current_amount":   round2(g.CurrentAmount.Units()),
		"start_date":       g.StartDate.String(),
		"target_date":      g.TargetDate.String(),
		"category":         g.Category,
		"description":      g.Description,
		"priority":         g.Priority,
		"status":           string(g.Status),
		"progress_pct":     round1(p.ProgressPct),
		"remaining":        round2(p.Remaining),
		"days_remaining":   p.DaysRemaining,
		"months_remaining": round1(p.MonthsRemaining),
		"monthly_required": round2(p.MonthlyRequired),
		"on_track":         p.OnTrack,
		"completed":        p.Completed,
		"suggestions":      p.Suggestions,
	}
	if p.ProjectedCompletion != nil {
		body["projected_completion"] = p.ProjectedCompletion.String()
	}
	return body
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	status := core.GoalStatus(r.URL.Query().Get("status"))
	summaries, err := s.svc.Goals.List(r.Context(), userID(r), status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	goals := make([]payload, 0, len(summaries))
	for _, summary := range summaries {
		goals = append(goals, goalJSON(summary))
	}
	writeSuccess(w, payload{"goals": goals})
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	g, ok := req.toGoal(w, userID(r))
	if !ok {
		return
	}

	saved, err := s.svc.Goals.Create(r.Context(), g)
	if err != nil {
		writeError(w, r, err)
		return
	}
	details, err := s.svc.Goals.Details(r.Context(), saved.ID, saved.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, payload{
		"message": "Goal created",
		"goal":    goalJSON(details.GoalSummary),
	})
}

func (s *Server) handleGoalDetails(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathID(w, r)
	if !ok {
		return
	}

	details, err := s.svc.Goals.Details(r.Context(), goalID, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	contributions := make([]payload, 0, len(details.Contributions))
	for _, c := range details.Contributions {
		contributions = append(contributions, payload{
			"id":     c.ID,
			"amount": round2(c.Amount.Units()),
			"date":   c.Date.String(),
			"notes":  c.Notes,
		})
	}
	writeSuccess(w, payload{
		"goal":          goalJSON(details.GoalSummary),
		"contributions": contributions,
	})
}

type contributeRequest struct {
	Amount json.Number `json:"amount"`
	Date   string      `json:"date"`
	Notes  string      `json:"notes"`
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req contributeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeFailure(w, http.StatusUnprocessableEntity, "Invalid amount")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeFailure(w, http.StatusUnprocessableEntity, "Invalid date, expected YYYY-MM-DD")
		return
	}

	summary, err := s.svc.Goals.Contribute(r.Context(), userID(r), core.GoalContribution{
		GoalID: goalID,
		Amount: amount,
		Date:   date,
		Notes:  req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, payload{
		"message":        "Contribution added",
		"goal":           goalJSON(summary),
		"new_milestones": summary.Projection.NewMilestones,
	})
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req goalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	g, ok := req.toGoal(w, userID(r))
	if !ok {
		return
	}
	g.ID = goalID

	updated, err := s.svc.Goals.Update(r.Context(), userID(r), g)
	if err != nil {
		writeError(w, r, err)
		return
	}
	details, err := s.svc.Goals.Details(r.Context(), updated.ID, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, payload{
		"message": "Goal updated",
		"goal":    goalJSON(details.GoalSummary),
	})
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Goals.Delete(r.Context(), goalID, userID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, payload{"message": "Goal deleted"})
}

func (s *Server) handleGoalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Goals.Stats(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, payload{
		"stats": payload{
			"total_goals":      stats.TotalGoals,
			"active_goals":     stats.ActiveGoals,
			"completed_goals":  stats.CompletedGoals,
			"total_target":     round2(stats.TotalTarget.Units()),
			"total_saved":      round2(stats.TotalSaved.Units()),
			"avg_progress_pct": round1(stats.AvgProgressPct),
		},
	})
}
