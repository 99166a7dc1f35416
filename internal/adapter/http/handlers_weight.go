package adapthttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fitlog/internal/app"
	"fitlog/internal/domain"
)

func (s *Server) handleWeightHistory(w http.ResponseWriter, r *http.Request) {
	items, err := s.weight.History(r.Context(), s.userID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"today": s.today(), "items": items})
}

func (s *Server) handleWeightDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, app.NewEntryDefaults(s.today()))
}

// handleWeightSave creates on POST and replaces on PUT /weight/{id}.
func (s *Server) handleWeightSave(w http.ResponseWriter, r *http.Request) {
	var form app.WeightForm
	if err := parseJSON(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	form.ID = chi.URLParam(r, "id")

	entry, err := s.weight.Save(r.Context(), s.userID(r), form)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if r.Method == http.MethodPost {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{
		"entry":          entry,
		"classification": domain.ClassifyIMC(entry.IMC),
	})
}

func (s *Server) handleWeightDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.weight.Remove(r.Context(), s.userID(r), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleIMCPreview computes the IMC the form would store.
func (s *Server) handleIMCPreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	imc := domain.CalculateIMC(q.Get("weight"), q.Get("height"))
	writeJSON(w, http.StatusOK, map[string]any{
		"imc":            imc,
		"classification": domain.ClassifyIMC(imc),
	})
}

func (s *Server) handleFatGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := s.weight.FatGoal(r.Context(), s.userID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}
