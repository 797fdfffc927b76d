package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/opencampus/opencampus-sis/internal/gradebook"
)

// PUT /subjects/{subjectID}/rubric
func UpsertRubricHandler(store gradebook.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			WW int `json:"ww_weight"`
			PT int `json:"pt_weight"`
			QA int `json:"qa_weight"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		rubric := gradebook.Rubric{
			SubjectID: chi.URLParam(r, "subjectID"),
			WW:        req.WW,
			PT:        req.PT,
			QA:        req.QA,
		}
		if err := store.UpsertRubric(r.Context(), rubric); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rubric)
	}
}

// GET /subjects/{subjectID}/rubric
func GetRubricHandler(store gradebook.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rubric, err := store.GetRubric(r.Context(), chi.URLParam(r, "subjectID"))
		if errors.Is(err, gradebook.ErrRubricNotFound) {
			http.Error(w, "rubric not found", http.StatusNotFound)
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rubric)
	}
}

// POST /subjects/{subjectID}/activities
func CreateActivityHandler(store gradebook.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SectionID string `json:"section_id"`
			Quarter   int    `json:"quarter"`
			Category  string `json:"category"`
			Title     string `json:"title"`
			MaxScore  string `json:"max_score"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		cat := gradebook.Category(req.Category)
		if !cat.Valid() {
			http.Error(w, "category must be WW, PT, or QA", http.StatusBadRequest)
			return
		}
		if req.Quarter < 1 || req.Quarter > 4 {
			http.Error(w, "quarter must be 1-4", http.StatusBadRequest)
			return
		}
		maxScore, err := gradebook.ParseScore(req.MaxScore)
		if err != nil || maxScore.Sign() <= 0 {
			http.Error(w, "max_score must be a positive number", http.StatusBadRequest)
			return
		}
		a, err := store.CreateActivity(r.Context(), gradebook.Activity{
			SubjectID: chi.URLParam(r, "subjectID"),
			SectionID: req.SectionID,
			Quarter:   req.Quarter,
			Category:  cat,
			Title:     req.Title,
			MaxScore:  maxScore,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

// GET /subjects/{subjectID}/activities?section_id=&quarter=
func ListActivitiesHandler(store gradebook.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		quarter, _ := strconv.Atoi(q.Get("quarter"))
		acts, err := store.ListActivities(r.Context(), chi.URLParam(r, "subjectID"), q.Get("section_id"), quarter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, acts)
	}
}

// PUT /activities/{activityID}/scores/{studentID}
// Body: {"value": "45"} or {"value": null} to clear.
func UpsertScoreHandler(store gradebook.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Value *string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		activityID := chi.URLParam(r, "activityID")
		studentID := chi.URLParam(r, "studentID")
		if req.Value == nil {
			if err := store.UpsertScore(r.Context(), activityID, studentID, nil); err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		v, err := gradebook.ParseScore(*req.Value)
		if err != nil || v.IsNegative() {
			http.Error(w, "value must be a non-negative number", http.StatusBadRequest)
			return
		}
		if err := store.UpsertScore(r.Context(), activityID, studentID, &v); err != nil {
			if errors.Is(err, gradebook.ErrActivityNotFound) {
				http.Error(w, "activity not found", http.StatusNotFound)
				return
			}
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /subjects/{subjectID}/grades/{studentID}?quarter=1
// An incomplete grade is a normal outcome, not an error status.
func QuarterGradeHandler(store gradebook.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quarter, _ := strconv.Atoi(r.URL.Query().Get("quarter"))
		if quarter < 1 || quarter > 4 {
			http.Error(w, "quarter must be 1-4", http.StatusBadRequest)
			return
		}
		grade, err := gradebook.GradeFor(r.Context(), store, chi.URLParam(r, "subjectID"), chi.URLParam(r, "studentID"), quarter)
		if errors.Is(err, gradebook.ErrIncomplete) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "incomplete"})
			return
		}
		if errors.Is(err, gradebook.ErrRubricNotFound) {
			http.Error(w, "rubric not found", http.StatusNotFound)
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "complete", "grade": grade})
	}
}

// PUT /subjects/{subjectID}/conduct/{studentID}
func PutConductHandler(store gradebook.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Quarter int    `json:"quarter"`
			Rating  string `json:"rating"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		rating := gradebook.ConductRating(req.Rating)
		if !rating.Valid() {
			http.Error(w, "rating must be AO, SO, RO, or NO", http.StatusBadRequest)
			return
		}
		if req.Quarter < 1 || req.Quarter > 4 {
			http.Error(w, "quarter must be 1-4", http.StatusBadRequest)
			return
		}
		err := store.PutConductRating(r.Context(), chi.URLParam(r, "studentID"), chi.URLParam(r, "subjectID"), req.Quarter, rating)
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
