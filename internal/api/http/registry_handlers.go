package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/opencampus/opencampus-sis/internal/money"
	"github.com/opencampus/opencampus-sis/internal/registry"
)

// POST /students
func CreateStudentHandler(store registry.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var st registry.Student
		if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if st.LRN == "" || st.FirstName == "" || st.LastName == "" {
			http.Error(w, "lrn, first_name and last_name required", http.StatusBadRequest)
			return
		}
		created, err := store.CreateStudent(r.Context(), st)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// GET /students?section_id=&limit=&offset=
func ListStudentsHandler(store registry.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))
		students, err := store.ListStudents(r.Context(), q.Get("section_id"), limit, offset)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, students)
	}
}

// GET /students/{studentID}
func GetStudentHandler(store registry.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := store.GetStudent(r.Context(), chi.URLParam(r, "studentID"))
		if errors.Is(err, registry.ErrNotFound) {
			http.Error(w, "student not found", http.StatusNotFound)
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// PUT /students/{studentID}
func UpdateStudentHandler(store registry.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var st registry.Student
		if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		st.ID = chi.URLParam(r, "studentID")
		if err := store.UpdateStudent(r.Context(), st); err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				http.Error(w, "student not found", http.StatusNotFound)
				return
			}
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// POST /sections
func CreateSectionHandler(store registry.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sec registry.Section
		if err := json.NewDecoder(r.Body).Decode(&sec); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if sec.Name == "" || sec.SchoolYear == "" {
			http.Error(w, "name and school_year required", http.StatusBadRequest)
			return
		}
		created, err := store.CreateSection(r.Context(), sec)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// GET /sections?school_year=
func ListSectionsHandler(store registry.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sections, err := store.ListSections(r.Context(), r.URL.Query().Get("school_year"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sections)
	}
}

// POST /subjects
func CreateSubjectHandler(store registry.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub registry.Subject
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if sub.Code == "" || sub.Name == "" {
			http.Error(w, "code and name required", http.StatusBadRequest)
			return
		}
		created, err := store.CreateSubject(r.Context(), sub)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// GET /subjects?grade_level=
func ListSubjectsHandler(store registry.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gradeLevel, _ := strconv.Atoi(r.URL.Query().Get("grade_level"))
		subjects, err := store.ListSubjects(r.Context(), gradeLevel)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, subjects)
	}
}

// POST /schedules
func CreateScheduleHandler(store registry.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sc registry.Schedule
		if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		created, err := store.CreateSchedule(r.Context(), sc)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// GET /sections/{sectionID}/schedules
func ListSchedulesHandler(store registry.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schedules, err := store.ListSchedules(r.Context(), chi.URLParam(r, "sectionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, schedules)
	}
}

// POST /fees
func CreateFeeHandler(store registry.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name       string `json:"name"`
			Amount     string `json:"amount"`
			SchoolYear string `json:"school_year"`
			GradeLevel int    `json:"grade_level"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		amount, err := money.Parse(req.Amount)
		if err != nil || amount.Sign() <= 0 || !money.InRange(amount) {
			http.Error(w, "amount must be a positive amount up to 999,999.99", http.StatusBadRequest)
			return
		}
		created, err := store.CreateFee(r.Context(), registry.Fee{
			Name:       req.Name,
			Amount:     amount,
			SchoolYear: req.SchoolYear,
			GradeLevel: req.GradeLevel,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// GET /fees?school_year=&active=1
func ListFeesHandler(store registry.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		fees, err := store.ListFees(r.Context(), q.Get("school_year"), q.Get("active") == "1")
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, fees)
	}
}

// POST /fees/{feeID}/active  {"active": false}
func SetFeeActiveHandler(store registry.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Active bool `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := store.SetFeeActive(r.Context(), chi.URLParam(r, "feeID"), req.Active); err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				http.Error(w, "fee not found", http.StatusNotFound)
				return
			}
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /discounts
func CreateDiscountHandler(store registry.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var d registry.Discount
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		created, err := store.CreateDiscount(r.Context(), d)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// GET /discounts?active=1
func ListDiscountsHandler(store registry.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		discounts, err := store.ListDiscounts(r.Context(), r.URL.Query().Get("active") == "1")
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, discounts)
	}
}

// POST /inventory
func CreateItemHandler(store registry.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name  string `json:"name"`
			Price string `json:"price"`
			Stock int    `json:"stock"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		price, err := money.Parse(req.Price)
		if err != nil || price.Sign() <= 0 || !money.InRange(price) {
			http.Error(w, "price must be a positive amount up to 999,999.99", http.StatusBadRequest)
			return
		}
		created, err := store.CreateItem(r.Context(), registry.InventoryItem{
			Name:  req.Name,
			Price: price,
			Stock: req.Stock,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// GET /inventory?active=1
func ListItemsHandler(store registry.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := store.ListItems(r.Context(), r.URL.Query().Get("active") == "1")
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// POST /inventory/{itemID}/stock  {"delta": -3}
func AdjustStockHandler(store registry.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Delta int `json:"delta"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := store.AdjustStock(r.Context(), chi.URLParam(r, "itemID"), req.Delta); err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				http.Error(w, "item not found", http.StatusNotFound)
				return
			}
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
