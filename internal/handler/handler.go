package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Dan9191/payplan-service/internal/models"
	"github.com/Dan9191/payplan-service/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "username, email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.svc.Register(req.Username, req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GeneratePlan runs the payment plan pipeline for the caller's items.
func (h *Handler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req models.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		http.Error(w, "at least one installment is required", http.StatusBadRequest)
		return
	}

	resp, err := h.svc.GeneratePlan(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// SavePaydays stores the caller's payday dates.
func (h *Handler) SavePaydays(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paydays []string `json:"paydays"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Paydays) == 0 {
		http.Error(w, "paydays list is required", http.StatusBadRequest)
		return
	}

	if err := h.svc.SavePaydays(r.Context(), req.Paydays); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"saved": len(req.Paydays)})
}

// GetPaydays returns the caller's stored payday dates.
func (h *Handler) GetPaydays(w http.ResponseWriter, r *http.Request) {
	paydays, err := h.svc.GetPaydays(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]string{"paydays": paydays})
}

// Holidays returns the computed US federal holiday set for a year.
func (h *Handler) Holidays(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil || year < 1900 || year > 2200 {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"year":     year,
		"holidays": h.svc.HolidaysForYear(year),
	})
}

// writeError maps caller-input failures to 400 and everything else to a
// generic 500, never leaking internal details.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ce *service.ClientError
	if errors.As(err, &ce) {
		http.Error(w, ce.Error(), http.StatusBadRequest)
		return
	}
	h.log.Errorf("Request failed: %v", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}
