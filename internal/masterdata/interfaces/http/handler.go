package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	mdapp "carsplay/internal/masterdata/application"
	masterdata "carsplay/internal/masterdata/domain"
)

// Handler serves station and rate tier administration.
type Handler struct {
	service *mdapp.StationService
	newID   func() string
}

// NewHandler constructs a Handler.
func NewHandler(service *mdapp.StationService) (*Handler, error) {
	if service == nil {
		return nil, errors.New("masterdata handler: nil service")
	}
	return &Handler{service: service, newID: uuid.NewString}, nil
}

// ServeHTTP routes station and rate requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/stations" || strings.HasPrefix(r.URL.Path, "/api/stations/"):
		h.routeStations(w, r)
	case r.URL.Path == "/api/time/rates" || strings.HasPrefix(r.URL.Path, "/api/time/rates/"):
		h.routeRates(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) routeStations(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/stations")
	rest = strings.Trim(rest, "/")

	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.handleListStations(w, r)
	case rest == "" && r.Method == http.MethodPost:
		h.handleSaveStation(w, r, "")
	case rest != "" && r.Method == http.MethodPut:
		h.handleSaveStation(w, r, rest)
	case rest != "" && r.Method == http.MethodDelete:
		h.handleDeleteStation(w, r, rest)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) routeRates(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/time/rates")
	rest = strings.Trim(rest, "/")

	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.handleListRates(w, r)
	case rest == "" && r.Method == http.MethodPost:
		h.handleSaveRate(w, r, "")
	case rest != "" && r.Method == http.MethodPut:
		h.handleSaveRate(w, r, rest)
	case rest != "" && r.Method == http.MethodDelete:
		h.handleDeleteRate(w, r, rest)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type stationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Number    int       `json:"number"`
	Image     string    `json:"image,omitempty"`
	Price     float64   `json:"price"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toStationResponse(st masterdata.Station) stationResponse {
	return stationResponse{
		ID:        st.ID,
		Name:      st.Name,
		Number:    st.Number,
		Image:     st.Image,
		Price:     st.Price,
		Active:    st.Active,
		CreatedAt: st.CreatedAt,
		UpdatedAt: st.UpdatedAt,
	}
}

func (h *Handler) handleListStations(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	stations, err := h.service.ListStations(r.Context(), activeOnly)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]stationResponse, 0, len(stations))
	for _, st := range stations {
		out = append(out, toStationResponse(st))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *Handler) handleSaveStation(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Name   string  `json:"name"`
		Number int     `json:"number"`
		Image  string  `json:"image"`
		Price  float64 `json:"price"`
		Active *bool   `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	station := masterdata.Station{
		ID:     id,
		Name:   strings.TrimSpace(req.Name),
		Number: req.Number,
		Image:  req.Image,
		Price:  req.Price,
		Active: true,
	}
	if req.Active != nil {
		station.Active = *req.Active
	}
	status := http.StatusOK
	if station.ID == "" {
		station.ID = h.newID()
		status = http.StatusCreated
	}
	if err := h.service.UpsertStation(r.Context(), &station); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(toStationResponse(station))
}

func (h *Handler) handleDeleteStation(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.DeleteStation(r.Context(), id); err != nil {
		if errors.Is(err, masterdata.ErrStationNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type rateResponse struct {
	ID      string  `json:"id"`
	Minutes int     `json:"minutes"`
	Amount  float64 `json:"amount"`
}

func (h *Handler) handleListRates(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.service.Tiers(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]rateResponse, 0, len(tiers))
	for _, tier := range tiers {
		out = append(out, rateResponse{ID: tier.ID, Minutes: tier.Minutes, Amount: tier.Amount})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *Handler) handleSaveRate(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Minutes int     `json:"minutes"`
		Amount  float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	tier := masterdata.RateTier{ID: id, Minutes: req.Minutes, Amount: req.Amount}
	status := http.StatusOK
	if tier.ID == "" {
		tier.ID = h.newID()
		status = http.StatusCreated
	}
	if err := h.service.UpsertRate(r.Context(), &tier); err != nil {
		if errors.Is(err, masterdata.ErrDuplicateMinutes) {
			http.Error(w, "a tier with these minutes already exists", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rateResponse{ID: tier.ID, Minutes: tier.Minutes, Amount: tier.Amount})
}

func (h *Handler) handleDeleteRate(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.DeleteRate(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
