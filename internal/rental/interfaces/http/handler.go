package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"carsplay/internal/auth"
	rentalapp "carsplay/internal/rental/application"
	rental "carsplay/internal/rental/domain"
)

// Handler serves timer operations.
type Handler struct {
	engine *rentalapp.Engine
}

// NewHandler constructs a Handler.
func NewHandler(engine *rentalapp.Engine) (*Handler, error) {
	if engine == nil {
		return nil, errors.New("timer handler: nil engine")
	}
	return &Handler{engine: engine}, nil
}

// ServeHTTP routes timer requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/timers" {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleList(w, r)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/timers/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	stationID, action := parts[0], parts[1]

	if action == "state" && r.Method == http.MethodGet {
		h.handleState(w, r, stationID)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	operator := auth.SubjectFromContext(r.Context())
	var err error
	switch action {
	case "start":
		err = h.engine.Start(r.Context(), stationID)
	case "pause":
		err = h.engine.Pause(r.Context(), stationID)
	case "stop":
		err = h.engine.StopEarly(r.Context(), stationID, operator)
	case "finalize":
		err = h.engine.Finalize(r.Context(), stationID, operator)
	case "reset":
		err = h.engine.Reset(r.Context(), stationID)
	case "duration":
		var req struct {
			Minutes int `json:"minutes"`
		}
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		err = h.engine.ChangeDuration(r.Context(), stationID, req.Minutes)
	case "transfer":
		var req struct {
			Destination string `json:"destination"`
			Confirm     bool   `json:"confirm"`
		}
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		err = h.engine.Transfer(r.Context(), stationID, req.Destination, req.Confirm)
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		respondTimerError(w, err)
		return
	}
	h.handleState(w, r, stationID)
}

type sessionResponse struct {
	ID              string   `json:"id"`
	Start           int64    `json:"start"`
	End             *int64   `json:"end,omitempty"`
	Minutes         int      `json:"minutes"`
	DurationSeconds int      `json:"duration_seconds,omitempty"`
	Amount          *float64 `json:"amount,omitempty"`
	Settled         bool     `json:"settled"`
}

type stationResponse struct {
	StationID        string            `json:"station_id"`
	Status           string            `json:"status"`
	Running          bool              `json:"running"`
	ElapsedSeconds   int               `json:"elapsed_seconds"`
	RemainingSeconds int               `json:"remaining_seconds"`
	Percent          int               `json:"percent"`
	TotalSeconds     int               `json:"total_seconds"`
	SelectedMinutes  int               `json:"selected_minutes"`
	PlannedAmount    float64           `json:"planned_amount"`
	SettledTotal     float64           `json:"settled_total"`
	Sessions         []sessionResponse `json:"sessions"`
}

func toStationResponse(view rentalapp.StationView) stationResponse {
	resp := stationResponse{
		StationID:        view.StationID,
		Status:           string(view.Status),
		Running:          view.Running,
		ElapsedSeconds:   view.ElapsedSeconds,
		RemainingSeconds: view.RemainingSeconds,
		Percent:          view.Percent,
		TotalSeconds:     view.TotalSeconds,
		SelectedMinutes:  view.SelectedMinutes,
		PlannedAmount:    view.PlannedAmount,
		SettledTotal:     view.SettledTotal,
		Sessions:         make([]sessionResponse, 0, len(view.Sessions)+1),
	}
	for _, closed := range view.Sessions {
		amount := closed.Amount
		end := closed.End.UnixMilli()
		resp.Sessions = append(resp.Sessions, sessionResponse{
			ID:              closed.ID,
			Start:           closed.Start.UnixMilli(),
			End:             &end,
			Minutes:         closed.Minutes,
			DurationSeconds: closed.DurationSeconds,
			Amount:          &amount,
			Settled:         closed.Settled,
		})
	}
	if view.Active != nil {
		amount := view.Active.PlannedAmount
		resp.Sessions = append(resp.Sessions, sessionResponse{
			ID:      view.Active.ID,
			Start:   view.Active.Start.UnixMilli(),
			Minutes: view.Active.Minutes,
			Amount:  &amount,
		})
	}
	return resp
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	views, total := h.engine.States()
	out := make([]stationResponse, 0, len(views))
	for _, view := range views {
		out = append(out, toStationResponse(view))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Stations []stationResponse `json:"stations"`
		Total    float64           `json:"total"`
	}{Stations: out, Total: total})
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request, stationID string) {
	view, err := h.engine.StateOf(r.Context(), stationID)
	if err != nil {
		respondTimerError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toStationResponse(view))
}

func respondTimerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rentalapp.ErrUnknownStation):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, rentalapp.ErrUnknownTier),
		errors.Is(err, rental.ErrNoDuration),
		errors.Is(err, rental.ErrSameStation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, rental.ErrAlreadyRunning),
		errors.Is(err, rental.ErrNotRunning),
		errors.Is(err, rental.ErrNoActiveSession),
		errors.Is(err, rental.ErrSessionActive),
		errors.Is(err, rental.ErrNothingToSettle),
		errors.Is(err, rental.ErrDestinationBusy):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
