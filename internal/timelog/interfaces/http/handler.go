package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	timelog "carsplay/internal/timelog/domain"
	"carsplay/internal/timelog/interfaces"
)

// Handler serves time log queries and report downloads.
type Handler struct {
	repo timelog.Repository
}

// NewHandler constructs a Handler.
func NewHandler(repo timelog.Repository) (*Handler, error) {
	if repo == nil {
		return nil, errors.New("timelog handler: nil repository")
	}
	return &Handler{repo: repo}, nil
}

// ServeHTTP routes time log requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/time/logs":
		h.handleList(w, r)
	case "/api/time/report.xlsx":
		h.handleReport(w, r, "xlsx")
	case "/api/time/report.pdf":
		h.handleReport(w, r, "pdf")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type logResponse struct {
	ClientID        string    `json:"client_id"`
	StationID       string    `json:"station_id"`
	StationNumber   int       `json:"station_number"`
	StationName     string    `json:"station_name"`
	Username        string    `json:"username"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationSeconds int       `json:"duration_seconds"`
	Amount          float64   `json:"amount"`
	Comment         string    `json:"comment,omitempty"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	logs, err := h.repo.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]logResponse, 0, len(logs))
	var total float64
	for _, log := range logs {
		total += log.Amount
		out = append(out, logResponse{
			ClientID:        log.ClientID,
			StationID:       log.StationID,
			StationNumber:   log.StationNumber,
			StationName:     log.StationName,
			Username:        log.Username,
			Start:           log.Start,
			End:             log.End,
			DurationSeconds: log.DurationSeconds,
			Amount:          log.Amount,
			Comment:         log.Comment,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Logs  []logResponse `json:"logs"`
		Total float64       `json:"total"`
	}{Logs: out, Total: total})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request, format string) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	logs, err := h.repo.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	summary := interfaces.Summarize(logs, filter.From, filter.To)

	var (
		data        []byte
		contentType string
	)
	switch format {
	case "xlsx":
		data, err = interfaces.BuildTimeReportXLSX(summary, logs)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		data, err = interfaces.BuildTimeReportPDF(summary, logs)
		contentType = "application/pdf"
	default:
		http.Error(w, "unknown format", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=time-report.%s", format))
	_, _ = w.Write(data)
}

func parseFilter(r *http.Request) (timelog.Filter, error) {
	query := r.URL.Query()
	filter := timelog.Filter{
		StationID: query.Get("station_id"),
		Username:  query.Get("username"),
	}
	if raw := query.Get("from"); raw != "" {
		parsed, err := parseTimeBound(raw)
		if err != nil {
			return timelog.Filter{}, errors.New("from must be RFC3339 or YYYY-MM-DD")
		}
		filter.From = parsed
	}
	if raw := query.Get("to"); raw != "" {
		parsed, err := parseTimeBound(raw)
		if err != nil {
			return timelog.Filter{}, errors.New("to must be RFC3339 or YYYY-MM-DD")
		}
		filter.To = parsed
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return timelog.Filter{}, errors.New("limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}

func parseTimeBound(raw string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.UTC(), nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}
