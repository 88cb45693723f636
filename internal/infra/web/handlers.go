package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"decor-studio/internal/domain"
	"decor-studio/internal/domain/model"
)

type submitRequest struct {
	JobType string           `json:"job_type"`
	Payload model.JobPayload `json:"payload"`
}

type jobView struct {
	JobID        string           `json:"job_id"`
	JobType      string           `json:"job_type"`
	Status       string           `json:"status"`
	Result       *model.JobResult `json:"result,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func viewOf(job *model.Job) jobView {
	return jobView{
		JobID:        job.ID,
		JobType:      string(job.Type),
		Status:       string(job.Status),
		Result:       job.Result,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	jobType, err := model.ParseJobType(req.JobType)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown job_type")
		return
	}

	res, err := s.jobUC.Submit(r.Context(), jobType, req.Payload)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, "user_id and space_id are required")
		case errors.Is(err, domain.ErrInsufficientCredits):
			writeError(w, http.StatusBadRequest, "Insufficient credits")
		default:
			s.log.Error().Err(err).Msg("job submit failed")
			writeError(w, http.StatusInternalServerError, "could not submit job")
		}
		return
	}

	if res.Cached != nil {
		writeJSON(w, http.StatusOK, struct {
			Cached bool               `json:"cached"`
			Entry  *model.SpaceResult `json:"entry"`
		}{Cached: true, Entry: res.Cached})
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}{JobID: res.Job.ID, Status: string(res.Job.Status)})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := s.jobUC.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.log.Error().Err(err).Str("job_id", jobID).Msg("job lookup failed")
		writeError(w, http.StatusInternalServerError, "could not load job")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(job))
}

// handleAwaitResult holds the request open while the poller waits for the
// job to turn terminal, then returns the settled entry. Failed jobs come
// back 200 with their error_message, like handleGetJob would show them.
func (s *Server) handleAwaitResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	res, err := s.awaiter.Poll(r.Context(), jobID)
	if err != nil {
		var failed *domain.JobFailedError
		switch {
		case errors.As(err, &failed):
			writeJSON(w, http.StatusOK, struct {
				JobID        string `json:"job_id"`
				Status       string `json:"status"`
				ErrorMessage string `json:"error_message"`
			}{JobID: failed.JobID, Status: string(model.JobStatusFailed), ErrorMessage: failed.Message})
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "job not found")
		case errors.Is(err, domain.ErrPollTimeout):
			writeError(w, http.StatusGatewayTimeout, "job still running")
		case errors.Is(err, domain.ErrInsufficientCredits):
			writeError(w, http.StatusBadRequest, "Insufficient credits")
		default:
			s.log.Error().Err(err).Str("job_id", jobID).Msg("await result failed")
			writeError(w, http.StatusInternalServerError, "could not settle job")
		}
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Job   jobView            `json:"job"`
		Entry *model.SpaceResult `json:"entry"`
	}{Job: viewOf(res.Job), Entry: res.Entry})
}

type processRequest struct {
	JobID string `json:"job_id"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobID == "" {
		writeError(w, http.StatusBadRequest, "job_id is required")
		return
	}

	err := s.intake.Intake(r.Context(), req.JobID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
	case errors.Is(err, domain.ErrJobAlreadyTaken):
		// Duplicate dispatch; the first one won and nothing changed.
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "already taken"})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "job not found")
	default:
		s.log.Error().Err(err).Str("job_id", req.JobID).Msg("intake failed")
		writeError(w, http.StatusInternalServerError, "could not process job")
	}
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	amount, err := s.creditUC.Balance(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no credit account")
			return
		}
		s.log.Error().Err(err).Str("user_id", userID).Msg("balance lookup failed")
		writeError(w, http.StatusInternalServerError, "could not load balance")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"amount": amount})
}

func (s *Server) handleDeduct(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	amount, err := strconv.ParseInt(r.URL.Query().Get("amount"), 10, 64)
	if userID == "" || err != nil || amount <= 0 {
		writeError(w, http.StatusBadRequest, "userId and a positive amount are required")
		return
	}

	d, err := s.creditUC.Deduct(r.Context(), userID, amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientCredits):
			writeError(w, http.StatusBadRequest, "Insufficient credits")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "no credit account")
		default:
			s.log.Error().Err(err).Str("user_id", userID).Msg("deduct failed")
			writeError(w, http.StatusInternalServerError, "could not deduct credits")
		}
		return
	}

	writeJSON(w, http.StatusOK, struct {
		PreviousAmount int64 `json:"previousAmount"`
		NewAmount      int64 `json:"newAmount"`
		DeductedAmount int64 `json:"deductedAmount"`
	}{PreviousAmount: d.Previous, NewAmount: d.New, DeductedAmount: d.Amount})
}
