package httpd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"demoforge/internal/api"
	"demoforge/internal/logging"
	"demoforge/internal/services"
	"demoforge/internal/session"
)

// Version is stamped by the build and reported on /api/health.
var Version = "0.1.0"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Health(r.Context()); err != nil {
		s.writeError(w, r, services.Wrap(services.ErrPersistence, "api", "health", "session store is unavailable", err))
		return
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok", Version: Version})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req api.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, services.Wrap(services.ErrInvalidInput, "api", "create_session", "request body must be JSON", err))
		return
	}
	repoURL := req.RepositoryURL()
	if repoURL == "" {
		s.writeError(w, r, services.Wrap(services.ErrInvalidInput, "api", "create_session", "repo_url or github_url is required", nil))
		return
	}

	sess, err := s.orch.CreateSession(r.Context(), repoURL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.FromSession(sess, session.Project(sess)))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	var statuses []session.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, value := range strings.Split(raw, ",") {
			statuses = append(statuses, session.Status(strings.TrimSpace(value)))
		}
	}
	sessions, err := s.store.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromSessions(sessions))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	r = sessionScoped(r)
	sess, progress, err := s.orch.GetStatus(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromSession(sess, progress))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r = sessionScoped(r)
	id := mux.Vars(r)["id"]
	sequence, err := strconv.Atoi(r.URL.Query().Get("sequence"))
	if err != nil || sequence < 1 {
		s.writeError(w, r, services.Wrap(services.ErrInvalidInput, "api", "upload", "sequence query parameter must be a positive integer", nil))
		return
	}

	limit := s.cfg.Media.MaxUploadBytes
	body := http.MaxBytesReader(w, r.Body, limit)
	defer body.Close()

	sess, err := s.orch.RecordUpload(r.Context(), id, sequence, body)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.writeError(w, r, services.Wrap(services.ErrInvalidInput, "api", "upload",
				fmt.Sprintf("upload exceeds the %d byte limit", limit), err))
			return
		}
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, api.FromSession(sess, session.Project(sess)))
}

// resultRequest is a processing outcome reported back for one upload.
type resultRequest struct {
	Stage      string                    `json:"stage"`
	Sequence   int                       `json:"sequence_number"`
	Token      string                    `json:"upload_token"`
	Validation *session.ValidationResult `json:"validation,omitempty"`
	Conversion *session.ConversionResult `json:"conversion,omitempty"`
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	r = sessionScoped(r)
	id := mux.Vars(r)["id"]

	var req resultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, services.Wrap(services.ErrInvalidInput, "api", "record_result", "request body must be JSON", err))
		return
	}

	var err error
	switch req.Stage {
	case "validation":
		if req.Validation == nil {
			err = services.Wrap(services.ErrInvalidInput, "api", "record_result", "validation payload is required", nil)
			break
		}
		err = s.orch.AdvanceOnValidation(r.Context(), id, req.Sequence, req.Token, req.Validation)
	case "conversion":
		if req.Conversion == nil {
			err = services.Wrap(services.ErrInvalidInput, "api", "record_result", "conversion payload is required", nil)
			break
		}
		err = s.orch.AdvanceOnConversion(r.Context(), id, req.Sequence, req.Token, req.Conversion)
	default:
		err = services.Wrap(services.ErrInvalidInput, "api", "record_result",
			fmt.Sprintf("unknown result stage %q", req.Stage), nil)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, progress, err := s.orch.GetStatus(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromSession(sess, progress))
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	r = sessionScoped(r)
	sess, err := s.orch.Retry(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, api.FromSession(sess, session.Project(sess)))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	r = sessionScoped(r)
	if err := s.orch.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sessionScoped carries the route's session id on the request context so
// every log line for the request, here and in the orchestrator, is tagged
// with it.
func sessionScoped(r *http.Request) *http.Request {
	return r.WithContext(services.WithSessionID(r.Context(), mux.Vars(r)["id"]))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("response write failed", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := services.HTTPStatus(err)
	logger := logging.WithContext(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", logging.Error(err))
	} else {
		logger.Debug("request rejected", logging.Error(err))
	}
	s.writeJSON(w, status, api.ErrorResponse{Error: services.ErrorLabel(err), Message: err.Error()})
}
