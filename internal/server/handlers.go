package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/ymori/ideascout/internal/agenterr"
	"github.com/ymori/ideascout/internal/collect"
	"github.com/ymori/ideascout/internal/db"
	"github.com/ymori/ideascout/internal/ideation"
)

type createSessionRequest struct {
	UserInput string `json:"user_input" validate:"required,min=1"`
}

// handleCreateSession creates a new pipeline session.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "user_input is required")
		return
	}

	session, err := s.store.CreateSession(r.Context(), req.UserInput)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, session)
}

// handleGetSession returns one session.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, session)
}

// handleCollect runs the information collection stage for a session.
func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}

	userInput := ""
	if session.UserInput != nil {
		userInput = *session.UserInput
	}

	_ = s.store.UpdateSessionStatus(r.Context(), session.ID, db.SessionStatusInProgress)

	result := s.collectAgent.Run(r.Context(), session.ID, userInput)
	if !result.Success {
		_ = s.store.UpdateSessionStatus(r.Context(), session.ID, db.SessionStatusFailed)
		s.jsonResponse(w, statusFor(result.Err), agenterr.Format(result.Err))
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleIdeate runs the ideation stage using the session's persisted
// research.
func (s *Server) handleIdeate(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}

	input, err := s.loadIdeationInput(r, session.ID)
	if err != nil {
		s.errorResponse(w, http.StatusConflict, err.Error())
		return
	}

	result := s.ideationAgent.Run(r.Context(), session.ID, input)
	if !result.Success {
		_ = s.store.UpdateSessionStatus(r.Context(), session.ID, db.SessionStatusFailed)
		s.jsonResponse(w, statusFor(result.Err), agenterr.Format(result.Err))
		return
	}

	_ = s.store.UpdateSessionStatus(r.Context(), session.ID, db.SessionStatusCompleted)
	s.jsonResponse(w, http.StatusOK, result)
}

// handleProgress returns the progress log for a session.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}

	records, err := s.store.ListProgress(r.Context(), session.ID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if records == nil {
		records = []db.ProgressRow{}
	}
	s.jsonResponse(w, http.StatusOK, records)
}

// handleIdeas returns the generated ideas for a session.
func (s *Server) handleIdeas(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}

	ideas, err := s.store.ListIdeas(r.Context(), session.ID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if ideas == nil {
		ideas = []db.IdeaRow{}
	}
	s.jsonResponse(w, http.StatusOK, ideas)
}

// sessionFromPath parses the {id} path value and loads the session.
// Writes the error response itself when the lookup fails.
func (s *Server) sessionFromPath(w http.ResponseWriter, r *http.Request) (*db.Session, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid session ID format")
		return nil, false
	}

	session, err := s.store.GetSession(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return nil, false
	}
	if session == nil {
		s.errorResponse(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return session, true
}

// loadIdeationInput rebuilds the collection output from persisted
// research data. A session whose collection reused stored trends has
// only an analysis row of its own; its trends are read from the shared
// latest-per-category rows instead.
func (s *Server) loadIdeationInput(r *http.Request, sessionID uuid.UUID) (ideation.Input, error) {
	artifacts, err := s.store.ListResearchData(r.Context(), sessionID)
	if err != nil {
		return ideation.Input{}, errors.New("failed to load research data: " + err.Error())
	}

	var input ideation.Input
	hasAnalysis := false
	for _, artifact := range artifacts {
		switch artifact.DataType {
		case db.ResearchTypeUserAnalysis:
			if uerr := json.Unmarshal(artifact.Content, &input.Analysis); uerr != nil {
				log.Printf("unreadable user analysis for session %s: %v", sessionID, uerr)
				continue
			}
			hasAnalysis = true
		case db.ResearchTypeTrend:
			trend, ok := decodeTrend(artifact)
			if !ok {
				continue
			}
			input.Trends = append(input.Trends, trend)
		}
	}

	if len(input.Trends) == 0 && hasAnalysis {
		stored, serr := s.store.LatestCategoryTrends(r.Context())
		if serr != nil {
			return ideation.Input{}, errors.New("failed to load stored trends: " + serr.Error())
		}
		for _, artifact := range stored {
			if artifact.DataType != db.ResearchTypeTrend {
				continue
			}
			if trend, ok := decodeTrend(artifact); ok {
				input.Trends = append(input.Trends, trend)
			}
		}
	}

	if len(input.Trends) == 0 {
		return ideation.Input{}, errors.New("information collection has not completed for this session")
	}
	return input, nil
}

func decodeTrend(artifact db.ResearchData) (collect.CategoryTrend, bool) {
	var trend collect.CategoryTrend
	if err := json.Unmarshal(artifact.Content, &trend); err != nil {
		log.Printf("unreadable trend %s: %v", artifact.Subcategory, err)
		return collect.CategoryTrend{}, false
	}
	if trend.CategoryID == "" {
		trend.CategoryID = artifact.Subcategory
	}
	return trend, true
}

// statusFor maps a typed stage error to an HTTP status code.
func statusFor(err error) int {
	var apiErr *agenterr.APIError
	var dqErr *agenterr.DataQualityError
	var toErr *agenterr.TimeoutError

	switch {
	case errors.As(err, &toErr):
		return http.StatusGatewayTimeout
	case errors.As(err, &dqErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 600 {
			return apiErr.StatusCode
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
