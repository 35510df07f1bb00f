package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/progress"
	"github.com/claude/ironlog/internal/storage"
	"github.com/claude/ironlog/internal/superset"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleAlphaIngest(w http.ResponseWriter, r *http.Request) {
	result, err := s.alpha.Ingest(r.Context(), r.Body)
	if err != nil {
		s.log.Error("alpha ingest error", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// companionResult is the response to a synced companion workout.
type companionResult struct {
	SessionID          uuid.UUID `json:"session_id"`
	Inserted           bool      `json:"inserted"`
	RoutineSetsUpdated int       `json:"routine_sets_updated"`
}

func (s *Server) handleCompanionWorkout(w http.ResponseWriter, r *http.Request) {
	var payload models.CompletedWorkoutPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if payload.StartTime.IsZero() || payload.EndTime.Before(payload.StartTime) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start_time and end_time must describe a finished workout"})
		return
	}

	session := payload.ToSession()
	inserted, err := s.store.InsertSession(r.Context(), session)
	if err != nil {
		s.log.Error("storing companion workout", "id", session.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	result := companionResult{SessionID: session.ID, Inserted: inserted}
	if inserted && payload.ShouldUpdateRoutine && payload.RoutineID != nil {
		result.RoutineSetsUpdated = s.applyToRoutine(r, *payload.RoutineID, payload)
	}

	s.log.Info("companion workout received",
		"id", session.ID,
		"routine", payload.RoutineName,
		"exercises", len(payload.Exercises),
		"inserted", inserted)
	writeJSON(w, http.StatusOK, result)
}

// applyToRoutine rewrites the routine's planned values from the workout.
// Failures are logged; the workout itself is already stored.
func (s *Server) applyToRoutine(r *http.Request, id uuid.UUID, payload models.CompletedWorkoutPayload) int {
	routine, err := s.store.GetRoutine(r.Context(), id)
	if err != nil {
		s.log.Warn("routine update skipped", "routine_id", id, "error", err)
		return 0
	}
	changed := routine.ApplyActuals(payload)
	if changed == 0 {
		return 0
	}
	if err := s.store.SaveRoutine(r.Context(), *routine); err != nil {
		s.log.Warn("saving updated routine", "routine_id", id, "error", err)
		return 0
	}
	return changed
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sessions, err := s.store.FetchSessions(r.Context(), models.SessionQuery{
		StartedFrom:   &start,
		StartedBefore: &end,
		CompletedOnly: true,
		Order:         models.Descending,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleSessionComparison(w http.ResponseWriter, r *http.Request) {
	session, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.progress.CompareWithPrevious(r.Context(), *session))
}

// supersetLabel is the display form of one superset group.
type supersetLabel struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

func (s *Server) handleSessionSupersets(w http.ResponseWriter, r *http.Request) {
	session, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	labels := superset.Labels(session.Exercises)
	out := make(map[string]supersetLabel, len(labels))
	for group, label := range labels {
		out[group] = supersetLabel{Label: label, Color: superset.ColorFor(label)}
	}
	writeJSON(w, http.StatusOK, out)
}

// loadSession resolves the {id} URL parameter and writes the error response
// when it cannot.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*models.WorkoutSession, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return nil, false
	}

	session, err := s.store.GetSession(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}
	return session, true
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	tf, err := progress.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.progress.ExerciseNames(r.Context(), tf))
}

func (s *Server) handleExerciseProgress(w http.ResponseWriter, r *http.Request) {
	name, err := exerciseParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	tf, err := progress.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.progress.ProgressData(r.Context(), name, tf))
}

func (s *Server) handleExercisePrevious(w http.ResponseWriter, r *http.Request) {
	name, err := exerciseParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	before := time.Now()
	if v := r.URL.Query().Get("before"); v != "" {
		before, err = parseFlexTime(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, s.progress.PreviousPerformance(r.Context(), name, before))
}

func exerciseParam(r *http.Request) (string, error) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", errors.New("exercise name required")
	}
	return name, nil
}

func (s *Server) handleListRoutines(w http.ResponseWriter, r *http.Request) {
	routines, err := s.store.ListRoutines(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, routines)
}

func (s *Server) handleGetRoutine(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid routine ID"})
		return
	}

	routine, err := s.store.GetRoutine(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "routine not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, routine)
}

func (s *Server) handlePutRoutine(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid routine ID"})
		return
	}

	var routine models.Routine
	if err := json.NewDecoder(r.Body).Decode(&routine); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if routine.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "routine name required"})
		return
	}
	routine.ID = id

	if err := s.store.SaveRoutine(r.Context(), routine); err != nil {
		s.log.Error("saving routine", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, routine)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}

	if startStr == "" {
		// Default: last 7 days
		start = end.AddDate(0, 0, -7)
		return
	}
	start, err = parseFlexTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
