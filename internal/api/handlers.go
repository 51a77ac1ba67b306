package api

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/blake2b"

	"github.com/p-n-ai/pai-pathways/internal/catalog"
	"github.com/p-n-ai/pai-pathways/internal/learner"
	"github.com/p-n-ai/pai-pathways/internal/recommend"
)

func (s *Server) handleStudents(w http.ResponseWriter, r *http.Request) {
	ids, err := learner.IDs(r.Context(), s.svc.Profiles())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"students": ids})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	mode, err := s.mode(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.svc.ForStudent(r.Context(), r.PathValue("id"), mode)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeResult(w, r, res)
}

// handleAdHoc recommends for a raw progress record posted by the caller.
func (s *Server) handleAdHoc(w http.ResponseWriter, r *http.Request) {
	mode, err := s.mode(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var rec map[string]any
	if err := decodeBody(w, r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if rec == nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return
	}

	res, err := s.svc.ForProfile(r.Context(), catalog.ProfileFromRecord(rec, 0), mode)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleNextSteps(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	completed := q.Get("completed")
	if completed == "" {
		writeError(w, http.StatusBadRequest, "completed is required")
		return
	}
	debug := q.Get("debug") == "1" || strings.EqualFold(q.Get("debug"), "true")

	report, err := s.svc.NextSteps(r.Context(), r.PathValue("id"), completed, debug)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type selectRequest struct {
	StudentID string `json:"student_id"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if s.selections == nil {
		writeError(w, http.StatusServiceUnavailable, "student selection is not configured")
		return
	}
	var req selectRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.StudentID == "" {
		writeError(w, http.StatusBadRequest, "student_id is required")
		return
	}
	if _, err := s.svc.Profile(r.Context(), req.StudentID); err != nil {
		s.fail(w, r, err)
		return
	}

	session := r.PathValue("session")
	if err := s.selections.Select(r.Context(), session, req.StudentID); err != nil {
		s.fail(w, r, err)
		return
	}
	s.log(r).Info("student selected", "session", session, "student_id", req.StudentID)
	writeJSON(w, http.StatusOK, map[string]string{"session": session, "student_id": req.StudentID})
}

func (s *Server) handleSessionRecommendations(w http.ResponseWriter, r *http.Request) {
	if s.selections == nil {
		writeError(w, http.StatusServiceUnavailable, "student selection is not configured")
		return
	}
	mode, err := s.mode(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := s.selections.Selected(r.Context(), r.PathValue("session"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.svc.ForStudent(r.Context(), id, mode)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeResult(w, r, res)
}

// writeResult sends res with an ETag and honours If-None-Match.
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, res recommend.Result) {
	tag, err := ETag(res.Recommendations)
	if err != nil {
		s.log(r).Warn("computing etag", "error", err)
		writeJSON(w, http.StatusOK, res)
		return
	}
	w.Header().Set("ETag", tag)
	if etagMatches(r.Header.Get("If-None-Match"), tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ETag digests the recommendation lists. It ignores the generation time, so
// identical recommendations keep the same tag across calls.
func ETag(recs recommend.Recommendations) (string, error) {
	data, err := json.Marshal(recs)
	if err != nil {
		return "", fmt.Errorf("encoding recommendations: %w", err)
	}
	sum := blake2b.Sum256(data)
	return `"` + hex.EncodeToString(sum[:16]) + `"`, nil
}

func etagMatches(header, tag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == tag {
			return true
		}
	}
	return false
}
