package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/facewarden/server/internal/attend/service"
	"github.com/facewarden/server/internal/attend/types"
	"github.com/facewarden/server/internal/recog"
)

// maxRequestBody caps request body size.  The largest payload is a
// recognize call carrying an embedding plus a base64 proof thumbnail;
// 1 MiB is generous for both.
const maxRequestBody = 1 << 20

type Dependencies struct {
	Logger           *log.Logger
	Addr             string
	Recorder         *service.AttendanceRecorder
	AttendanceLog    *service.AttendanceLog
	Enrollment       *service.Enrollment
	HeartbeatService *service.HeartbeatService
	KioskRegistry    *service.KioskRegistry
	Authz            service.AuthzPolicy
}

type Server struct {
	httpServer       *http.Server
	logger           *log.Logger
	mux              *http.ServeMux
	recorder         *service.AttendanceRecorder
	attendanceLog    *service.AttendanceLog
	enrollment       *service.Enrollment
	heartbeatService *service.HeartbeatService
	kioskRegistry    *service.KioskRegistry
	authz            service.AuthzPolicy
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:           d.Logger,
		mux:              mux,
		recorder:         d.Recorder,
		attendanceLog:    d.AttendanceLog,
		enrollment:       d.Enrollment,
		heartbeatService: d.HeartbeatService,
		kioskRegistry:    d.KioskRegistry,
		authz:            d.Authz,
	}

	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("POST /v1/recognize", s.handleRecognize)
	mux.HandleFunc("POST /v1/heartbeat", s.handleHeartbeat)

	admin := s.requireAdmin
	mux.HandleFunc("GET /v1/attendance", admin(s.handleListAttendance))
	mux.HandleFunc("GET /v1/attendance/verify", admin(s.handleVerify))
	mux.HandleFunc("DELETE /v1/attendance/{id}", admin(s.handleDeleteAttendance))
	mux.HandleFunc("POST /v1/identities", admin(s.handleEnroll))

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "System Online"})
}

func (s *Server) handleRecognize(w http.ResponseWriter, r *http.Request) {
	var req types.RecognizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	kioskID := strings.TrimSpace(req.KioskID)
	if kioskID == "" {
		writeError(w, http.StatusBadRequest, "invalid_kiosk_id", "kiosk_id is required")
		return
	}

	known, err := s.kioskRegistry.IsKnown(r.Context(), kioskID)
	if err == nil && !known {
		s.logger.Printf("recognize from unknown kiosk %q", kioskID)
	}
	_ = s.kioskRegistry.NoteSeen(r.Context(), kioskID)

	now := time.Now().UTC()

	// No embedding means no face was extracted on-device: a normal
	// denial, not a bad request.
	if len(req.Embedding) == 0 {
		writeJSON(w, http.StatusOK, types.RecognizeResponse{
			Status:     "failed",
			Message:    "Access Denied: Please Register First",
			ServerTime: now.Format(time.RFC3339Nano),
		})
		return
	}

	in := service.RecognizeInput{
		Embedding: req.Embedding,
		Liveness:  recog.ParseLivenessResult(req.Liveness),
		Proof:     req.Proof,
	}
	if t := parseOptionalTimestamp(req.CapturedAt); t != nil {
		in.Now = *t
	}

	out, err := s.recorder.Record(r.Context(), in)
	if err != nil {
		s.logger.Printf("recognize error: %v", err)
		writeJSON(w, http.StatusInternalServerError, types.RecognizeResponse{
			Status:     "error",
			Message:    "transient storage failure, retry the scan",
			ServerTime: now.Format(time.RFC3339Nano),
		})
		return
	}

	writeJSON(w, http.StatusOK, recognizeResponse(out, now))
}

// recognizeResponse maps an engine outcome to the wire shape.  Duplicates
// come back success-shaped so the kiosk UX is unaffected by debouncing.
func recognizeResponse(out service.Outcome, now time.Time) types.RecognizeResponse {
	serverTime := now.Format(time.RFC3339Nano)

	switch out.Kind {
	case service.OutcomeSpoof:
		return types.RecognizeResponse{
			Status:     "failed",
			Message:    "Spoofing Detected",
			ServerTime: serverTime,
		}
	case service.OutcomeDenied:
		return types.RecognizeResponse{
			Status:     "failed",
			Message:    "Access Denied: Please Register First",
			ServerTime: serverTime,
		}
	case service.OutcomeCachedSuccess:
		return types.RecognizeResponse{
			Status:     "success",
			User:       out.User,
			Message:    "Welcome back, " + out.User + " (Cached)",
			Audit:      &types.AuditSummary{Cached: true},
			ServerTime: serverTime,
		}
	default:
		return types.RecognizeResponse{
			Status:  "success",
			User:    out.User,
			Message: "Welcome " + out.User + " (" + out.Status + ")",
			Audit: &types.AuditSummary{
				IsLate:        out.Status == service.StatusLate,
				IntegrityHash: out.IntegrityHash,
			},
			ServerTime: serverTime,
		}
	}
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	var req types.HeartbeatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.heartbeatService.Record(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidKioskID) {
			writeError(w, http.StatusBadRequest, "invalid_kiosk_id", err.Error())
			return
		}
		s.logger.Printf("heartbeat error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAttendance(w http.ResponseWriter, r *http.Request) {
	entries, err := s.attendanceLog.List(r.Context())
	if err != nil {
		s.logger.Printf("attendance list error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	if entries == nil {
		entries = []types.AttendanceEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	intact, n, err := s.attendanceLog.Verify(r.Context())
	if err != nil {
		s.logger.Printf("verify error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	writeJSON(w, http.StatusOK, types.VerifyResponse{
		Intact:     intact,
		Records:    n,
		ServerTime: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// handleDeleteAttendance removes one ledger record.  Destructive: the
// chain will no longer verify past the deleted record.  The identity's
// debounce entry is cleared so a fresh scan is immediately possible.
func (s *Server) handleDeleteAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "record id must be a positive integer")
		return
	}

	chainBroken, err := s.attendanceLog.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "record not found")
			return
		}
		s.logger.Printf("delete error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, types.DeleteResponse{
		OK:          true,
		ChainBroken: chainBroken,
		Message:     "record deleted",
	})
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	var req types.EnrollRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	identity, indexed, err := s.enrollment.Enroll(r.Context(), req.Name, req.Embeddings)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEnrollName):
			writeError(w, http.StatusBadRequest, "invalid_name", err.Error())
			return
		case errors.Is(err, service.ErrNoEmbeddings):
			writeError(w, http.StatusBadRequest, "no_embeddings", err.Error())
			return
		default:
			s.logger.Printf("enroll error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
			return
		}
	}

	writeJSON(w, http.StatusOK, types.EnrollResponse{
		OK:         true,
		IdentityID: identity.ID,
		Indexed:    indexed,
	})
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

// parseOptionalTimestamp attempts to parse a device-reported timestamp.
// Returns nil if the string is empty or unparseable.
func parseOptionalTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		u := t.UTC()
		return &u
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		u := t.UTC()
		return &u
	}
	return nil
}
