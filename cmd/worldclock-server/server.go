package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codeGROOVE-dev/worldclock/pkg/constants"
	"github.com/codeGROOVE-dev/worldclock/pkg/locations"
	"github.com/codeGROOVE-dev/worldclock/pkg/validation"
	"github.com/codeGROOVE-dev/worldclock/pkg/worldclock"
)

const (
	defaultRateLimit = 120
	maxBodyBytes     = 64 << 10
)

type rateLimiter struct {
	requests map[string][]time.Time
	limit    int
	mu       sync.Mutex
}

func newRateLimiter(limit int) *rateLimiter {
	return &rateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
	}
}

// allow records a request from ip at now and reports whether it is within
// the per-minute limit. A limit of zero or less disables limiting.
func (rl *rateLimiter) allow(ip string, now time.Time) bool {
	if rl.limit <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-time.Minute)
	var valid []time.Time
	for _, t := range rl.requests[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[ip] = valid
		return false
	}
	rl.requests[ip] = append(valid, now)
	return true
}

type server struct {
	engine    *worldclock.Engine
	set       *locations.Set
	limiter   *rateLimiter
	logger    *slog.Logger
	now       func() time.Time
	reference string
}

func newServer(engine *worldclock.Engine, set *locations.Set, reference string, logger *slog.Logger, limit int) *server {
	return &server{
		engine:    engine,
		set:       set,
		reference: reference,
		limiter:   newRateLimiter(limit),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/v1/clocks", s.handleClocks)
	mux.HandleFunc("GET /api/v1/offset", s.handleOffset)
	mux.HandleFunc("POST /api/v1/convert", s.handleConvert)
	mux.HandleFunc("POST /api/v1/meeting", s.handleMeeting)
	return s.wrap(mux)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *server) wrap(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		defer func() {
			if err := recover(); err != nil {
				const size = 64 << 10
				buf := make([]byte, size)
				buf = buf[:runtime.Stack(buf, false)]
				s.logger.Error("PANIC: Request handler crashed",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"request_id", requestID,
					"client_ip", clientIP(r),
					"stack", string(buf))
				s.writeJSON(w, r, http.StatusInternalServerError,
					errorResponse{Error: "Internal server error", Code: "INTERNAL_ERROR"})
			}
		}()

		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=(), usb=(), bluetooth=()")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")

			if !s.limiter.allow(clientIP(r), s.now()) {
				s.logger.Warn("Rate limit exceeded",
					"request_id", requestID,
					"client_ip", clientIP(r),
					"user_agent", r.Header.Get("User-Agent"))
				s.writeJSON(w, r, http.StatusTooManyRequests,
					errorResponse{Error: "Rate limit exceeded", Code: "RATE_LIMITED"})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}

		start := time.Now()
		handler.ServeHTTP(w, r)
		s.logger.Debug("Request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", clientIP(r),
			"duration_ms", time.Since(start).Milliseconds())
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response",
			"request_id", w.Header().Get("X-Request-ID"),
			"path", r.URL.Path,
			"error", err)
	}
}

// fail maps engine and validation errors onto a status code and error code.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadRequest
	resp := errorResponse{Error: err.Error()}

	switch {
	case errors.Is(err, validation.ErrInvalid):
		resp.Code = "INVALID_REQUEST"
	case errors.Is(err, worldclock.ErrInvalidTimeZone):
		resp.Code = "INVALID_TIME_ZONE"
	case errors.Is(err, worldclock.ErrInvalidWallTime):
		resp.Code = "INVALID_WALL_TIME"
	default:
		status = http.StatusInternalServerError
		resp = errorResponse{Error: "Request failed", Code: "INTERNAL_ERROR"}
	}

	s.logger.Info("Request rejected",
		"request_id", w.Header().Get("X-Request-ID"),
		"path", r.URL.Path,
		"code", resp.Code,
		"error", err)
	s.writeJSON(w, r, status, resp)
}

// instant reads the optional RFC 3339 "at" query parameter, defaulting to now.
func (s *server) instant(r *http.Request) (time.Time, error) {
	at := r.URL.Query().Get("at")
	if at == "" {
		return s.now(), nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: at must be an RFC 3339 timestamp", validation.ErrInvalid)
	}
	return t, nil
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"locations": s.set.Len(),
		"zones":     s.engine.Resolver().Size(),
	})
}

type clock struct {
	ID         string                    `json:"id"`
	Name       string                    `json:"name"`
	Zone       string                    `json:"zone"`
	Time       string                    `json:"time"`
	Date       string                    `json:"date,omitempty"`
	Offset     string                    `json:"offset,omitempty"`
	Difference string                    `json:"difference,omitempty"`
	View       *worldclock.LocalTimeView `json:"view,omitempty"`
	Pinned     bool                      `json:"pinned"`
}

type clocksResponse struct {
	At            time.Time       `json:"at"`
	ReferenceZone string          `json:"reference_zone"`
	Clocks        []clock         `json:"clocks"`
	Stats         locations.Stats `json:"stats"`
}

func (s *server) handleClocks(w http.ResponseWriter, r *http.Request) {
	at, err := s.instant(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := clocksResponse{
		At:            at.UTC(),
		ReferenceZone: s.reference,
		Clocks:        []clock{},
		Stats:         s.set.Stats(),
	}
	for _, l := range s.set.Filter(r.URL.Query().Get("q")) {
		c := clock{ID: l.ID, Name: l.Name, Zone: l.Zone, Pinned: l.Pinned, Time: constants.Placeholder}
		view, err := s.engine.ViewAt(at, l.Zone)
		if err != nil {
			s.logger.Warn("Failed to evaluate clock", "zone", l.Zone, "error", err)
			resp.Clocks = append(resp.Clocks, c)
			continue
		}
		c.View = &view
		c.Time = view.TimeString()
		c.Date = view.DateString()
		c.Offset = view.Offset.String()
		if d, err := s.engine.HourDifference(at, l.Zone, s.reference); err == nil {
			c.Difference = d.String()
		}
		resp.Clocks = append(resp.Clocks, c)
	}

	s.writeJSON(w, r, http.StatusOK, resp)
}

type offsetResponse struct {
	At           time.Time `json:"at"`
	Zone         string    `json:"zone"`
	Offset       string    `json:"offset"`
	Abbreviation string    `json:"abbreviation"`
	Hours        float64   `json:"hours"`
	Minutes      int       `json:"minutes"`
}

func (s *server) handleOffset(w http.ResponseWriter, r *http.Request) {
	at, err := s.instant(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	zoneID := r.URL.Query().Get("zone")
	if err := validation.Var("zone", zoneID, "required,max=64"); err != nil {
		s.fail(w, r, err)
		return
	}
	view, err := s.engine.ViewAt(at, zoneID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, offsetResponse{
		At:           at.UTC(),
		Zone:         zoneID,
		Offset:       view.Offset.String(),
		Abbreviation: view.Abbreviation,
		Hours:        view.Offset.HoursFloat(),
		Minutes:      view.Offset.TotalMinutes(),
	})
}

type convertRequest struct {
	From string `json:"from" validate:"required,max=64"`
	To   string `json:"to" validate:"required,max=64"`
	Time string `json:"time" validate:"required,max=8"`
	Date string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type convertResponse struct {
	*worldclock.ConversionResult

	DayLabel string `json:"day_label,omitempty"`
}

func (s *server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := validation.Decode(r.Body, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	wall, err := worldclock.ParseWallTime(req.Time)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var result *worldclock.ConversionResult
	if req.Date != "" {
		d, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			s.fail(w, r, fmt.Errorf("%w: date must be YYYY-MM-DD", validation.ErrInvalid))
			return
		}
		result, err = s.engine.ConvertOn(worldclock.DateOf(d), req.From, wall, req.To)
		if err != nil {
			s.fail(w, r, err)
			return
		}
	} else {
		result, err = s.engine.Convert(s.now(), req.From, wall, req.To)
		if err != nil {
			s.fail(w, r, err)
			return
		}
	}

	s.writeJSON(w, r, http.StatusOK, convertResponse{ConversionResult: result, DayLabel: strings.TrimSpace(result.DayLabel())})
}

type meetingResponse struct {
	*worldclock.MeetingResult

	Reason    string `json:"reason,omitempty"`
	GoodHours []int  `json:"good_hours"`
}

func (s *server) handleMeeting(w http.ResponseWriter, r *http.Request) {
	var query worldclock.MeetingQuery
	if err := validation.Decode(r.Body, &query); err != nil {
		s.fail(w, r, err)
		return
	}

	now := s.now()
	result, err := s.engine.FindOverlap(query, now)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := meetingResponse{MeetingResult: result, GoodHours: []int{}}
	if !result.Applicable {
		resp.Reason = result.Reason.Error()
	} else {
		hours, err := s.engine.GoodHours(query.ReferenceZone, query.Targets, now)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if hours != nil {
			resp.GoodHours = hours
		}
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}
