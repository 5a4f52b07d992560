package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter constructs the API HTTP router.
//
// This is intentionally a thin adapter: handlers decode and encode while
// this package wires routes and middleware.
func NewRouter(s *Server, m *Metrics, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()

	// Baseline production-safe middleware (minimal but useful).
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	if m != nil {
		r.Use(m.instrument)
	}

	// Health and metrics endpoints are for infra checks only.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/members/list/{attribute}", s.listMembers)
		r.Get("/members/count/{attribute}", s.countMembers)

		r.Post("/member", s.createMember)
		r.Put("/member", s.updateMember)
		r.Get("/member/{id}", s.getMember)
		r.Put("/member/{id}/activate", s.activateMember)
		r.Put("/member/{id}/deactivate", s.deactivateMember)

		r.Post("/member/{memberId}/department/add/{departmentId}", s.addDepartment)
		r.Delete("/member/{memberId}/department/remove/{departmentId}", s.removeDepartment)

		r.Post("/member/{memberId}/address/add", s.addAddress)
		r.Delete("/member/{memberId}/address/remove/{addressId}", s.removeAddress)

		r.Post("/member/{memberId}/attendance/{date}", s.addAttendance)
		r.Delete("/member/{memberId}/attendance/{date}", s.removeAttendance)

		r.Get("/member/{memberId}/list/{attribute}", s.listMemberRelations)
		r.Get("/member/{memberId}/fee", s.memberFee)
		r.Get("/member/{memberId}/weaponpurchase", s.weaponPurchase)

		r.Get("/departments", s.listDepartments)
	})

	return r
}

// requestLogger emits one structured line per request.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
