package quickscroll

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/quickscroll/internal/idgen"
	"github.com/hazyhaar/quickscroll/internal/kit"
	"github.com/hazyhaar/quickscroll/internal/shield"
)

// Routes returns the local inspect API:
//
//	GET  /health
//	GET  /messages
//	POST /messages/{index}/jump
func (n *Navigator) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(shield.LoopbackOnly)
	r.Use(shield.SecurityHeaders(shield.DefaultHeaders()))
	r.Use(requestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		state, err := n.State(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"site":   n.adapter.Name(),
			"widget": state,
		})
	})

	messages := kit.Logging(n.logger, "http_messages")(func(ctx context.Context, _ any) (any, error) {
		return n.Messages(ctx)
	})
	r.Get("/messages", func(w http.ResponseWriter, r *http.Request) {
		resp, err := messages(r.Context(), nil)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"site": n.adapter.Name(), "messages": resp})
	})

	jump := kit.Logging(n.logger, "http_jump")(func(ctx context.Context, req any) (any, error) {
		return n.Jump(ctx, req.(int))
	})
	r.Post("/messages/{index}/jump", func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("index must be an integer"))
			return
		}
		resp, err := jump(r.Context(), index)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	return r
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := idgen.Request()
		w.Header().Set("X-Request-ID", id)
		ctx := kit.WithRequestID(kit.WithTransport(r.Context(), "http"), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, ErrNotReady):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
