package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/rs/xid"
	"golang.org/x/time/rate"

	"github.com/sushihentaime/blogauth/internal/common"
	"github.com/sushihentaime/blogauth/internal/userservice"
)

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// statusRecorder keeps the status code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// logRequest tags every request with an id, echoed in X-Request-ID, and logs it
// once the handler returns.
func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = xid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		r = withRequestID(r, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		app.logger.Info("request",
			slog.String("request_id", id),
			slog.String("method", r.Method),
			slog.String("uri", r.URL.RequestURI()),
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("proto", r.Proto),
			slog.Int("status", rec.status),
			slog.Int64("bytes", rec.written),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

func (app *application) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		w.Header().Add("Vary", "Access-Control-Request-Method")

		origin := r.Header.Get("Origin")
		if origin != "" && slices.Contains(app.config.TrustedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", "OPTIONS, PUT, PATCH, DELETE")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.WriteHeader(http.StatusOK)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// authenticate attaches the token's user to the request, or the anonymous user
// when no Authorization header is sent. A header with a bad token is rejected
// right away. It runs per route, inside the rate limiter.
func (app *application) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			r = app.createUserContext(r, &userservice.AnonymousUser)
			next.ServeHTTP(w, r)
			return
		}

		token := bearerToken(authHeader)
		if token == "" {
			app.invalidAuthenticationTokenResponse(w, r)
			return
		}

		user, err := app.userService.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, userservice.ErrInvalidToken):
				app.invalidAuthenticationTokenResponse(w, r)
			default:
				app.serverErrorResponse(w, r, err)
			}
			return
		}

		r = app.createUserContext(r, user)
		next.ServeHTTP(w, r)
	})
}

func (app *application) requireAuthUser(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := app.getUserContext(r)
		if user.IsAnonymous() {
			app.invalidAuthenticationTokenResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

const (
	rateLimitAuth = "auth"
	rateLimitAPI  = "api"

	// idle limiters are dropped after this long
	limiterExpiry = 3 * time.Minute
)

// rateLimit allows perMinute requests per client IP within the named group,
// with a burst of the same size. Rejected requests never reach next.
func (app *application) rateLimit(group string, perMinute int, next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !app.config.RateLimitEnabled {
			next.ServeHTTP(w, r)
			return
		}

		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		limiter := app.limiters.GetOrAdd(common.CacheKeyRateLimit(group, ip), limiterExpiry, func() any {
			return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
		}).(*rate.Limiter)

		allowed := limiter.Allow()

		headers := http.Header{}
		headers.Set("X-RateLimit-Limit", strconv.Itoa(perMinute))
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, int(limiter.Tokens()))))

		if !allowed {
			app.rateLimitExceededResponse(w, r, headers)
			return
		}

		for key, values := range headers {
			w.Header()[key] = values
		}

		next.ServeHTTP(w, r)
	})
}

func (app *application) authLimit(next http.HandlerFunc) http.HandlerFunc {
	return app.rateLimit(rateLimitAuth, app.config.RateLimitAuthPerMinute, next)
}

func (app *application) apiLimit(next http.HandlerFunc) http.HandlerFunc {
	return app.rateLimit(rateLimitAPI, app.config.RateLimitAPIPerMinute, next)
}
