// Package aerohttp integrates aerosol with net/http services. It attaches a
// dependency collection to each request's context and provides typed
// extractors for use inside handlers, so route code can declare the
// dependencies it needs without threading them through every signature.
package aerohttp

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Diggsey/aerosol"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

var errNotAttached = errors.New("aerohttp: no dependency collection attached to request")

// logger receives adapter-level failures: a handler asked for a dependency
// that does not exist or could not be constructed. Defaults to a no-op
// logger; replace it with SetLogger.
var logger = zap.NewNop()

// SetLogger routes extraction failures to the given logger. Passing nil
// restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// Middleware returns an http middleware that attaches the dependency
// collection to each request's context, making the typed extractors and
// aerosol.Resolve usable inside handlers further down the chain.
func Middleware(a aerosol.Aero) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(aerosol.Attach(r.Context(), a)))
		})
	}
}

// NewRouter returns a chi router with panic recovery and the dependency
// middleware installed, ready for route registration. Additional middlewares
// are applied after the dependency middleware so they can already use the
// extractors.
func NewRouter(a aerosol.Aero, mws ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(Middleware(a))
	for _, mw := range mws {
		r.Use(mw)
	}
	return r
}

// Dep returns an already-present dependency from the request's collection. It
// does not construct missing values; use Obtain if the dependency should be
// constructed on demand.
func Dep[T any](r *http.Request) (T, error) {
	var value T
	a, ok := aerosol.TryFromContext(r.Context())
	if !ok {
		return value, errNotAttached
	}
	value, found := aerosol.TryGet[T](a)
	if !found {
		return value, fmt.Errorf("aerohttp: dependency %T does not exist", value)
	}
	return value, nil
}

// Obtain returns a dependency from the request's collection, constructing it
// on demand when it has a generator, provider or registered constructor.
func Obtain[T any](r *http.Request) (T, error) {
	if _, ok := aerosol.TryFromContext(r.Context()); !ok {
		var zero T
		return zero, errNotAttached
	}
	return aerosol.Resolve[T](r.Context())
}

// MustDep behaves like Dep but handles the failure path for the caller: it
// logs the error, writes a 500 response, and reports false so the handler can
// simply return.
func MustDep[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	value, err := Dep[T](r)
	if err != nil {
		fail(w, r, err)
		return value, false
	}
	return value, true
}

// MustObtain behaves like Obtain but logs and writes a 500 response on
// failure, reporting false so the handler can simply return.
func MustObtain[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	value, err := Obtain[T](r)
	if err != nil {
		fail(w, r, err)
		return value, false
	}
	return value, true
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	logger.Error("dependency extraction failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
