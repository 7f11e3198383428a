package server

import (
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/matst80/slask-storefront/pkg/common"
	"github.com/matst80/slask-storefront/pkg/session"
)

const maxBodyBytes int64 = 1 << 20

type WebServer struct {
	Storefront *Storefront
	Sessions   *SessionStore
	Popular    session.PopularSource
}

func NewWebServer(storefront *Storefront, sessions *SessionStore, popular session.PopularSource) *WebServer {
	return &WebServer{Storefront: storefront, Sessions: sessions, Popular: popular}
}

func (ws *WebServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true, Timeout: 2 * time.Second}).Handle)
	r.Use(limitBody)
	r.Use(preflight)

	r.Get("/preferences", common.JsonHandler(ws.GetPreferences))
	r.Get("/facets", common.JsonHandler(ws.GetFacets))
	r.Get("/query", common.JsonHandler(ws.GetQuery))
	r.Get("/results", common.JsonHandler(ws.GetResults))
	r.Get("/popular", common.JsonHandler(ws.GetPopular))

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", common.JsonHandler(ws.CreateSession))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", common.JsonHandler(ws.GetSession))
			r.Delete("/", common.JsonHandler(ws.DeleteSession))
			r.Get("/results", common.JsonHandler(ws.GetSessionResults))
			r.Put("/selections/{facet}", common.JsonHandler(ws.PutSelection))
			r.Delete("/selections", common.JsonHandler(ws.ClearSelections))
			r.Post("/search", common.JsonHandler(ws.PostSearch))
			r.Post("/viewport", common.JsonHandler(ws.PostViewport))
			r.Post("/more", common.JsonHandler(ws.PostLoadMore))
			r.Post("/page/{page}", common.JsonHandler(ws.PostPage))
			r.Get("/facets/{facet}", common.JsonHandler(ws.GetFacetOptions))
			r.Get("/facets/{facet}/query", common.JsonHandler(ws.GetFacetQuery))
		})
	})
	return r
}

func preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			common.RespondToOptions(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

// captureBackendError reports backend failures that are answered with 502.
func captureBackendError(r *http.Request, err error) error {
	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		hub.CaptureException(err)
	}
	return common.WithStatus(http.StatusBadGateway, err)
}
