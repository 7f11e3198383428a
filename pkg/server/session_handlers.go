package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/matst80/slask-storefront/pkg/backend"
	"github.com/matst80/slask-storefront/pkg/common"
	"github.com/matst80/slask-storefront/pkg/facet"
	"github.com/matst80/slask-storefront/pkg/pagination"
	"github.com/matst80/slask-storefront/pkg/session"
	"github.com/matst80/slask-storefront/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// currentSession selects the session stored in the session cookie.
const currentSession = "current"

var createdSessions = promauto.NewCounter(prometheus.CounterOpts{
	Name: "storefront_sessions_created_total",
	Help: "The total number of created sessions",
})

type SessionView struct {
	Id                string                     `json:"id"`
	InfiniteScroll    bool                       `json:"infiniteScroll"`
	Selections        types.Selections           `json:"selections"`
	Facets            []facet.JsonFacet          `json:"facets"`
	DefaultOpen       []types.FacetId            `json:"defaultOpen"`
	Results           session.Results            `json:"results"`
	Suggestions       []session.Suggestion       `json:"suggestions"`
	CustomSuggestions []string                   `json:"customSuggestions,omitempty"`
	Popular           []types.PopularSearchEntry `json:"popular"`
}

type SearchRequest struct {
	Text      string `json:"text"`
	Immediate bool   `json:"immediate"`
}

type LoadResponse struct {
	Loaded bool `json:"loaded"`
}

func viewOf(s *session.Session) SessionView {
	return SessionView{
		Id:                s.Id,
		InfiniteScroll:    s.InfiniteScroll(),
		Selections:        s.Selections(),
		Facets:            s.Facets(),
		DefaultOpen:       s.Graph().DefaultOpen(),
		Results:           s.Results(),
		Suggestions:       s.Suggestions(),
		CustomSuggestions: s.Preferences().SearchSettings.CustomSuggestions,
		Popular:           s.Popular(),
	}
}

func badRequest(err error) error {
	return common.WithStatus(http.StatusBadRequest, err)
}

func statusOf(err error) error {
	switch {
	case errors.Is(err, ErrUnknownSession), errors.Is(err, session.ErrUnknownFacet):
		return common.WithStatus(http.StatusNotFound, err)
	case errors.Is(err, session.ErrInfiniteScroll), errors.Is(err, session.ErrNumberedPages), errors.Is(err, session.ErrClosed):
		return common.WithStatus(http.StatusConflict, err)
	case errors.Is(err, backend.ErrTransport), errors.Is(err, backend.ErrMalformedResponse):
		return common.WithStatus(http.StatusBadGateway, err)
	}
	return err
}

func (ws *WebServer) session(r *http.Request) (*session.Session, error) {
	id := chi.URLParam(r, "id")
	if id == currentSession {
		cookie, ok := common.SessionFromCookie(r)
		if !ok {
			return nil, statusOf(ErrUnknownSession)
		}
		id = cookie
	}
	s, err := ws.Sessions.Get(id)
	if err != nil {
		return nil, statusOf(err)
	}
	return s, nil
}

// CreateSession starts a session on the current preferences. Selections in the query
// string are applied right away.
func (ws *WebServer) CreateSession(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	req, err := GetQueryFromRequest(r)
	if err != nil {
		return badRequest(err)
	}
	prefs, b := ws.Storefront.Current()
	s := session.New(uuid.NewString(), prefs, b, ws.Popular)
	for id, sel := range req.Selections {
		if id == types.SearchId {
			s.SearchNow(sel.Text)
			continue
		}
		if err = s.Select(id, sel); err != nil {
			s.Close()
			return statusOf(fmt.Errorf("%w: %s", err, id))
		}
	}
	ws.Sessions.Add(s)
	createdSessions.Inc()

	common.SetSessionCookie(w, s.Id)
	w.WriteHeader(http.StatusCreated)
	return enc.Encode(viewOf(s))
}

func (ws *WebServer) GetSession(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	s, err := ws.session(r)
	if err != nil {
		return err
	}
	return enc.Encode(viewOf(s))
}

func (ws *WebServer) DeleteSession(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	s, err := ws.session(r)
	if err != nil {
		return err
	}
	ws.Sessions.Remove(s.Id)
	return enc.Encode(map[string]string{"id": s.Id})
}

func (ws *WebServer) GetSessionResults(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	s, err := ws.session(r)
	if err != nil {
		return err
	}
	return enc.Encode(s.Results())
}

func (ws *WebServer) PutSelection(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	s, err := ws.session(r)
	if err != nil {
		return err
	}
	var sel types.Selection
	if err = json.NewDecoder(r.Body).Decode(&sel); err != nil {
		return badRequest(err)
	}
	if err = s.Select(types.FacetId(chi.URLParam(r, "facet")), sel); err != nil {
		return statusOf(err)
	}
	return enc.Encode(viewOf(s))
}

func (ws *WebServer) ClearSelections(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	s, err := ws.session(r)
	if err != nil {
		return err
	}
	s.ClearAll()
	return enc.Encode(viewOf(s))
}

func (ws *WebServer) PostSearch(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	s, err := ws.session(r)
	if err != nil {
		return err
	}
	var req SearchRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		return badRequest(err)
	}
	if req.Immediate {
		s.SearchNow(req.Text)
	} else {
		s.Search(req.Text)
	}
	return enc.Encode(viewOf(s))
}

func (ws *WebServer) PostViewport(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	s, err := ws.session(r)
	if err != nil {
		return err
	}
	var v pagination.Viewport
	if err = json.NewDecoder(r.Body).Decode(&v); err != nil {
		return badRequest(err)
	}
	loaded, err := s.OnViewport(v)
	if err != nil {
		return statusOf(err)
	}
	return enc.Encode(LoadResponse{Loaded: loaded})
}

func (ws *WebServer) PostLoadMore(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	s, err := ws.session(r)
	if err != nil {
		return err
	}
	loaded, err := s.LoadMore()
	if err != nil {
		return statusOf(err)
	}
	return enc.Encode(LoadResponse{Loaded: loaded})
}

func (ws *WebServer) PostPage(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	s, err := ws.session(r)
	if err != nil {
		return err
	}
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		return badRequest(err)
	}
	loaded, err := s.GotoPage(page)
	if err != nil {
		return statusOf(err)
	}
	return enc.Encode(LoadResponse{Loaded: loaded})
}

func (ws *WebServer) GetFacetOptions(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	s, err := ws.session(r)
	if err != nil {
		return err
	}
	options, err := s.FacetOptions(r.Context(), types.FacetId(chi.URLParam(r, "facet")))
	if err != nil {
		if errors.Is(err, session.ErrUnknownFacet) {
			return statusOf(err)
		}
		return captureBackendError(r, err)
	}
	return enc.Encode(options)
}

func (ws *WebServer) GetFacetQuery(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	s, err := ws.session(r)
	if err != nil {
		return err
	}
	c, err := s.Compose(types.FacetId(chi.URLParam(r, "facet")))
	if err != nil {
		return statusOf(err)
	}
	return enc.Encode(c)
}
