package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/urlpop/internal/highlight"
	"github.com/MrSnakeDoc/urlpop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/urlpop/internal/logger"
	"github.com/MrSnakeDoc/urlpop/internal/urlmodel"
)

type urlRequest struct {
	URL string `json:"url"`
}

type urlResponse struct {
	URL        string              `json:"url"`
	Valid      bool                `json:"valid"`
	Components urlmodel.Components `json:"components"`
	Params     *urlmodel.Params    `json:"params"`
}

func newURLResponse(m *urlmodel.Model) urlResponse {
	return urlResponse{
		URL:        m.URL(),
		Valid:      m.Protocol() != "",
		Components: m.Components(),
		Params:     m.Params(),
	}
}

// ParseURL splits a URL into components and ordered query parameters.
// Unparseable input yields an empty, invalid model rather than an error.
func ParseURL(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req urlRequest
		if err := decodeJSON(w, r, d, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, newURLResponse(urlmodel.Parse(req.URL)))
	}
}

type editRequest struct {
	URL       string           `json:"url"`
	Protocol  *string          `json:"protocol,omitempty"`
	Host      *string          `json:"host,omitempty"`
	Hostname  *string          `json:"hostname,omitempty"`
	Port      *int             `json:"port,omitempty"`
	ClearPort bool             `json:"clear_port,omitempty"`
	Pathname  *string          `json:"pathname,omitempty"`
	Search    *string          `json:"search,omitempty"`
	Hash      *string          `json:"hash,omitempty"`
	Params    *urlmodel.Params `json:"params,omitempty"`
}

// apply runs the setters in a fixed order; params are applied last so they win over search.
func (req editRequest) apply(m *urlmodel.Model) {
	if req.Protocol != nil {
		m.SetProtocol(*req.Protocol)
	}
	if req.Host != nil {
		m.SetHost(*req.Host)
	}
	if req.Hostname != nil {
		m.SetHostname(*req.Hostname)
	}
	if req.ClearPort {
		m.ClearPort()
	}
	if req.Port != nil {
		m.SetPort(*req.Port)
	}
	if req.Pathname != nil {
		m.SetPathname(*req.Pathname)
	}
	if req.Search != nil {
		m.SetSearch(*req.Search)
	}
	if req.Hash != nil {
		m.SetHash(*req.Hash)
	}
	if req.Params != nil {
		m.SetParams(req.Params)
	}
}

// EditURL applies component changes to a URL and returns the result.
func EditURL(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req editRequest
		if err := decodeJSON(w, r, d, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		m := urlmodel.Parse(req.URL)
		if m.Protocol() == "" {
			writeError(w, http.StatusUnprocessableEntity, "url cannot be parsed")
			return
		}
		req.apply(m)

		writeJSON(w, http.StatusOK, newURLResponse(m))
	}
}

type highlightRequest struct {
	URL    string `json:"url"`
	Cursor *int   `json:"cursor,omitempty"`
	Param  *int   `json:"param,omitempty"`
}

type highlightResponse struct {
	URL   string           `json:"url"`
	Spans []highlight.Span `json:"spans"`
}

// HighlightURL returns the spans to highlight for a cursor offset or a parameter index.
func HighlightURL(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req highlightRequest
		if err := decodeJSON(w, r, d, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		var sel highlight.Selector
		switch {
		case req.Cursor != nil && req.Param == nil:
			sel = highlight.Cursor(*req.Cursor)
		case req.Param != nil && req.Cursor == nil:
			sel = highlight.Param(*req.Param)
		default:
			writeError(w, http.StatusBadRequest, "exactly one of cursor and param is required")
			return
		}

		m := urlmodel.Parse(req.URL)
		writeJSON(w, http.StatusOK, highlightResponse{
			URL:   m.URL(),
			Spans: highlight.Compute(m, sel),
		})
	}
}

type commitResponse struct {
	Recorded bool   `json:"recorded"`
	Domain   string `json:"domain,omitempty"`
}

// CommitURL records the query parameters of an accepted URL into the suggestion history.
func CommitURL(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req urlRequest
		if err := decodeJSON(w, r, d, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		m := urlmodel.Parse(req.URL)
		if !d.Index.RecordURL(req.URL) {
			writeJSON(w, http.StatusOK, commitResponse{})
			return
		}

		d.Logger.Debug("url committed",
			logger.String("domain", m.Hostname()),
			logger.Int("params", m.Params().Len()))
		writeJSON(w, http.StatusOK, commitResponse{Recorded: true, Domain: m.Hostname()})
	}
}
