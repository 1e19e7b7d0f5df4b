package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/urlpop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/urlpop/internal/logger"
	redisstore "github.com/MrSnakeDoc/urlpop/internal/store/redis"
	"github.com/MrSnakeDoc/urlpop/internal/suggest"
	"github.com/MrSnakeDoc/urlpop/internal/urlmodel"
)

type domainResponse struct {
	Domain  string           `json:"domain"`
	Top     string           `json:"top"`
	Aliases []string         `json:"aliases"`
	Params  *urlmodel.Params `json:"params"`
}

type valuesResponse struct {
	Domain string   `json:"domain"`
	Param  string   `json:"param"`
	Values []string `json:"values"`
}

type recordRequest struct {
	Param string `json:"param"`
	Value string `json:"value"`
}

type relationRequest struct {
	Target string `json:"target"`
}

type importResponse struct {
	Domains  int    `json:"domains"`
	Snapshot string `json:"snapshot,omitempty"`
}

type snapshotsResponse struct {
	Snapshots []string `json:"snapshots"`
}

func domainParam(r *http.Request) string {
	return strings.ToLower(chi.URLParam(r, "domain"))
}

func describeDomain(d deps.Deps, domain string) domainResponse {
	aliases := d.Index.Aliases(domain)
	if aliases == nil {
		aliases = []string{}
	}
	return domainResponse{
		Domain:  domain,
		Top:     d.Index.Top(domain),
		Aliases: aliases,
		Params:  d.Index.Params(domain),
	}
}

// ExportSuggestions writes every page in the persisted JSON shape.
func ExportSuggestions(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := d.Index.MarshalJSON()
		if err != nil {
			writeInternal(w, d, "failed to export suggestions", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// ImportSuggestions replaces every page with the posted document.
// When redis is available the previous content is kept as a snapshot first.
func ImportSuggestions(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := d.MaxBodyBytes
		if limit <= 0 {
			limit = defaultMaxBodyBytes
		}
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}

		imported := suggest.New()
		if err := imported.UnmarshalJSON(body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		id, err := takeSnapshot(r.Context(), d)
		if err != nil {
			writeInternal(w, d, "failed to snapshot suggestions before import", err)
			return
		}

		d.Index.Replace(imported)
		d.Logger.Info("suggestions imported",
			logger.Int("domains", imported.Len()),
			logger.String("snapshot", id))

		writeJSON(w, http.StatusOK, importResponse{Domains: imported.Len(), Snapshot: id})
	}
}

func takeSnapshot(ctx context.Context, d deps.Deps) (string, error) {
	if d.Store == nil {
		return "", nil
	}
	current, err := d.Index.MarshalJSON()
	if err != nil {
		return "", err
	}
	ttl := d.SnapshotTTL
	if ttl <= 0 {
		ttl = redisstore.DefaultSnapshotTTL
	}
	return d.Store.SaveSnapshot(ctx, current, d.Now(), ttl)
}

// ListSnapshots lists the snapshots taken before imports, newest first.
func ListSnapshots(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Store == nil {
			writeError(w, http.StatusServiceUnavailable, "snapshots need redis")
			return
		}
		ids, err := d.Store.ListSnapshots(r.Context())
		if err != nil {
			writeInternal(w, d, "failed to list snapshots", err)
			return
		}
		if ids == nil {
			ids = []string{}
		}
		writeJSON(w, http.StatusOK, snapshotsResponse{Snapshots: ids})
	}
}

// RestoreSnapshot replaces every page with a snapshot. The current content is snapshotted too.
func RestoreSnapshot(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Store == nil {
			writeError(w, http.StatusServiceUnavailable, "snapshots need redis")
			return
		}

		data, err := d.Store.GetSnapshot(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, redisstore.ErrSnapshotNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeInternal(w, d, "failed to read snapshot", err)
			return
		}

		restored := suggest.New()
		if err := restored.UnmarshalJSON(data); err != nil {
			writeInternal(w, d, "snapshot is corrupt", err)
			return
		}

		id, err := takeSnapshot(r.Context(), d)
		if err != nil {
			writeInternal(w, d, "failed to snapshot suggestions before restore", err)
			return
		}
		d.Index.Replace(restored)

		writeJSON(w, http.StatusOK, importResponse{Domains: restored.Len(), Snapshot: id})
	}
}

// GetDomain describes the group of a domain and its shared history.
func GetDomain(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, describeDomain(d, domainParam(r)))
	}
}

// GetValues lists the history of one parameter, filtered by the "prefix" query.
func GetValues(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domain := domainParam(r)
		param := chi.URLParam(r, "param")

		values := d.Index.Values(domain, param, r.URL.Query().Get("prefix"))
		if values == nil {
			values = []string{}
		}
		writeJSON(w, http.StatusOK, valuesResponse{Domain: domain, Param: param, Values: values})
	}
}

// RecordValue moves a value to the front of a parameter's history.
func RecordValue(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordRequest
		if err := decodeJSON(w, r, d, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Param == "" || req.Param == suggest.AliasKey {
			writeError(w, http.StatusBadRequest, "invalid parameter name")
			return
		}

		domain := domainParam(r)
		d.Index.Record(domain, req.Param, req.Value)

		writeJSON(w, http.StatusOK, valuesResponse{
			Domain: domain,
			Param:  req.Param,
			Values: d.Index.Values(domain, req.Param, ""),
		})
	}
}

// DeleteDomain removes one domain entry.
func DeleteDomain(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Index.DeleteDomain(domainParam(r))
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteParam removes a parameter, or a single value of it when "value" is in the query.
func DeleteParam(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domain := domainParam(r)
		param := chi.URLParam(r, "param")

		q := r.URL.Query()
		if q.Has("value") {
			d.Index.DeleteValue(domain, param, q.Get("value"))
		} else {
			d.Index.DeleteParam(domain, param)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Bind joins the posted target domain to the group of the path domain.
func Bind(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domain, target, ok := readRelation(w, r, d)
		if !ok {
			return
		}
		d.Index.Bind(domain, target)
		d.Logger.Info("domains bound",
			logger.String("domain", domain),
			logger.String("target", target))
		writeJSON(w, http.StatusOK, describeDomain(d, domain))
	}
}

// Unbind detaches whichever of the path domain and the posted target is the alias.
func Unbind(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domain, target, ok := readRelation(w, r, d)
		if !ok {
			return
		}
		if err := d.Index.Unbind(domain, target); err != nil {
			if errors.Is(err, suggest.ErrInvalidRelationship) {
				writeError(w, http.StatusConflict, err.Error())
				return
			}
			writeInternal(w, d, "failed to unbind domains", err)
			return
		}
		d.Logger.Info("domains unbound",
			logger.String("domain", domain),
			logger.String("target", target))
		writeJSON(w, http.StatusOK, describeDomain(d, domain))
	}
}

func readRelation(w http.ResponseWriter, r *http.Request, d deps.Deps) (string, string, bool) {
	var req relationRequest
	if err := decodeJSON(w, r, d, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	domain := domainParam(r)
	target := strings.ToLower(strings.TrimSpace(req.Target))
	if target == "" || target == domain {
		writeError(w, http.StatusBadRequest, "target must be a different domain")
		return "", "", false
	}
	return domain, target, true
}
