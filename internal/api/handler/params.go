package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hszk-dev/vidvault/internal/domain/model"
	"github.com/hszk-dev/vidvault/internal/pagination"
)

// pathID parses a URL parameter as a resource identifier.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	return model.ParseID(chi.URLParam(r, name))
}

// optionalQueryID parses a query parameter as an identifier. An absent
// parameter yields uuid.Nil.
func optionalQueryID(r *http.Request, name string) (uuid.UUID, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return uuid.Nil, nil
	}
	return model.ParseID(s)
}

func pageParams(r *http.Request) (pagination.Params, error) {
	q := r.URL.Query()
	return pagination.Parse(q.Get("page"), q.Get("limit"))
}
