package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"websage/controllers"
	"websage/utils/types"
)

func QueryRoutes(ctrl *controllers.QueryController) chi.Router {
	r := chi.NewRouter()

	// POST /query : ask a question against a collection
	r.Post("/", handleJSON(func(r *http.Request) (any, int, error) {
		var req types.QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, http.StatusBadRequest, err
		}
		if req.Collection == "" || req.Question == "" {
			return nil, http.StatusBadRequest, errors.New("collection and question are required")
		}
		return ctrl.Query(r.Context(), req), http.StatusOK, nil
	}))

	return r
}

func HistoryRoutes(ctrl *controllers.QueryController) chi.Router {
	r := chi.NewRouter()

	// GET /history?collection=...&limit=... : recent exchanges, newest first
	r.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
		limit := 0
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, http.StatusBadRequest, err
			}
			limit = n
		}
		records, err := ctrl.History(r.Context(), r.URL.Query().Get("collection"), limit)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return records, http.StatusOK, nil
	}))

	// DELETE /history?collection=... : clear history, optionally per collection
	r.Delete("/", handleJSON(func(r *http.Request) (any, int, error) {
		deleted, err := ctrl.ClearHistory(r.Context(), r.URL.Query().Get("collection"))
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return map[string]int64{"deleted": deleted}, http.StatusOK, nil
	}))

	return r
}
