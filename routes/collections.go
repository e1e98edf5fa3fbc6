package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"websage/controllers"
	"websage/sources/vectorstore"
)

func CollectionRoutes(ctrl *controllers.CollectionsController) chi.Router {
	r := chi.NewRouter()

	// GET /collections : list collections with document counts
	r.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
		infos, err := ctrl.List()
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return infos, http.StatusOK, nil
	}))

	// GET /collections/{name}
	r.Get("/{name}", handleJSON(func(r *http.Request) (any, int, error) {
		info, err := ctrl.Info(chi.URLParam(r, "name"))
		if err != nil {
			if errors.Is(err, vectorstore.ErrCollectionNotFound) {
				return nil, http.StatusNotFound, err
			}
			return nil, http.StatusInternalServerError, err
		}
		return info, http.StatusOK, nil
	}))

	// DELETE /collections/{name}
	r.Delete("/{name}", handleJSON(func(r *http.Request) (any, int, error) {
		if err := ctrl.Delete(chi.URLParam(r, "name")); err != nil {
			if errors.Is(err, vectorstore.ErrCollectionNotFound) {
				return nil, http.StatusNotFound, err
			}
			return nil, http.StatusInternalServerError, err
		}
		return map[string]string{"status": "deleted"}, http.StatusOK, nil
	}))

	return r
}
