package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/avelarde/shopflow-backend/api/responses"
	"github.com/avelarde/shopflow-backend/api/validators"
	productsvc "github.com/avelarde/shopflow-backend/internal/products"
	pkgerrors "github.com/avelarde/shopflow-backend/pkg/errors"
	"github.com/avelarde/shopflow-backend/pkg/logger"
)

// ListProducts serves the public catalog with filtering, sorting and paging.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := catalogListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func GetProductBySlug(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimSpace(chi.URLParam(r, "slug"))

		product, err := svc.GetProductBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ListCategories(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": categories})
	}
}

func catalogListInput(r *http.Request) (productsvc.ListInput, error) {
	params, err := validators.ParsePagination(r)
	if err != nil {
		return productsvc.ListInput{}, err
	}

	filters := productsvc.ListFilters{
		Query: validators.SanitizeString(r.URL.Query().Get("search"), 200),
	}
	if category := validators.SanitizeString(r.URL.Query().Get("category"), 100); category != "" {
		filters.Category = &category
	}
	if filters.PriceMinCents, err = validators.ParseQueryInt64Ptr(r, "price_min"); err != nil {
		return productsvc.ListInput{}, err
	}
	if filters.PriceMaxCents, err = validators.ParseQueryInt64Ptr(r, "price_max"); err != nil {
		return productsvc.ListInput{}, err
	}
	if filters.Featured, err = validators.ParseQueryBoolPtr(r, "featured"); err != nil {
		return productsvc.ListInput{}, err
	}

	sort, err := productsvc.ParseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		return productsvc.ListInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort")
	}

	return productsvc.ListInput{
		Filters:    filters,
		Sort:       sort,
		Pagination: params,
	}, nil
}
