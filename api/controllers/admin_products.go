package controllers

import (
	"net/http"

	"github.com/avelarde/shopflow-backend/api/responses"
	"github.com/avelarde/shopflow-backend/api/validators"
	productsvc "github.com/avelarde/shopflow-backend/internal/products"
	"github.com/avelarde/shopflow-backend/pkg/logger"
)

type createProductRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Slug        string   `json:"slug" validate:"required,max=200"`
	Description string   `json:"description" validate:"omitempty,max=5000"`
	Category    string   `json:"category" validate:"required,max=100"`
	PriceCents  int64    `json:"price_cents" validate:"required,min=1"`
	Stock       int      `json:"stock" validate:"min=0"`
	Images      []string `json:"images" validate:"omitempty,dive,max=500"`
	IsActive    *bool    `json:"is_active"`
	IsFeatured  bool     `json:"is_featured"`
}

type updateProductRequest struct {
	Name        *string   `json:"name" validate:"omitempty,min=1,max=200"`
	Slug        *string   `json:"slug" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=5000"`
	Category    *string   `json:"category" validate:"omitempty,min=1,max=100"`
	PriceCents  *int64    `json:"price_cents" validate:"omitempty,min=1"`
	Stock       *int      `json:"stock" validate:"omitempty,min=0"`
	Images      *[]string `json:"images" validate:"omitempty,dive,max=500"`
	IsActive    *bool     `json:"is_active"`
	IsFeatured  *bool     `json:"is_featured"`
}

// AdminListProducts mirrors the public listing but includes inactive rows.
func AdminListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := catalogListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.IncludeInactive = true

		result, err := svc.ListProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// New products default to active unless the caller says otherwise.
		active := true
		if payload.IsActive != nil {
			active = *payload.IsActive
		}

		product, err := svc.CreateProduct(r.Context(), productsvc.CreateProductInput{
			Name:        payload.Name,
			Slug:        payload.Slug,
			Description: payload.Description,
			Category:    payload.Category,
			PriceCents:  payload.PriceCents,
			Stock:       payload.Stock,
			Images:      payload.Images,
			IsActive:    active,
			IsFeatured:  payload.IsFeatured,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, productsvc.UpdateProductInput{
			Name:        payload.Name,
			Slug:        payload.Slug,
			Description: payload.Description,
			Category:    payload.Category,
			PriceCents:  payload.PriceCents,
			Stock:       payload.Stock,
			Images:      payload.Images,
			IsActive:    payload.IsActive,
			IsFeatured:  payload.IsFeatured,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdminDeactivateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeactivateProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "deactivated"})
	}
}
