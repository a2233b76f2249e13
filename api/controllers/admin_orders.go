package controllers

import (
	"net/http"

	"github.com/avelarde/shopflow-backend/api/responses"
	"github.com/avelarde/shopflow-backend/api/validators"
	"github.com/avelarde/shopflow-backend/internal/orders"
	"github.com/avelarde/shopflow-backend/pkg/logger"
)

type updateOrderStatusRequest struct {
	Status        string  `json:"status" validate:"required"`
	PaymentStatus *string `json:"payment_status" validate:"omitempty"`
	Notes         *string `json:"notes" validate:"omitempty,max=500"`
}

func AdminListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListAllOrders(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AdminUpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateStatus(r.Context(), adminID, orderID, orders.UpdateStatusInput{
			Status:        payload.Status,
			PaymentStatus: payload.PaymentStatus,
			Notes:         payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
