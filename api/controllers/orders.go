package controllers

import (
	"net/http"

	"github.com/avelarde/shopflow-backend/api/responses"
	"github.com/avelarde/shopflow-backend/api/validators"
	"github.com/avelarde/shopflow-backend/internal/checkout"
	"github.com/avelarde/shopflow-backend/internal/orders"
	"github.com/avelarde/shopflow-backend/pkg/logger"
	"github.com/avelarde/shopflow-backend/pkg/types"
)

type placeOrderRequest struct {
	ShippingAddress shippingAddressPayload `json:"shipping_address" validate:"required"`
	Notes           *string                `json:"notes" validate:"omitempty,max=500"`
	SaveAddress     bool                   `json:"save_address"`
}

type shippingAddressPayload struct {
	Street  string `json:"street" validate:"required,max=200"`
	City    string `json:"city" validate:"required,max=100"`
	State   string `json:"state" validate:"required,max=100"`
	ZipCode string `json:"zip_code" validate:"required,max=20"`
	Country string `json:"country" validate:"required,max=100"`
}

func (p shippingAddressPayload) toAddress() types.ShippingAddress {
	return types.ShippingAddress{
		Street:  p.Street,
		City:    p.City,
		State:   p.State,
		ZipCode: p.ZipCode,
		Country: p.Country,
	}
}

// PlaceOrder converts the authenticated user's cart into an order.
func PlaceOrder(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(r.Context(), userID, checkout.PlaceOrderInput{
			ShippingAddress: payload.ShippingAddress.toAddress(),
			Notes:           payload.Notes,
			SaveAddress:     payload.SaveAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListOrders(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"orders": list})
	}
}

func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
