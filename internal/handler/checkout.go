package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront/internal/domain/client"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

const (
	checkoutVersion = 1
	maxCheckoutBody = 1 << 20

	checkoutMessage = "Pedido salvo com sucesso!"
)

var errUnsupportedVersion = errors.New("unsupported request version")

// decodeCheckout reads the canonical checkout payload:
//
//	{"version":1,"customer":{...},"products":[{"id","name","quantity"}],
//	 "paymentMethod":"pix","couponCode":"SAVE10"}
//
// Unknown fields, including any client-side price or total, are skipped.
// quantity may be a number or a numeric string.
func decodeCheckout(data []byte) (order.CheckoutRequest, error) {
	var req order.CheckoutRequest
	d := jx.DecodeBytes(data)

	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "version":
			return decodeVersion(d)
		case "customer":
			return decodeCustomer(d, &req.Customer)
		case "products":
			return d.Arr(func(d *jx.Decoder) error {
				line, err := decodeLine(d)
				if err != nil {
					return err
				}
				req.Lines = append(req.Lines, line)
				return nil
			})
		case "paymentMethod":
			s, err := optString(d)
			req.PaymentMethod = s
			return err
		case "couponCode":
			s, err := optString(d)
			req.CouponCode = s
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		if errors.Is(err, errUnsupportedVersion) {
			return req, badRequest(errUnsupportedVersion.Error(), nil)
		}
		return req, badRequest("malformed request body", err)
	}
	return req, nil
}

func decodeVersion(d *jx.Decoder) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	v, err := d.Int()
	if err != nil {
		return err
	}
	if v != checkoutVersion {
		return errUnsupportedVersion
	}
	return nil
}

func decodeCustomer(d *jx.Decoder, s *client.Submission) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "name":
			s.Name, err = optString(d)
		case "phone":
			s.Phone, err = optString(d)
		case "email":
			s.Email, err = optString(d)
		case "address":
			s.Address, err = decodeAddress(d)
		default:
			err = d.Skip()
		}
		return err
	})
}

// decodeAddress accepts the structured address object and composes it, or
// a pre-formatted string.
func decodeAddress(d *jx.Decoder) (client.Address, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		return client.Address{Formatted: strings.TrimSpace(s)}, err
	case jx.Object:
	default:
		return client.Address{}, d.Skip()
	}

	var a client.Address
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "street":
			a.Street, err = optString(d)
		case "number":
			a.Number, err = optString(d)
		case "complement":
			a.Complement, err = optString(d)
		case "neighborhood":
			a.Neighborhood, err = optString(d)
		case "city":
			a.City, err = optString(d)
		case "state":
			a.State, err = optString(d)
		case "zipCode":
			a.ZipCode, err = optString(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return a, err
}

func decodeLine(d *jx.Decoder) (order.Line, error) {
	line := order.Line{Quantity: 1}
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "id":
			line.Ref.ID, err = optString(d)
		case "name":
			line.Ref.Name, err = optString(d)
		case "quantity":
			line.Quantity, err = decodeQuantity(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return line, err
}

func decodeQuantity(d *jx.Decoder) (int, error) {
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return 0, err
		}
		return order.ParseQuantity(n.String()), nil
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return 0, err
		}
		return order.ParseQuantity(s), nil
	default:
		return 1, d.Skip()
	}
}

// optString reads a string, treating null and non-string scalars as empty.
func optString(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		return strings.TrimSpace(s), err
	case jx.Number:
		n, err := d.Num()
		return n.String(), err
	default:
		return "", d.Skip()
	}
}

type checkoutResponse struct {
	Success        bool    `json:"success"`
	SaleID         string  `json:"saleId"`
	ClientID       string  `json:"clientId"`
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discountAmount"`
	Total          float64 `json:"total"`
	CouponCode     string  `json:"couponCode"`
	Message        string  `json:"message"`
}

// PlaceOrder handles POST /api/orders.
func (h *Handler) PlaceOrder(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCheckoutBody))
	if err != nil {
		respondError(c, badRequest("unreadable request body", err))
		return
	}
	req, err := decodeCheckout(data)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.orders.Checkout(c.Request.Context(), req)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, checkoutResponse{
		Success:        true,
		SaleID:         res.Sale.ID,
		ClientID:       res.Client.ID,
		Subtotal:       res.Sale.Subtotal.InexactFloat64(),
		DiscountAmount: res.Sale.DiscountAmount.InexactFloat64(),
		Total:          res.Sale.Total.InexactFloat64(),
		CouponCode:     res.Sale.CouponCode,
		Message:        checkoutMessage,
	})
}

// saleLine is the back-office sale line body.
type saleLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

func toLines(in []saleLine) []order.Line {
	lines := make([]order.Line, len(in))
	for i, l := range in {
		lines[i] = order.Line{
			Ref:      product.Ref{ID: strings.TrimSpace(l.ProductID), Name: strings.TrimSpace(l.Name)},
			Quantity: l.Quantity,
		}
	}
	return lines
}
