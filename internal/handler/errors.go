package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/client"
	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/sale"
)

const internalErrorMessage = "internal error"

// requestError reports a malformed request body or parameter.
type requestError struct {
	msg string
	err error
}

func (e *requestError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *requestError) Unwrap() error { return e.err }

func badRequest(msg string, err error) error {
	return &requestError{msg: msg, err: err}
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// respondError writes the failure envelope for err. Unclassified errors are
// logged and reported as a generic 500.
func respondError(c *gin.Context, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		zctx.From(c.Request.Context()).Error("Request failed",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, body)
}

func classify(err error) (int, errorBody) {
	var (
		reqErr   *requestError
		notFound *order.ProductNotFoundError
		stock    *order.InsufficientStockError
		status   *coupon.StatusError
	)
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, errorBody{Error: reqErr.msg, Message: messageOf(reqErr.err)}
	case errors.Is(err, order.ErrInvalidCustomer),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrPaymentRequired),
		errors.Is(err, sale.ErrInvalidStatus),
		errors.Is(err, product.ErrInvalidProduct),
		errors.Is(err, client.ErrInvalidClient):
		return http.StatusBadRequest, errorBody{Error: rootMessage(err)}
	case coupon.IsValidationError(err):
		return http.StatusBadRequest, errorBody{Error: rootMessage(err)}
	case errors.As(err, &notFound):
		return http.StatusUnprocessableEntity, errorBody{Error: notFound.Error()}
	case errors.As(err, &stock):
		return http.StatusUnprocessableEntity, errorBody{Error: stock.Error()}
	case errors.As(err, &status):
		return http.StatusUnprocessableEntity, errorBody{Error: status.Error()}
	case errors.Is(err, coupon.ErrDuplicateCode):
		return http.StatusConflict, errorBody{Error: coupon.ErrDuplicateCode.Error()}
	case errors.Is(err, product.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: product.ErrNotFound.Error()}
	case errors.Is(err, client.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: client.ErrNotFound.Error()}
	case errors.Is(err, coupon.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: coupon.ErrNotFound.Error()}
	case errors.Is(err, sale.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: sale.ErrNotFound.Error()}
	default:
		return http.StatusInternalServerError, errorBody{Error: internalErrorMessage}
	}
}

// respondOrderError maps checkout and sale errors. Unknown coupons and
// clients are business-rule rejections there, not missing resources.
func respondOrderError(c *gin.Context, err error) {
	switch order.RejectReason(err) {
	case "coupon_not_found":
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorBody{Error: coupon.ErrNotFound.Error()})
	case "client_not_found":
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorBody{Error: client.ErrNotFound.Error()})
	default:
		respondError(c, err)
	}
}

// rootMessage returns the message of the innermost error, dropping wrap
// prefixes.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func messageOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
