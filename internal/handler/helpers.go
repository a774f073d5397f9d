package handler

import (
	"errors"
	"net/http"
	"reflect"

	"fixflow/internal/apierror"
	"fixflow/internal/middleware"
	"fixflow/internal/model"
	"fixflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeBadRequest, "Invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQueryAndValidate is the query-string counterpart of bindAndValidate.
func bindQueryAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeBadRequest, "Invalid query: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// actorFromContext builds the audit actor from the authenticated claims and
// the request metadata. Routes behind JWTAuth always have valid claims.
func actorFromContext(c *gin.Context) model.Actor {
	claims := middleware.GetClaims(c)
	actor := model.Actor{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if claims == nil {
		return actor
	}
	actor.UserID, _ = uuid.Parse(claims.UserID)
	actor.OrganizationID, _ = uuid.Parse(claims.OrganizationID)
	actor.BranchID, _ = uuid.Parse(claims.BranchID)
	return actor
}

// respondError maps typed domain errors to HTTP statuses and machine-readable
// codes. Anything unrecognized is logged by the middleware chain and answered
// with a generic 500 — internals never leak to clients.
func respondError(c *gin.Context, err error) {
	var (
		notFound      *service.NotFoundError
		invalidTrans  *service.InvalidTransitionError
		partBlocked   *service.PartNotAttachableError
		insuffStock   *service.InsufficientStockError
		insuffReserve *service.InsufficientReservationError
		conflict      *service.ConflictError
	)

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, apierror.New(apierror.CodeNotFound, notFound.Error()))
	case errors.As(err, &invalidTrans):
		allowed := make([]string, len(invalidTrans.Allowed))
		for i, s := range invalidTrans.Allowed {
			allowed[i] = string(s)
		}
		c.JSON(http.StatusConflict, apierror.New(apierror.CodeInvalidTransition, invalidTrans.Error()).
			WithContext(map[string]interface{}{
				"current_state":  string(invalidTrans.Current),
				"target_state":   string(invalidTrans.Target),
				"allowed_states": allowed,
			}))
	case errors.As(err, &partBlocked):
		c.JSON(http.StatusConflict, apierror.New(apierror.CodeInvalidTransition, partBlocked.Error()).
			WithContext(map[string]interface{}{
				"current_state": string(partBlocked.State),
			}))
	case errors.As(err, &insuffStock):
		c.JSON(http.StatusConflict, apierror.New(apierror.CodeInsufficientStock, insuffStock.Error()).
			WithContext(map[string]interface{}{
				"variant_id": insuffStock.VariantID.String(),
				"available":  insuffStock.Available,
				"requested":  insuffStock.Requested,
			}))
	case errors.As(err, &insuffReserve):
		c.JSON(http.StatusConflict, apierror.New(apierror.CodeInsufficientReservation, insuffReserve.Error()).
			WithContext(map[string]interface{}{
				"variant_id": insuffReserve.VariantID.String(),
				"reserved":   insuffReserve.Reserved,
				"requested":  insuffReserve.Requested,
			}))
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, apierror.New(apierror.CodeConcurrencyConflict,
			"The operation conflicted with a concurrent change. Retry the request."))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New(apierror.CodeInternal, "Internal server error"))
	}
}

// parseIDParam parses the :id path parameter, answering 400 on garbage.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeBadRequest, "Invalid id"))
		return uuid.Nil, false
	}
	return id, true
}
