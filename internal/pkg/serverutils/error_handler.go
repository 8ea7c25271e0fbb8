package serverutils

import (
	"errors"
	"log"

	"teamcollab-be/pkg/orchestration"
	"teamcollab-be/pkg/orchestration/pricing"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the error envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		code, body := Classify(err)
		if code >= fiber.StatusInternalServerError {
			log.Printf("Request %s %s failed: %v", ctx.Method(), ctx.Path(), err)
		}
		return ctx.Status(code).JSON(body)
	}
}

// Classify maps an error to its HTTP status and response body.
func Classify(err error) (int, ErrorBody) {
	var (
		validation *ValidationError
		limit      *orchestration.MonthlyLimitExceededError
		empty      *orchestration.EmptyConversationError
		failure    *orchestration.Failure
		fiberErr   *fiber.Error
	)

	switch {
	case errors.As(err, &validation):
		return fiber.StatusBadRequest, ErrorResponseWithDetails(fiber.StatusBadRequest, "Validation failed", validation.Fields)
	case errors.As(err, &limit):
		return fiber.StatusPaymentRequired, ErrorResponseWithDetails(fiber.StatusPaymentRequired, "Monthly spending limit exceeded", fiber.Map{
			"company_id":       limit.CompanyId,
			"limit":            limit.Limit.StringFixed(pricing.CostScale),
			"current_spending": limit.CurrentSpending.StringFixed(pricing.CostScale),
		})
	case errors.As(err, &empty):
		return fiber.StatusUnprocessableEntity, ErrorResponse(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, orchestration.ErrInvalidArgument):
		return fiber.StatusBadRequest, ErrorResponse(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden, ErrorResponse(fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound, ErrorResponse(fiber.StatusNotFound, err.Error())
	case errors.As(err, &fiberErr):
		return fiberErr.Code, ErrorResponse(fiberErr.Code, fiberErr.Message)
	case errors.As(err, &failure):
		return fiber.StatusInternalServerError, ErrorResponse(fiber.StatusInternalServerError, failure.Message)
	default:
		return fiber.StatusInternalServerError, ErrorResponse(fiber.StatusInternalServerError, "Internal server error")
	}
}
