// Package transaction exposes the transaction-processing endpoint. It is
// a thin boundary: it builds the request value, selects the operator
// specialization by its kind tag and serializes the pipeline result.
package transaction

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/triopay/triopay/pkg/app"
	"github.com/triopay/triopay/pkg/domain/tx"
	"github.com/triopay/triopay/pkg/money"
	"github.com/triopay/triopay/webapi/common"
)

// Routes registers the transaction endpoints.
//
// Routes:
//   - POST /transactions/:operator : Run a transaction through the named
//     operator's pipeline (bank, mobile-money, microfinance).
func Routes(fapp *fiber.App, a *app.App) {
	fapp.Post("/transactions/:operator", Process(a))
}

// Process returns the handler running the pipeline for one operator.
func Process(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		operator := tx.OperatorKind(c.Params("operator"))
		proc, err := a.ProcessorFor(operator)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusNotFound,
				"Unknown operator", err.Error())
		}

		input, err := common.BindAndValidate[ProcessRequest](c)
		if input == nil {
			return err // error response already written
		}

		currency := money.Code(a.Cfg.Currency)
		if input.Currency != "" {
			currency = money.Code(input.Currency)
		}
		amount, err := money.New(input.Amount, currency)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest,
				"Invalid amount", err.Error())
		}

		req, err := tx.NewRequest(
			input.SourceAccount,
			input.DestAccount,
			amount,
			tx.Kind(input.Kind),
			input.Description,
		)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest,
				"Invalid transaction request", err.Error())
		}

		res := proc.Process(c.UserContext(), req)
		if res.Failed() {
			log.Infof("transaction rejected by %s pipeline: %s", operator, res.ErrReason)
			// The result is still returned: callers need the step log
			// and the computed fee for diagnostics.
			return c.Status(fiber.StatusUnprocessableEntity).JSON(common.Response{
				Status:  fiber.StatusUnprocessableEntity,
				Message: "Transaction rejected",
				Data:    toResultDTO(res),
			})
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated,
			"Transaction completed", toResultDTO(res))
	}
}
