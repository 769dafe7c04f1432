// Package monitor exposes read-only views over the observers: running
// statistics, security alerts and audit trails.
package monitor

import (
	"github.com/gofiber/fiber/v2"

	"github.com/triopay/triopay/pkg/app"
	"github.com/triopay/triopay/pkg/domain/tx"
	"github.com/triopay/triopay/webapi/common"
)

// Routes registers the monitoring endpoints.
//
// Routes:
//   - GET /stats                   : Statistics aggregator snapshot.
//   - GET /alerts                  : Security alerts raised so far.
//   - GET /audit/:operator         : One operator's audit trail.
func Routes(fapp *fiber.App, a *app.App) {
	fapp.Get("/stats", Stats(a))
	fapp.Get("/alerts", Alerts(a))
	fapp.Get("/audit/:operator", Audit(a))
}

// Stats returns the handler serving the statistics snapshot.
func Stats(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK,
			"Statistics snapshot", a.Deps.Stats.SnapshotNow())
	}
}

// Alerts returns the handler serving raised security alerts.
func Alerts(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK,
			"Security alerts", a.Deps.Security.Alerts())
	}
}

// Audit returns the handler serving one operator's audit trail.
func Audit(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		operator := tx.OperatorKind(c.Params("operator"))
		trail, ok := a.Deps.Audit[operator]
		if !ok {
			return common.ErrorResponseJSON(c, fiber.StatusNotFound,
				"Unknown operator", "no audit trail for "+operator.String())
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK,
			"Audit trail", trail.Entries())
	}
}
