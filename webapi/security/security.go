// Package security exposes demo producers for security events, standing
// in for the authentication layer that lives outside this core.
package security

import (
	"github.com/gofiber/fiber/v2"

	"github.com/triopay/triopay/pkg/app"
	"github.com/triopay/triopay/pkg/domain/events"
	"github.com/triopay/triopay/webapi/common"
)

// LoginEventRequest represents a login outcome report.
type LoginEventRequest struct {
	User string `json:"user" validate:"required,min=2,max=64"`
}

// Routes registers the security event endpoints.
//
// Routes:
//   - POST /security/login-failed    : Publish a login-failure event.
//   - POST /security/login-succeeded : Publish a login-success event.
func Routes(fapp *fiber.App, a *app.App) {
	fapp.Post("/security/login-failed", publishLogin(a,
		events.EventTypeLoginFailed, "login attempt failed"))
	fapp.Post("/security/login-succeeded", publishLogin(a,
		events.EventTypeLoginSucceeded, "login succeeded"))
}

func publishLogin(a *app.App, kind events.EventType, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LoginEventRequest](c)
		if input == nil {
			return err
		}
		e := events.New(kind, "auth", message, events.WithField("user", input.User))
		if err := a.Deps.Bus.Publish(c.UserContext(), e); err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusServiceUnavailable,
				"Event not accepted", err.Error())
		}
		return common.SuccessResponseJSON(c, fiber.StatusAccepted,
			"Event published", fiber.Map{"event_id": e.ID.String()})
	}
}
