package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "stockbook/internal/log"
)

// Routes mounts the JSON API and the printable views on app.
func Routes(app *fiber.App, d *Deps) {
	app.Use(Authenticate(d.Auth))

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many attempts. Please try again later."})
		},
	}), d.AuthHandler.Login)
	auth.Post("/logout", d.AuthHandler.Logout)
	auth.Post("/register", d.AuthHandler.Register)

	// registered after /auth so login and register stay public
	user := api.Group("", RequireUser())

	user.Get("/products", d.ProductHandler.List)
	user.Post("/products", d.ProductHandler.Create)
	user.Get("/products/export.xlsx", d.InventoryHandler.ExportProducts)
	user.Post("/products/delete", d.ProductHandler.Delete)
	user.Get("/products/:id", d.ProductHandler.Get)
	user.Put("/products/:id", d.ProductHandler.Update)
	user.Post("/products/:id/incoming", d.InventoryHandler.Incoming)
	user.Post("/products/:id/outgoing", d.InventoryHandler.Outgoing)
	user.Get("/products/:id/ledger", d.InventoryHandler.Ledger)
	user.Get("/products/:id/ledger.xlsx", d.InventoryHandler.LedgerXLSX)

	user.Get("/categories", d.CategoryHandler.List)
	user.Post("/categories", d.CategoryHandler.Create)
	user.Post("/categories/delete", d.CategoryHandler.Delete)
	user.Put("/categories/:id", d.CategoryHandler.Rename)

	user.Get("/customers", d.CustomerHandler.List)
	user.Post("/customers", d.CustomerHandler.Create)
	user.Post("/customers/delete", d.CustomerHandler.Delete)
	user.Put("/customers/:id", d.CustomerHandler.Update)

	user.Get("/deliveries", d.DeliveryHandler.List)
	user.Post("/deliveries", d.DeliveryHandler.Create)
	user.Get("/deliveries/next-number", d.DeliveryHandler.NextNumber)
	user.Post("/deliveries/discard", d.DeliveryHandler.Discard)
	user.Post("/deliveries/check-line", d.DeliveryHandler.CheckLine)
	user.Get("/deliveries/:id", d.DeliveryHandler.Get)
	user.Put("/deliveries/:id", d.DeliveryHandler.Update)
	user.Post("/deliveries/:id/close", d.DeliveryHandler.Close)

	user.Get("/dashboard", d.DashboardHandler.Summary)

	admin := api.Group("/admin", RequireAdmin())
	admin.Get("/users", d.AdminHandler.Users)
	admin.Get("/registrations", d.AdminHandler.Registrations)
	admin.Post("/registrations/:id/approve", d.AdminHandler.Approve)
	admin.Post("/registrations/:id/reject", d.AdminHandler.Reject)
	admin.Post("/users/:id/delete", d.AdminHandler.DeleteUser)
	admin.Post("/users/:id/reset-password", d.AdminHandler.ResetPassword)
	admin.Get("/logs", d.AdminHandler.Logs)

	app.Get("/deliveries/:id/print", RequireUser(), d.DeliveryHandler.Print)
	app.Get("/products/:id/card", RequireUser(), d.ProductHandler.Card)
}
