package routes

import (
	"betaffiliate/controllers/admin"
	"betaffiliate/controllers/user"
	"betaffiliate/controllers/webhook"
	"betaffiliate/helpers"
	"betaffiliate/middlewares"
	"betaffiliate/services/postback"
	"betaffiliate/services/stats"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Options struct {
	JWTSecret       string
	TrackingBaseURL string
	RecordOrphans   bool
	StatsCache      *stats.Cache
	StatsMaxAge     time.Duration
}

func Setup(app *fiber.App, opts Options) {
	houseAuth := middlewares.HouseAuth()
	receive := webhook.ReceiveConversion(postback.Options{RecordOrphans: opts.RecordOrphans})

	//postbacks
	app.Get("/webhook/ping", houseAuth, webhook.Ping)
	app.Get("/webhook/conversions", houseAuth, receive)
	app.Post("/webhook/conversions", houseAuth, receive)
	app.Get("/postback/:house/:event", houseAuth, receive)
	app.Post("/postback/:house/:event", houseAuth, receive)

	//admin
	adminroutes := app.Group("/api/admin", middlewares.JWTAuth(opts.JWTSecret, helpers.RoleAdmin))
	adminroutes.Get("/houses", admin.ListHouses)
	adminroutes.Post("/houses", admin.CreateHouse)
	adminroutes.Put("/houses/:id", admin.UpdateHouse)
	adminroutes.Post("/houses/:id/rotate-key", admin.RotateHouseKey)
	adminroutes.Get("/affiliates", admin.ListAffiliates)
	adminroutes.Post("/affiliates", admin.CreateAffiliate)
	adminroutes.Post("/links", admin.CreateLink(opts.TrackingBaseURL))
	adminroutes.Delete("/links/:id", admin.DeactivateLink)

	reports := &admin.Reports{Cache: opts.StatsCache, MaxAge: opts.StatsMaxAge}
	adminroutes.Get("/reports/by-affiliate", reports.ByAffiliate)
	adminroutes.Get("/reports/by-house", reports.ByHouse)
	adminroutes.Get("/reports/by-event", reports.ByEvent)

	//affiliate
	userroutes := app.Group("/api/user", middlewares.JWTAuth(opts.JWTSecret, helpers.RoleAffiliate))
	userroutes.Get("/stats", user.Stats)
	userroutes.Get("/conversions", user.Conversions)
	userroutes.Get("/links", user.Links)
}
