package protocal

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"perk-roulette/configs"
	httpAdapter "perk-roulette/internal/adapters/input/http"
	"perk-roulette/internal/adapters/output/catalogfile"
	lineAdapter "perk-roulette/internal/adapters/output/line"
	"perk-roulette/internal/application"

	swagger "github.com/arsmn/fiber-swagger/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
)

type config struct {
	ENV string `mapstructure:"env"`
}

// ServeHTTP func
func ServeHTTP() error {
	app := fiber.New()
	var cfg config
	flag.StringVar(&cfg.ENV, "env", "", "the environment to use")
	flag.Parse()
	configs.InitViper("./configs", cfg.ENV)
	conf := configs.GetViper()
	logrus.Info(conf.Env)
	if conf.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept,Authorization",
	}))

	catalog, err := catalogfile.Load(conf.Roulette.CatalogPath)
	if err != nil {
		return err
	}
	logrus.Infof("Loaded %d perks from %s", catalog.Len(), conf.Roulette.CatalogPath)

	store, err := newConstraintStore(conf)
	if err != nil {
		return err
	}
	if err := store.Ping(context.Background()); err != nil {
		logrus.Warnf("Constraint store not reachable yet: %v", err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		for range c {
			log.Println("Gracefull shut down ...")
			err := app.Shutdown()
			if err != nil {
				log.Println("Error when shutdown server: ", err)
			}
			if err := store.Close(); err != nil {
				log.Println("Error when closing store: ", err)
			}
		}
	}()

	// Wire up the hexagonal architecture layers
	// Application service (use case)
	registry := application.NewSessionRegistry(store, catalog, conf.Store.TimeoutDuration())
	srv := application.NewRouletteService(catalog, store, registry, application.RouletteConfig{
		BuildSize:    conf.Roulette.BuildSize,
		MaxRepeat:    conf.Roulette.MaxRepeat,
		StoreTimeout: conf.Store.TimeoutDuration(),
	})
	// Input adapter (HTTP handler)
	hdl := httpAdapter.New(srv)

	// Wire up LINE hexagonal architecture
	// Output adapter (LINE client)
	lineClient, err := lineAdapter.NewLineClientAdapter(conf.Line.ChannelToken)
	if err != nil {
		logrus.Fatalf("Failed to create LINE client: %v", err)
	}
	// Application service (LINE webhook use case)
	lineWebhookSrv := application.NewLineWebhookService(lineClient, srv, conf.Line.ImageBaseURL)
	// Input adapter (LINE webhook handler)
	lineWebhookHdl := httpAdapter.NewLineWebhookHandler(lineWebhookSrv, conf.Line.ChannelSecret)
	app.Get("/swagger/*", swagger.HandlerDefault) // default

	var limiter fiber.Handler
	if conf.RateLimit.RPS > 0 {
		limiter = httpAdapter.NewRateLimiter(conf.RateLimit.RPS, conf.RateLimit.Burst).Handler()
	}
	hdl.Register(app, limiter)

	// LINE webhook endpoint
	webhook := app.Group("/webhook")
	{
		webhook.Post("/line", lineWebhookHdl.HandleWebhook)
	}

	logrus.Println("Listerning on port: ", conf.App.Port)
	return app.Listen(":" + conf.App.Port)
}
