package delivery

import (
	"context"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AppOptions - настройки HTTP приложения
type AppOptions struct {
	AllowOrigins string
	// ProxyHeader - заголовок с IP клиента; пусто - адрес соединения
	ProxyHeader string
	// Gatherer - источник метрик для GET /metrics; nil отключает эндпоинт
	Gatherer  prometheus.Gatherer
	AccessLog bool
}

// NewApp собирает fiber приложение с middleware и маршрутами
func NewApp(opts AppOptions, search *SearchHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "user-search",
		ProxyHeader:           opts.ProxyHeader,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})

	// Middleware
	if opts.AccessLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())
	if opts.AllowOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: opts.AllowOrigins,
			AllowMethods: "GET,POST,OPTIONS",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return respondOK(c, fiber.Map{"status": "ok"})
	})

	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	// Поиск пользователей с debounce по IP
	app.Post("/search", search.Search)

	return app
}

// Serve - обслуживает ln до отмены ctx. Затем вызывает beforeShutdown (например gate.Close)
// и возвращается только после завершения обработки текущих запросов или истечения timeout.
func Serve(ctx context.Context, app *fiber.App, ln net.Listener, timeout time.Duration, beforeShutdown func()) error {
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listener(ln)
	}()

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
	}

	if beforeShutdown != nil {
		beforeShutdown()
	}
	if err := app.ShutdownWithTimeout(timeout); err != nil {
		return err
	}
	return <-listenErr
}
