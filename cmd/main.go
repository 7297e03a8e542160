package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/amazing-outfits/shop-backend/internal/app"
	"github.com/amazing-outfits/shop-backend/internal/config"
	"github.com/amazing-outfits/shop-backend/internal/handler"
	"github.com/amazing-outfits/shop-backend/internal/mailer"
	"github.com/amazing-outfits/shop-backend/internal/middleware"
	"github.com/amazing-outfits/shop-backend/internal/paystack"
	"github.com/amazing-outfits/shop-backend/internal/postgres"
	"github.com/amazing-outfits/shop-backend/internal/repo"
	"github.com/amazing-outfits/shop-backend/internal/service"
	"github.com/amazing-outfits/shop-backend/pkg/trm"

	"github.com/joho/godotenv"
)

func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	db, err := postgres.New(conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	orderRepo := repo.NewPostgresRepo(db)
	txManager := trm.NewManager(db)

	gateway := paystack.New(conf.Paystack)
	mail := mailer.New(conf.Email)

	orderService := service.NewOrderService(logger, txManager, orderRepo, mail, conf.Shipping.Fee)
	paymentService := service.NewPaymentService(logger, gateway, orderRepo, mail, conf.Paystack.CallbackURL)

	auth := middleware.Auth(conf.Auth.JWTSecret)
	orderHandler := handler.NewOrderHandler(logger, orderService, auth)
	paymentHandler := handler.NewPaymentHandler(logger, paymentService, auth)
	handler.RegisterMetrics()

	app := app.New(logger, conf)
	app.SetHTTPHandlers(orderHandler, paymentHandler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	app.Start(ctx)
	<-ctx.Done()
	app.Stop()
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}
