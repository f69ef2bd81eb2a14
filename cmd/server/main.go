package main // Entry point package

import (
    "context"
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/quangtd/restaurant-table-orders/internal/broadcast"
    "github.com/quangtd/restaurant-table-orders/internal/config"
    "github.com/quangtd/restaurant-table-orders/internal/database"
    "github.com/quangtd/restaurant-table-orders/internal/handler"
    "github.com/quangtd/restaurant-table-orders/internal/lifecycle"
    "github.com/quangtd/restaurant-table-orders/internal/middleware"
    "github.com/quangtd/restaurant-table-orders/internal/queue"
    "github.com/quangtd/restaurant-table-orders/internal/repository"
    "github.com/quangtd/restaurant-table-orders/internal/router"
)

func main() {
    _ = godotenv.Load() // .env is optional; real deployments set the environment

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Redis is optional: without it the response cache and rate
    // limiter become pass-through middlewares.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Println("redis unavailable; response cache and rate limiting disabled")
    }

    orders := repository.NewOrderRepo(db)
    tables := repository.NewTableRepo(db)
    menu := repository.NewMenuRepo(db)
    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)

    hub := broadcast.NewHub()

    svc := lifecycle.New(orders, tables, menu, hub).
        WithJournal(func(ctx context.Context, ev broadcast.Event) error {
            return queue.PublishOrderEvent(ctx, orderEventFrom(ev))
        })

    // The journal consumer appends logs/orders.log; it reconnects on
    // its own and never takes the server down.
    go func() {
        if err := queue.StartOrderEventsConsumer(); err != nil {
            log.Printf("order-consumer stopped: %v", err)
        }
    }()

    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Recover())
    e.Use(echomw.Logger())
    e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

    h := router.Handlers{
        Auth:   handler.NewAuthHandler(cfg, users, tokens, tables),
        Menu:   handler.NewMenuHandler(menu),
        Tables: handler.NewTableHandler(svc, tables),
        Orders: handler.NewOrderHandler(svc),
        Users:  handler.NewUserAdminHandler(cfg, users),
        WS:     handler.NewWSHandler(hub),
    }
    cached := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
    router.Register(e, h, cfg.JWTSecret, cached)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}

func orderEventFrom(ev broadcast.Event) queue.OrderEvent {
    return queue.OrderEvent{
        EventType:        ev.Type,
        OrderID:          ev.Order.ID,
        OrderNumber:      ev.Order.Number,
        TableNumber:      ev.TableNumber,
        Status:           string(ev.Order.Status),
        ItemCount:        len(ev.Order.Items),
        TotalAmountCents: ev.Order.TotalCents,
        OccurredAt:       ev.Timestamp,
    }
}
