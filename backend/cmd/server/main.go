package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"stacker/backend/internal/adapter/in/health"
	"stacker/backend/internal/adapter/in/ws"
	cpadapter "stacker/backend/internal/adapter/out/physics"
	"stacker/backend/internal/core/domain/service"
	"stacker/backend/internal/game"
	"stacker/backend/internal/physics"
)

func main() {
	var (
		addr        = flag.String("addr", ":8080", "Адрес HTTP/WebSocket сервера")
		grpcAddr    = flag.String("grpc", ":9090", "Адрес gRPC health-check")
		tps         = flag.Int("tps", 60, "Частота тиков в секунду")
		gravity     = flag.Float64("gravity", physics.DefaultPhysicsConfig().Gravity, "Гравитация по оси z")
		updateEvery = flag.Uint64("update-every", 3, "Рассылать позиции раз в N тиков")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg := physics.GetPhysicsConfig()
	cfg.Gravity = *gravity
	physics.SetPhysicsConfig(cfg)

	physicsAdapter := cpadapter.NewCPPhysicsAdapter(logger)
	defer physicsAdapter.Close()

	world := service.NewWorld(physicsAdapter, service.DefaultStackConfig(), logger)
	world.LoadWorld()

	ticker := game.NewGameTicker(*tps, world, logger)

	wsAdapter := ws.NewWSAdapter(ticker, logger)
	wsAdapter.UpdateEvery = *updateEvery
	wsAdapter.Attach(world.Events())
	ticker.OnTick(wsAdapter.BroadcastUpdate)

	reporter := health.NewReporter(logger)
	reporter.Attach(world.Events())

	lis, err := net.Listen("tcp", *grpcAddr)
	if err != nil {
		logger.Fatalf("[Server] Не удалось открыть %s: %v", *grpcAddr, err)
	}
	grpcServer := grpc.NewServer()
	go func() {
		if err := reporter.Serve(grpcServer, lis); err != nil {
			logger.Printf("[Server] gRPC сервер остановлен: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsAdapter.HandleWS)
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		stats := ticker.GetStats()
		stats["systems"] = ticker.GetSystemsStats()
		stats["clients"] = wsAdapter.ClientCount()
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			logger.Printf("[Server] Ошибка при отправке статистики: %v", err)
		}
	})

	httpServer := &http.Server{Addr: *addr, Handler: mux}

	if err := ticker.Start(); err != nil {
		logger.Fatalf("[Server] Не удалось запустить игровой цикл: %v", err)
	}

	go func() {
		logger.Printf("[Server] WebSocket сервер слушает %s", *addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("[Server] Ошибка HTTP сервера: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Printf("[Server] Завершение работы...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ticker.Stop()
	wsAdapter.Close()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Printf("[Server] Ошибка остановки HTTP сервера: %v", err)
	}
	reporter.Shutdown()
	grpcServer.GracefulStop()
}
