package health

import (
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"stacker/backend/internal/core/domain/event"
)

// ServiceName имя сервиса в протоколе grpc.health.v1
const ServiceName = "stacker"

// Reporter публикует состояние игры через стандартный gRPC health-check.
// Пока партия идет, сервис SERVING, после конца игры NOT_SERVING
type Reporter struct {
	server *health.Server
	logger *log.Logger
}

// NewReporter создает репортер в состоянии SERVING
func NewReporter(logger *log.Logger) *Reporter {
	if logger == nil {
		logger = log.Default()
	}

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &Reporter{server: hs, logger: logger}
}

// Attach переводит сервис в NOT_SERVING по событию конца игры
func (r *Reporter) Attach(bus *event.Bus) func() {
	return bus.Subscribe(event.TopicGameOver, func(e event.Event) {
		over, ok := e.(event.GameOver)
		if !ok {
			return
		}
		r.logger.Printf("[Health] Игра окончена со счетом %d, статус NOT_SERVING", over.FinalScore)
		r.server.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	})
}

// Server возвращает реализацию health-сервиса
func (r *Reporter) Server() *health.Server {
	return r.server
}

// Register добавляет health-сервис в gRPC сервер
func (r *Reporter) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, r.server)
}

// Serve запускает gRPC сервер на lis. Блокирует до остановки сервера
func (r *Reporter) Serve(s *grpc.Server, lis net.Listener) error {
	r.Register(s)
	r.logger.Printf("[Health] gRPC health-check слушает %s", lis.Addr())
	return s.Serve(lis)
}

// Shutdown помечает все сервисы NOT_SERVING
func (r *Reporter) Shutdown() {
	r.server.Shutdown()
}
