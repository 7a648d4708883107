package health

import (
	"context"
	"io"
	"log"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"stacker/backend/internal/core/domain/event"
)

func check(t *testing.T, r *Reporter) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := r.Server().Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	return resp.GetStatus()
}

func TestReporter_GameOverFlipsStatus(t *testing.T) {
	bus := event.NewBus()
	r := NewReporter(log.New(io.Discard, "", 0))
	r.Attach(bus)

	if status := check(t, r); status != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("Expected SERVING, got %v", status)
	}

	bus.Publish(event.ScoreChanged{Score: 3, Text: "Score: 3"})
	if status := check(t, r); status != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("Expected score events to keep SERVING, got %v", status)
	}

	bus.Publish(event.GameOver{FinalScore: 3})
	if status := check(t, r); status != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("Expected NOT_SERVING after game over, got %v", status)
	}
}

func TestReporter_ServeOverGRPC(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	r := NewReporter(log.New(io.Discard, "", 0))
	s := grpc.NewServer()
	go r.Serve(s, lis)
	defer s.Stop()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatalf("Remote check failed: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("Expected SERVING, got %v", resp.GetStatus())
	}
}
