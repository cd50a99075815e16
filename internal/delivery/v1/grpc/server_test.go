package grpc

import (
	"context"
	"testing"

	"github.com/DRSN-tech/go-recommender/internal/cfg"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
	"github.com/m-mizutani/gt"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestGRPCServer_Health(t *testing.T) {
	ctx := context.Background()
	srv := NewGRPCServer(&cfg.GRPCConfig{Port: "0", NetworkMode: "tcp"}, logger.Nop{})

	resp, err := srv.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	gt.NoError(t, err).Required()
	gt.Value(t, resp.Status).Equal(healthpb.HealthCheckResponse_NOT_SERVING)

	srv.SetServing(true)
	resp, err = srv.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	gt.NoError(t, err).Required()
	gt.Value(t, resp.Status).Equal(healthpb.HealthCheckResponse_SERVING)

	resp, err = srv.health.Check(ctx, &healthpb.HealthCheckRequest{})
	gt.NoError(t, err).Required()
	gt.Value(t, resp.Status).Equal(healthpb.HealthCheckResponse_SERVING)
}
