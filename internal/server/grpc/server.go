package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/kitlibrarian/internal/logging"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/reminders"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/retention"
	"google.golang.org/grpc"
)

// ReminderService is what the admin API needs from the reminder engine.
type ReminderService interface {
	Trigger(ctx context.Context) (reminders.Result, error)
	Preview(ctx context.Context, borrowerID string) (reminders.Email, error)
	Notifications(ctx context.Context, borrowerID string) ([]reminders.Notification, error)
}

// RetentionService runs the anonymization job on demand.
type RetentionService interface {
	Run(ctx context.Context) (retention.Result, error)
}

type GRPCServer struct {
	address   string
	reminders ReminderService
	retention RetentionService
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, rs ReminderService, ret RetentionService, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		reminders: rs,
		retention: ret,
		jwtSecret: []byte(secretKey),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {

	// creates gRPC-server
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))

	// registers service
	RegisterAdminServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
