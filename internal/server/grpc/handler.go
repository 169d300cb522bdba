package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/kitlibrarian/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// toStatus maps service errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrCycleInProgress):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, common.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *GRPCServer) RunCycle(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {

	s.logger.Info(ctx, "Manual reminder cycle requested")

	res, err := s.reminders.Trigger(ctx)
	if err != nil {
		s.logger.Error(ctx, err.Error())
		return nil, toStatus(err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"sent":     res.Sent,
		"skipped":  res.Skipped,
		"total":    res.Total,
		"disabled": res.Disabled,
	})
}

func (s *GRPCServer) PreviewEmail(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {

	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "borrower id is required")
	}

	email, err := s.reminders.Preview(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"subject": email.Subject,
		"text":    email.Text,
		"html":    email.HTML,
	})
}

func (s *GRPCServer) ListBorrowerNotifications(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {

	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "borrower id is required")
	}

	items, err := s.reminders.Notifications(ctx, req.GetValue())
	if err != nil {
		s.logger.Error(ctx, err.Error())
		return nil, toStatus(err)
	}

	list := make([]interface{}, 0, len(items))
	for _, n := range items {
		list = append(list, map[string]interface{}{
			"id":      n.ID,
			"loan_id": n.LoanID,
			"kind":    n.Kind,
			"title":   n.Title,
			"message": n.Message,
			"sent_at": n.SentAt.UTC().Format(time.RFC3339),
		})
	}

	return structpb.NewStruct(map[string]interface{}{"notifications": list})
}

func (s *GRPCServer) RunRetention(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {

	res, err := s.retention.Run(ctx)
	if err != nil {
		s.logger.Error(ctx, err.Error())
		return nil, toStatus(err)
	}

	return structpb.NewStruct(map[string]interface{}{"updated": res.Updated})
}
