package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/kitlibrarian/internal/common"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

// SubjectKey holds the authenticated token subject in the request context.
const SubjectKey ctxKey = "subject"

// accessTokenInterceptor requires a valid admin token on every admin method.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if strings.HasPrefix(info.FullMethod, "/"+ServiceName+"/") {

		var accessToken string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			values := md.Get(common.AccessTokenHeaderName)
			if len(values) > 0 {
				accessToken = values[0]
			}
		}
		if len(accessToken) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		subject, err := auth.GetSubjectFromToken(accessToken, s.jwtSecret)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				return nil, status.Error(codes.Unauthenticated, "token expired")
			}
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		if subject != auth.AdminSubject {
			return nil, status.Error(codes.PermissionDenied, "admin token required")
		}

		ctx = context.WithValue(ctx, SubjectKey, subject)

	}

	return handler(ctx, req)
}
