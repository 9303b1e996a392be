package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"github.com/BijjaSagar/vashihat-nama/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"golang.org/x/time/rate"
)

type ctxKey string

const identityKey ctxKey = "identity"

func accessTokenFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.AccessTokenHeaderName)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// accessTokenInterceptor authenticates every non-public method and stores
// the caller's identity in the context. Owner methods reject nominee tokens
// and nominee methods reject owner tokens.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	accessToken := accessTokenFromContext(ctx)
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	id, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, "token expired")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	want := auth.KindUser
	if nomineeMethods[info.FullMethod] {
		want = auth.KindNominee
	}
	if id.Kind != want {
		return nil, status.Error(codes.PermissionDenied, "token not valid for this method")
	}

	ctx = context.WithValue(ctx, identityKey, id)
	return handler(ctx, req)
}

// Public methods share one token bucket each. They hash codes and send SMS
// before any caller is known.
const (
	publicRateLimit = 10
	publicRateBurst = 20
)

func newPublicLimiters() map[string]*rate.Limiter {
	m := make(map[string]*rate.Limiter, len(publicMethods))
	for method := range publicMethods {
		m[method] = rate.NewLimiter(rate.Limit(publicRateLimit), publicRateBurst)
	}
	return m
}

// rateLimitInterceptor rejects calls to a public method once its bucket is
// empty. Authenticated methods are not limited here.
func (s *GRPCServer) rateLimitInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if l, ok := s.limiters[info.FullMethod]; ok && !l.Allow() {
		return nil, status.Error(codes.ResourceExhausted, "too many requests")
	}
	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "request", "method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start))
	return resp, err
}

func identityFrom(ctx context.Context) (*auth.Identity, error) {
	id, ok := ctx.Value(identityKey).(*auth.Identity)
	if !ok || id == nil {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return id, nil
}

func userIDFrom(ctx context.Context) (int64, error) {
	id, err := identityFrom(ctx)
	if err != nil {
		return 0, err
	}
	if id.Kind != auth.KindUser {
		return 0, status.Error(codes.PermissionDenied, "owner token required")
	}
	return id.UserID, nil
}
