package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/cryptobulldev/userdash/internal/common"
)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AuthorizationMetadataKey)
	if token != "" {
		md.Set(common.AuthorizationMetadataKey, common.BearerPrefix+token)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

// UnaryInterceptor applies the gateway's credential handling to gRPC calls:
// codes.Unauthenticated plays the role of HTTP 401.
func (g *Gateway) UnaryInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		stale := g.store.Get().Access()

		err := invoker(withAccessToken(ctx, stale), method, req, reply, cc, opts...)
		if status.Code(err) != codes.Unauthenticated {
			return err
		}
		st, _ := status.FromError(err)
		original := &StatusError{StatusCode: http.StatusUnauthorized, Code: st.Code().String(), Message: st.Message()}

		reason := RetryReused
		fresh := g.store.Get().Access()
		if fresh == "" || fresh == stale {
			reason = RetryRefreshed
			fresh, err = g.coord.Obtain(ctx)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				g.metrics.authFailure()
				original.Cause = err
				return original
			}
		}

		g.metrics.retry(reason)
		err = invoker(withAccessToken(ctx, fresh), method, req, reply, cc, opts...)
		if status.Code(err) == codes.Unauthenticated {
			g.metrics.authFailure()
			st, _ := status.FromError(err)
			return &StatusError{StatusCode: http.StatusUnauthorized, Code: st.Code().String(), Message: st.Message()}
		}
		return err
	}
}

// DialGRPC opens a plaintext client connection that authenticates through
// the gateway.
func (g *Gateway) DialGRPC(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(g.UnaryInterceptor()),
	}, opts...)
	return grpc.NewClient(addr, opts...)
}

// Ping checks the server's gRPC health service.
func Ping(ctx context.Context, cc grpc.ClientConnInterface) error {
	resp, err := healthpb.NewHealthClient(cc).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return mapError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: health status %s", ErrUnavailable, resp.GetStatus())
	}
	return nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var se *StatusError
	if errors.As(err, &se) {
		return err
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
