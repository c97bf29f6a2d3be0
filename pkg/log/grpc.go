package log

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const metadataKeyRequestID = "x-request-id"

// UnaryServerInterceptor injects a request-scoped logger into the context
// and logs each completed unary call.
func UnaryServerInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		ctx, child := grpcContext(ctx, logger, info.FullMethod)

		resp, err := handler(ctx, req)

		logCall(child, err, start, "unary call completed")
		return resp, err
	}
}

// StreamServerInterceptor is the streaming counterpart of
// UnaryServerInterceptor.
func StreamServerInterceptor(logger zerolog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		ctx, child := grpcContext(ss.Context(), logger, info.FullMethod)

		err := handler(srv, &wrappedStream{ServerStream: ss, ctx: ctx})

		logCall(child, err, start, "stream call completed")
		return err
	}
}

func grpcContext(ctx context.Context, logger zerolog.Logger, method string) (context.Context, zerolog.Logger) {
	reqID := requestIDOrNew(requestIDFromMD(ctx))
	child := logger.With().
		Str(FieldRequestID, reqID).
		Str(FieldGRPCMethod, method).
		Logger()
	return WithRequestID(WithLogger(ctx, child), reqID), child
}

func logCall(l zerolog.Logger, err error, start time.Time, msg string) {
	code := status.Code(err)

	evt := l.Info()
	switch code {
	case codes.OK:
	case codes.InvalidArgument, codes.NotFound, codes.AlreadyExists, codes.Canceled:
		evt = l.Warn()
	default:
		evt = l.Error()
	}

	evt.Str(FieldGRPCCode, code.String()).
		Float64(FieldLatency, float64(time.Since(start).Milliseconds())).
		Err(err).
		Msg(msg)
}

// wrappedStream overrides Context() to carry the child logger.
type wrappedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedStream) Context() context.Context {
	return w.ctx
}

func requestIDFromMD(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(metadataKeyRequestID); len(vals) > 0 {
			return vals[0]
		}
	}
	return ""
}
