package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/junoblue/launch/id-service/internal/generator"
	"github.com/junoblue/launch/pkg/idrpc"
	pkglog "github.com/junoblue/launch/pkg/log"
	"github.com/junoblue/launch/pkg/uild"
)

type idServer struct {
	formats *generator.Formats
}

// NewIDServer returns the IDService implementation over formats.
func NewIDServer(formats *generator.Formats) idrpc.IDServiceServer {
	return &idServer{formats: formats}
}

func (s *idServer) getGenerator(format string) (generator.Generator, error) {
	gen, err := s.formats.Get(format)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return gen, nil
}

func (s *idServer) GenerateID(ctx context.Context, req *idrpc.GenerateIDRequest) (*idrpc.GenerateIDResponse, error) {
	gen, err := s.getGenerator(req.Format)
	if err != nil {
		return nil, err
	}

	id, err := gen.Generate(req.Type, req.Metadata)
	if err != nil {
		return nil, toStatus(err, "failed to generate ID")
	}

	l := pkglog.Ctx(ctx)
	l.Debug().Str(pkglog.FieldEntityType, req.Type).Str(pkglog.FieldID, id).Msg("id generated")

	return &idrpc.GenerateIDResponse{ID: id}, nil
}

func (s *idServer) GenerateBatchIDs(ctx context.Context, req *idrpc.GenerateBatchIDsRequest) (*idrpc.GenerateBatchIDsResponse, error) {
	gen, err := s.getGenerator(req.Format)
	if err != nil {
		return nil, err
	}

	ids, err := generator.GenerateBatch(gen, req.Type, int(req.Count), req.Metadata)
	if err != nil {
		return nil, toStatus(err, "failed to generate batch IDs")
	}

	return &idrpc.GenerateBatchIDsResponse{IDs: ids}, nil
}

func (s *idServer) ValidateID(ctx context.Context, req *idrpc.ValidateIDRequest) (*idrpc.ValidateIDResponse, error) {
	gen, err := s.getGenerator(req.Format)
	if err != nil {
		return nil, err
	}

	valid, reason := gen.Validate(req.ID)
	return &idrpc.ValidateIDResponse{Valid: valid, Reason: reason}, nil
}

func (s *idServer) ParseID(ctx context.Context, req *idrpc.ParseIDRequest) (*idrpc.ParseIDResponse, error) {
	gen, err := s.getGenerator(req.Format)
	if err != nil {
		return nil, err
	}

	result, err := gen.Parse(req.ID)
	if err != nil {
		return &idrpc.ParseIDResponse{Valid: false, ErrorMessage: err.Error()}, nil
	}
	return ParseResponse(result), nil
}

func (s *idServer) ListTypes(ctx context.Context, _ *idrpc.ListTypesRequest) (*idrpc.ListTypesResponse, error) {
	entries := s.formats.Registry().Entries()
	types := make([]idrpc.EntityType, 0, len(entries))
	for _, e := range entries {
		types = append(types, idrpc.EntityType{Type: e.Type, Prefix: e.Prefix})
	}
	return &idrpc.ListTypesResponse{
		Types:         types,
		Formats:       s.formats.Names(),
		DefaultFormat: s.formats.Default(),
	}, nil
}

// ParseResponse converts a parse result to its wire form.
func ParseResponse(r *generator.ParseResult) *idrpc.ParseIDResponse {
	return &idrpc.ParseIDResponse{
		Valid:         true,
		Format:        r.Format,
		EntityType:    r.EntityType,
		Prefix:        r.Prefix,
		Timestamp:     float64(r.TimestampMs) / 1000,
		TimestampMs:   r.TimestampMs,
		Nonce:         r.Nonce,
		Checksum:      r.Checksum,
		MachineID:     r.MachineID,
		Sequence:      r.Sequence,
		UUIDVersion:   r.UUIDVersion,
		UUIDVariant:   r.UUIDVariant,
		RandomPayload: r.RandomPayload,
		IDLength:      r.IDLength,
		Alphabet:      r.Alphabet,
	}
}

func toStatus(err error, msg string) error {
	switch {
	case errors.Is(err, uild.ErrUnknownType), errors.Is(err, uild.ErrInvalidCount):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, fmt.Sprintf("%s: %v", msg, err))
	}
}

// NewServer builds a gRPC server with the id service and the standard
// health service registered.
func NewServer(formats *generator.Formats, logger zerolog.Logger) (*grpc.Server, *health.Server) {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(pkglog.UnaryServerInterceptor(logger)),
		grpc.ChainStreamInterceptor(pkglog.StreamServerInterceptor(logger)),
	)
	idrpc.RegisterIDServiceServer(s, NewIDServer(formats))

	hs := health.NewServer()
	hs.SetServingStatus(idrpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	return s, hs
}

// Serve listens on addr and serves until the server is stopped.
func Serve(s *grpc.Server, addr string, logger zerolog.Logger) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	logger.Info().Str("addr", addr).Msg("grpc server listening")
	if err := s.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
