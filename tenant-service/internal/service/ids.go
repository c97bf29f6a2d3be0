package service

import (
	"context"
	"fmt"
	"time"

	"github.com/junoblue/launch/pkg/idrpc"
	"github.com/junoblue/launch/pkg/uild"
)

// IDSource mints UILDs for new records.
type IDSource interface {
	NewID(ctx context.Context, entityType string, md uild.Metadata) (string, error)
}

// LocalIDs mints ids in-process.
type LocalIDs struct {
	gen *uild.Generator
}

// NewLocalIDs wraps gen; nil uses a default generator.
func NewLocalIDs(gen *uild.Generator) *LocalIDs {
	if gen == nil {
		gen = uild.NewGenerator()
	}
	return &LocalIDs{gen: gen}
}

func (l *LocalIDs) NewID(_ context.Context, entityType string, md uild.Metadata) (string, error) {
	return l.gen.Generate(entityType, md)
}

// RemoteIDs asks id-service for ids and checks what comes back.
type RemoteIDs struct {
	client  *idrpc.Client
	timeout time.Duration
}

const uildFormat = "uild"

// NewRemoteIDs wraps an id-service client. A zero timeout leaves the
// caller's deadline alone.
func NewRemoteIDs(client *idrpc.Client, timeout time.Duration) *RemoteIDs {
	return &RemoteIDs{client: client, timeout: timeout}
}

func (r *RemoteIDs) NewID(ctx context.Context, entityType string, md uild.Metadata) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	resp, err := r.client.GenerateID(ctx, &idrpc.GenerateIDRequest{
		Type:     entityType,
		Format:   uildFormat,
		Metadata: md,
	})
	if err != nil {
		return "", fmt.Errorf("id-service: %w", err)
	}
	if got, ok := uild.TypeOf(resp.ID); !ok || got != entityType || !uild.Validate(resp.ID) {
		return "", fmt.Errorf("id-service returned %q, not a %s id", resp.ID, entityType)
	}
	return resp.ID, nil
}
