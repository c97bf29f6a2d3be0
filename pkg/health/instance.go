package health

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
)

const instanceIDPath = "instance-id"

// MetadataClient is the slice of the EC2 instance metadata client the
// resolver needs.
type MetadataClient interface {
	GetMetadata(ctx context.Context, params *imds.GetMetadataInput, optFns ...func(*imds.Options)) (*imds.GetMetadataOutput, error)
}

// IMDSResolver reads the EC2 instance id from the instance metadata service
// and remembers it after the first success.
type IMDSResolver struct {
	client  MetadataClient
	timeout time.Duration

	mu sync.Mutex
	id string
}

// NewIMDSResolver returns a resolver backed by the SDK's IMDS client.
func NewIMDSResolver(timeout time.Duration) *IMDSResolver {
	return NewIMDSResolverWithClient(imds.New(imds.Options{}), timeout)
}

// NewIMDSResolverWithClient is NewIMDSResolver with an explicit client.
func NewIMDSResolverWithClient(client MetadataClient, timeout time.Duration) *IMDSResolver {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &IMDSResolver{client: client, timeout: timeout}
}

// InstanceID implements InstanceResolver.
func (r *IMDSResolver) InstanceID(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.id != "" {
		return r.id, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.client.GetMetadata(ctx, &imds.GetMetadataInput{Path: instanceIDPath})
	if err != nil {
		return "", fmt.Errorf("failed to query instance metadata: %w", err)
	}
	defer out.Content.Close()

	b, err := io.ReadAll(out.Content)
	if err != nil {
		return "", fmt.Errorf("failed to read instance id: %w", err)
	}

	r.id = strings.TrimSpace(string(b))
	return r.id, nil
}

// StaticInstance reports a fixed instance id.
type StaticInstance string

func (s StaticInstance) InstanceID(context.Context) (string, error) {
	return string(s), nil
}
