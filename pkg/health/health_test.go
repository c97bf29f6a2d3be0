package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMetadataClient struct {
	mock.Mock
}

func (m *mockMetadataClient) GetMetadata(ctx context.Context, params *imds.GetMetadataInput, optFns ...func(*imds.Options)) (*imds.GetMetadataOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*imds.GetMetadataOutput)
	return out, args.Error(1)
}

var fixedNow = func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }

func TestReportDefaults(t *testing.T) {
	c := NewChecker(WithClock(fixedNow))
	r := c.Report(context.Background())

	assert.Equal(t, StatusHealthy, r.Status)
	assert.Equal(t, "2026-10-16T12:00:00Z", r.Timestamp)
	assert.Equal(t, DefaultEnvironment, r.Environment)
	assert.Empty(t, r.Instance)
}

func TestReportInstance(t *testing.T) {
	c := NewChecker(WithEnvironment("staging"), WithInstance(StaticInstance("i-0abc")))
	r := c.Report(context.Background())
	assert.Equal(t, "staging", r.Environment)
	assert.Equal(t, "i-0abc", r.Instance)

	client := new(mockMetadataClient)
	client.On("GetMetadata", mock.Anything, &imds.GetMetadataInput{Path: "instance-id"}).
		Return(nil, errors.New("no route to host"))

	c = NewChecker(WithInstance(NewIMDSResolverWithClient(client, time.Second)))
	assert.Equal(t, UnknownInstance, c.Report(context.Background()).Instance)
}

func TestIMDSResolverCachesSuccess(t *testing.T) {
	client := new(mockMetadataClient)
	client.On("GetMetadata", mock.Anything, &imds.GetMetadataInput{Path: "instance-id"}).
		Return(&imds.GetMetadataOutput{Content: io.NopCloser(strings.NewReader("i-123\n"))}, nil).
		Once()

	r := NewIMDSResolverWithClient(client, 0)
	for i := 0; i < 3; i++ {
		id, err := r.InstanceID(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "i-123", id)
	}
	client.AssertExpectations(t)
}

func TestHandlers(t *testing.T) {
	c := NewChecker(WithClock(fixedNow), WithEnvironment("dev"))

	t.Run("gin", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		r := gin.New()
		r.GET("/health", c.GinHandler())

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var got Report
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, Report{Status: "healthy", Timestamp: "2026-10-16T12:00:00Z", Environment: "dev"}, got)
	})

	t.Run("net/http", func(t *testing.T) {
		w := httptest.NewRecorder()
		c.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"status":"healthy","timestamp":"2026-10-16T12:00:00Z","environment":"dev"}`, w.Body.String())
	})
}
