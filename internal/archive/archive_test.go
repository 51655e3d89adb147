package archive

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stockroom/internal/config"
)

func TestSnapshotName(t *testing.T) {
	at := time.Date(2024, 3, 15, 13, 30, 5, 0, time.FixedZone("TRT", 3*3600))
	assert.Equal(t, "snapshots/20240315T103005Z.xlsx", SnapshotName(at))
}

func TestNewDisabled(t *testing.T) {
	a, err := New(config.Archive{}, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.IsType(t, Nop{}, a)
	assert.NoError(t, a.Put(context.Background(), "x.xlsx", strings.NewReader("payload"), 7))
}

func TestNewMinio(t *testing.T) {
	a, err := New(config.Archive{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "stockroom",
	}, zap.NewNop().Sugar())
	require.NoError(t, err)
	m, ok := a.(*MinioArchiver)
	require.True(t, ok)
	assert.Equal(t, "stockroom", m.Bucket())
}

func TestNewMinioBadEndpoint(t *testing.T) {
	_, err := NewMinio(config.Archive{Endpoint: "http://localhost:9000", Bucket: "b"}, zap.NewNop().Sugar())
	assert.Error(t, err)
}
