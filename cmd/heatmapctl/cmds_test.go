package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jengzang/heatmap-backend-go/internal/heatmap"
	"github.com/jengzang/heatmap-backend-go/internal/middleware"
	"github.com/jengzang/heatmap-backend-go/internal/service"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestIngestAndQuery(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	_, err := run(t, "ingest", "--db", db, "--metric", "latency", "--entity", "svc",
		"--time-bucket", "20261016", "--dataset", "0,1|5,2")
	require.NoError(t, err)
	_, err = run(t, "ingest", "--db", db, "--metric", "latency", "--entity", "svc",
		"--time-bucket", "20261016", "--dataset", "5,3", "--merge")
	require.NoError(t, err)

	out, err := run(t, "query", "--db", db, "--metric", "latency", "--entity", "svc",
		"--start", "2026-10-15", "--end", "2026-10-16", "--step", "DAY", "--default=-1")
	require.NoError(t, err)

	var got struct {
		Buckets []heatmap.Bucket `json:"buckets"`
		Values  []heatmap.Column `json:"values"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, []heatmap.Bucket{heatmap.NewBucket(0, 5), heatmap.NewInfiniteBucket(5)}, got.Buckets)
	require.Equal(t, []heatmap.Column{
		{ID: "20261015_svc", Values: []int64{-1, -1}},
		{ID: "20261016_svc", Values: []int64{1, 5}},
	}, got.Values)
}

func TestIngestRejectsBadDataset(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")
	_, err := run(t, "ingest", "--db", db, "--metric", "latency", "--entity", "svc",
		"--time-bucket", "20261016", "--dataset", "low,1")
	require.ErrorIs(t, err, service.ErrInvalidRow)
}

func TestQueryRequiresFlags(t *testing.T) {
	_, err := run(t, "query", "--metric", "latency")
	require.Error(t, err)
}

func TestToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	out, err := run(t, "token", "dashboard", "--ttl", "1h")
	require.NoError(t, err)

	claims, err := middleware.ParseToken("cli-secret", strings.TrimSpace(out))
	require.NoError(t, err)
	require.Equal(t, "dashboard", claims.Subject)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}
