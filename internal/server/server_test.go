package server_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/iamNilotpal/ignite/internal/engine"
	"github.com/iamNilotpal/ignite/internal/protocol"
	"github.com/iamNilotpal/ignite/internal/server"
	"github.com/iamNilotpal/ignite/pkg/logger"
	"github.com/iamNilotpal/ignite/pkg/options"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*server.Server, func()) {
	t.Helper()

	dir := t.TempDir()
	opts := options.NewDefaultOptions()
	opts.DataDir = dir

	eng, err := engine.New(context.Background(), &engine.Config{Options: &opts, Logger: logger.Nop()})
	require.NoError(t, err)

	srv, err := server.New(&server.Config{
		Addr:    "127.0.0.1:0",
		Engine:  eng,
		Workers: 2,
		Logger:  logger.Nop(),
	})
	require.NoError(t, err)

	go srv.Serve()

	return srv, func() {
		_ = srv.Shutdown()
		_ = eng.Close()
	}
}

func dial(t *testing.T, addr string) (*protocol.Reader, *protocol.Writer, net.Conn) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err)
	return protocol.NewReader(conn), protocol.NewWriter(conn), conn
}

func TestServer_SetGetRemove(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	reader, writer, conn := dial(t, srv.Addr())
	defer conn.Close()

	require.NoError(t, writer.WriteRequest(protocol.NewSetRequest("key", "value")))
	resp, err := reader.ReadResponse()
	require.NoError(t, err)
	require.Equal(t, protocol.ResponseOk, resp.Kind)

	require.NoError(t, writer.WriteRequest(protocol.NewGetRequest("key")))
	resp, err = reader.ReadResponse()
	require.NoError(t, err)
	require.Equal(t, protocol.ResponseValue, resp.Kind)
	require.NotNil(t, resp.Value)
	require.Equal(t, "value", *resp.Value)

	require.NoError(t, writer.WriteRequest(protocol.NewRemoveRequest("key")))
	resp, err = reader.ReadResponse()
	require.NoError(t, err)
	require.Equal(t, protocol.ResponseOk, resp.Kind)

	require.NoError(t, writer.WriteRequest(protocol.NewGetRequest("key")))
	resp, err = reader.ReadResponse()
	require.NoError(t, err)
	require.Equal(t, protocol.ResponseValue, resp.Kind)
	require.Nil(t, resp.Value)
}

func TestServer_RemoveMissingKeyReturnsErr(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	reader, writer, conn := dial(t, srv.Addr())
	defer conn.Close()

	require.NoError(t, writer.WriteRequest(protocol.NewRemoveRequest("ghost")))
	resp, err := reader.ReadResponse()
	require.NoError(t, err)
	require.Equal(t, protocol.ResponseErr, resp.Kind)
	require.NotEmpty(t, resp.Err)
}

func TestServer_HandlesMultipleRequestsOnOneConnection(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	reader, writer, conn := dial(t, srv.Addr())
	defer conn.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, writer.WriteRequest(protocol.NewSetRequest("k", "v")))
		resp, err := reader.ReadResponse()
		require.NoError(t, err)
		require.Equal(t, protocol.ResponseOk, resp.Kind)
	}
}
