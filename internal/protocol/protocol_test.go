package protocol_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/iamNilotpal/ignite/internal/protocol"
	"github.com/stretchr/testify/require"
)

func TestRequest_MarshalJSON(t *testing.T) {
	cases := []struct {
		req  protocol.Request
		want string
	}{
		{protocol.NewSetRequest("foo", "bar"), `{"Set":{"key":"foo","value":"bar"}}`},
		{protocol.NewGetRequest("foo"), `{"Get":{"key":"foo"}}`},
		{protocol.NewRemoveRequest("foo"), `{"Remove":{"key":"foo"}}`},
	}
	for _, c := range cases {
		data, err := c.req.MarshalJSON()
		require.NoError(t, err)
		require.JSONEq(t, c.want, string(data))
	}
}

func TestRequest_RoundTrip(t *testing.T) {
	reqs := []protocol.Request{
		protocol.NewSetRequest("foo", "bar"),
		protocol.NewGetRequest("foo"),
		protocol.NewRemoveRequest("foo"),
	}
	for _, req := range reqs {
		var buf bytes.Buffer
		require.NoError(t, protocol.NewWriter(&buf).WriteRequest(req))

		got, err := protocol.NewReader(&buf).ReadRequest()
		require.NoError(t, err)
		require.Equal(t, req, got)
	}
}

func TestResponse_MarshalJSON(t *testing.T) {
	v := "bar"
	cases := []struct {
		resp protocol.Response
		want string
	}{
		{protocol.OkResponse(), `"Ok"`},
		{protocol.ValueResponse(&v), `{"Value":"bar"}`},
		{protocol.ValueResponse(nil), `{"Value":null}`},
		{protocol.ErrResponse("key not found"), `{"Err":"key not found"}`},
	}
	for _, c := range cases {
		data, err := c.resp.MarshalJSON()
		require.NoError(t, err)
		require.JSONEq(t, c.want, string(data))
	}
}

func TestResponse_RoundTrip(t *testing.T) {
	v := "bar"
	resps := []protocol.Response{
		protocol.OkResponse(),
		protocol.ValueResponse(&v),
		protocol.ValueResponse(nil),
		protocol.ErrResponse("key not found"),
	}
	for _, resp := range resps {
		var buf bytes.Buffer
		require.NoError(t, protocol.NewWriter(&buf).WriteResponse(resp))

		got, err := protocol.NewReader(&buf).ReadResponse()
		require.NoError(t, err)
		require.Equal(t, resp, got)
	}
}

func TestReader_MultipleMessagesOnOneStream(t *testing.T) {
	var buf bytes.Buffer
	w := protocol.NewWriter(&buf)
	require.NoError(t, w.WriteRequest(protocol.NewSetRequest("a", "1")))
	require.NoError(t, w.WriteRequest(protocol.NewGetRequest("a")))

	r := protocol.NewReader(&buf)
	first, err := r.ReadRequest()
	require.NoError(t, err)
	require.Equal(t, protocol.NewSetRequest("a", "1"), first)

	second, err := r.ReadRequest()
	require.NoError(t, err)
	require.Equal(t, protocol.NewGetRequest("a"), second)

	_, err = r.ReadRequest()
	require.ErrorIs(t, err, io.EOF)
}

func TestReader_MalformedMessage(t *testing.T) {
	r := protocol.NewReader(bytes.NewBufferString(`{"Bogus":{}}`))
	_, err := r.ReadRequest()
	require.Error(t, err)
	require.NotErrorIs(t, err, io.EOF)
}
