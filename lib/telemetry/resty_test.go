package telemetry

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestHeaderAttributesRedactsCredentials(t *testing.T) {
	headers := http.Header{}
	headers.Set("Cookie", "ltoken_v2=secret; ltuid_v2=1")
	headers.Set("authorization", "Bearer secret")
	headers.Add("Accept", "application/json")
	headers.Add("Accept", "text/html")

	attrs := headerAttributes("request", headers)
	values := map[string]string{}
	for _, a := range attrs {
		values[string(a.Key)] = a.Value.AsString()
	}

	require.Equal(t, "<redacted>", values["request/header: Cookie"])
	require.Equal(t, "<redacted>", values["request/header: Authorization"])
	require.Equal(t, "application/json, text/html", values["request/header: Accept"])
	for _, v := range values {
		require.NotContains(t, v, "secret")
	}
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short"))

	long := strings.Repeat("a", maxBodyAttribute+10)
	out := truncate(long)
	require.True(t, strings.HasPrefix(out, strings.Repeat("a", maxBodyAttribute)))
	require.True(t, strings.HasSuffix(out, "(10 bytes omitted)"))
}

func TestInstrumentRestyRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`{"retcode":0}`))
	}))
	defer srv.Close()

	client := resty.New()
	InstrumentResty(client, "starrail.test")

	res, err := client.R().Get(srv.URL + "/page")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())

	res, err = client.R().SetBody(map[string]string{"content": "hi"}).Post(srv.URL + "/webhook")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())
}

func TestRequestBodyWithoutBody(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://localhost/", nil)
	require.NoError(t, err)
	req.GetBody = func() (io.ReadCloser, error) { return nil, nil }

	_, ok := requestBody(req)
	require.False(t, ok)

	req, err = http.NewRequest(http.MethodPost, "http://localhost/", strings.NewReader("payload"))
	require.NoError(t, err)
	body, ok := requestBody(req)
	require.True(t, ok)
	require.Equal(t, "payload", body)
}
