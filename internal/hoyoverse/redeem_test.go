package hoyoverse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"starrail-backend/internal/codes"
	"starrail-backend/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time           { return c.now }
func (c fixedClock) Location() *time.Location { return time.UTC }

func jsonHandler(status int, body string, inspect func(r *http.Request)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inspect != nil {
			inspect(r)
		}
		w.Header().Set("content-type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
}

var testAccount = Account{
	Uid:    "800000000",
	Region: "prod_official_asia",
	Cookie: "ltoken_v2=abc; ltuid_v2=123",
}

func TestRedeem(t *testing.T) {
	var query url.Values
	var cookie string
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{"retcode":-2017,"message":"Redemption code already in use"}`, func(r *http.Request) {
		require.Equal(t, "/common/apicdkey/api/webExchangeCdkey", r.URL.Path)
		query = r.URL.Query()
		cookie = r.Header.Get("cookie")
	}))
	defer srv.Close()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	client := NewRedeemClient(RedeemClientOptions{
		BaseUrl: srv.URL,
		Account: testAccount,
	}, fixedClock{now: now}, telemetry.NewRecorder())
	require.True(t, client.HasAccount())

	res, err := client.Redeem(context.Background(), "STARRAILGIFT")
	require.NoError(t, err)
	require.Equal(t, codes.ProviderResponse{
		HttpStatus: 200,
		Retcode:    -2017,
		Message:    "Redemption code already in use",
	}, res)
	require.Equal(t, codes.OutcomeAlreadyRedeemed, res.Outcome())

	require.Equal(t, "STARRAILGIFT", query.Get("cdkey"))
	require.Equal(t, "hkrpg_global", query.Get("game_biz"))
	require.Equal(t, "en", query.Get("lang"))
	require.Equal(t, "prod_official_asia", query.Get("region"))
	require.Equal(t, "800000000", query.Get("uid"))
	require.Equal(t, "1717200000000", query.Get("t"))
	require.Equal(t, testAccount.Cookie, cookie)
}

func TestRedeemHttpFailure(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusBadGateway, `{}`, nil))
	defer srv.Close()

	client := NewRedeemClient(RedeemClientOptions{BaseUrl: srv.URL, Account: testAccount}, fixedClock{}, telemetry.NewRecorder())
	res, err := client.Redeem(context.Background(), "ABC")
	require.NoError(t, err)
	require.Equal(t, codes.OutcomeTransportFailure, res.Outcome())
}

func TestRedeemWithoutRetcode(t *testing.T) {
	table := []struct {
		name        string
		contentType string
		body        string
	}{
		{name: "challenge page", contentType: "text/html", body: "<html><body>Just a moment...</body></html>"},
		{name: "empty object", contentType: "application/json", body: `{}`},
		{name: "null retcode", contentType: "application/json", body: `{"retcode":null,"message":"OK"}`},
		{name: "empty body", contentType: "application/json", body: ``},
	}
	for _, row := range table {
		t.Run(row.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("content-type", row.contentType)
				w.Write([]byte(row.body))
			}))
			defer srv.Close()

			client := NewRedeemClient(RedeemClientOptions{BaseUrl: srv.URL, Account: testAccount}, fixedClock{}, telemetry.NewRecorder())
			res, err := client.Redeem(context.Background(), "ABC")
			require.NoError(t, err)
			require.True(t, res.Malformed)
			require.Equal(t, http.StatusOK, res.HttpStatus)
			require.Equal(t, codes.OutcomeUnknownProviderError, res.Outcome())
		})
	}
}

func TestRedeemSuccess(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{"retcode":0,"message":"OK"}`, nil))
	defer srv.Close()

	client := NewRedeemClient(RedeemClientOptions{BaseUrl: srv.URL, Account: testAccount}, fixedClock{}, telemetry.NewRecorder())
	res, err := client.Redeem(context.Background(), "ABC")
	require.NoError(t, err)
	require.False(t, res.Malformed)
	require.Equal(t, codes.OutcomeRedeemed, res.Outcome())
}

func TestRedeemUnreachable(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{}`, nil))
	srv.Close()

	client := NewRedeemClient(RedeemClientOptions{BaseUrl: srv.URL, Account: testAccount}, fixedClock{}, telemetry.NewRecorder())
	_, err := client.Redeem(context.Background(), "ABC")
	require.Error(t, err)
}

func TestHasAccount(t *testing.T) {
	client := NewRedeemClient(RedeemClientOptions{}, fixedClock{}, telemetry.NewRecorder())
	require.False(t, client.HasAccount())

	client = NewRedeemClient(RedeemClientOptions{Account: Account{Uid: "1", Region: "prod_official_usa"}}, fixedClock{}, telemetry.NewRecorder())
	require.False(t, client.HasAccount())
}
