// Package hoyoverse talks to the HoYoverse redemption endpoint and the
// HoYoLAB community APIs.
package hoyoverse

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"starrail-backend/internal/components/telemetry"
	"starrail-backend/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("starrail.internal.hoyoverse")

const (
	DefaultRedeemBaseUrl = "https://sg-hkrpg-api.hoyoverse.com"
	DefaultBbsBaseUrl    = "https://bbs-api-os.hoyolab.com"

	// GameID is the id of Honkai: Star Rail on HoYoLAB.
	GameID = 6
)

func newClient(baseUrl, tracerName string, tel telemetry.API) *resty.Client {
	client := restyutil.NewClient(restyutil.ClientOptions{
		BaseUrl:    baseUrl,
		Timeout:    time.Second * 30,
		TracerName: tracerName,
	})
	telemetry.InstrumentResty(client, tel)
	return client
}

// flexInt accepts a json number or a string containing one.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		var fl float64
		if ferr := json.Unmarshal([]byte(raw), &fl); ferr != nil {
			return err
		}
		n = int64(fl)
	}
	*f = flexInt(n)
	return nil
}

// flexString accepts a json string or a number, numbers are kept as written.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if string(data) == "null" {
		*f = ""
		return nil
	}
	*f = flexString(data)
	return nil
}
