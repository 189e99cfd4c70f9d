// Package notify announces newly redeemed codes.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"starrail-backend/internal/codes"
	"starrail-backend/internal/hoyoverse"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("starrail.internal.notify")

const title = "Honkai: Star Rail New Code"

// describe renders the message body shared by every sink.
func describe(rec codes.CodeRecord) string {
	return fmt.Sprintf(
		"Code: %s\n Rewards:\n%s\n\n Claim here:\n%s",
		rec.Code,
		strings.Join(rec.Rewards, ", "),
		hoyoverse.ClaimUrl(rec.Code),
	)
}

// Multi sends to every sink, a failing sink does not stop the others.
type Multi []codes.NotifyAPI

func (m Multi) Send(ctx context.Context, rec codes.CodeRecord) error {
	var errs []error
	for _, sink := range m {
		err := sink.Send(ctx, rec)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ codes.NotifyAPI = Multi{}
