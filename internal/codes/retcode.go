package codes

import (
	"fmt"
	"net/http"
)

// Retcode is a response code of the redemption endpoint.
type Retcode int

const (
	RetcodeOK                  Retcode = 0
	RetcodeInvalidAccount      Retcode = -1071
	RetcodeExpired             Retcode = -2001
	RetcodeInvalidCode         Retcode = -2003
	RetcodeCooldown            Retcode = -2016
	RetcodeAlreadyRedeemed     Retcode = -2017
	RetcodeAlreadyRedeemedUsed Retcode = -2018
)

// Outcome is the classified result of a redemption attempt.
type Outcome int

const (
	OutcomeUnknownProviderError Outcome = iota
	OutcomeRedeemed
	OutcomeAlreadyRedeemed
	OutcomeExpired
	OutcomeInvalidCode
	OutcomeCooldown
	OutcomeInvalidAccount
	OutcomeTransportFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRedeemed:
		return "redeemed"
	case OutcomeAlreadyRedeemed:
		return "already-redeemed"
	case OutcomeExpired:
		return "expired"
	case OutcomeInvalidCode:
		return "invalid-code"
	case OutcomeCooldown:
		return "cooldown"
	case OutcomeInvalidAccount:
		return "invalid-account"
	case OutcomeTransportFailure:
		return "transport-failure"
	default:
		return "unknown-provider-error"
	}
}

// Classify maps an HTTP status and provider retcode onto an Outcome, it is
// the only place provider codes are interpreted.
func Classify(httpStatus int, retcode int) Outcome {
	if httpStatus != http.StatusOK {
		return OutcomeTransportFailure
	}
	switch Retcode(retcode) {
	case RetcodeOK:
		return OutcomeRedeemed
	case RetcodeAlreadyRedeemed, RetcodeAlreadyRedeemedUsed:
		return OutcomeAlreadyRedeemed
	case RetcodeExpired:
		return OutcomeExpired
	case RetcodeInvalidCode:
		return OutcomeInvalidCode
	case RetcodeCooldown:
		return OutcomeCooldown
	case RetcodeInvalidAccount:
		return OutcomeInvalidAccount
	default:
		return OutcomeUnknownProviderError
	}
}

// Outcome classifies a full provider response, a successful http status with
// a body that carries no retcode is never treated as a redemption.
func (r ProviderResponse) Outcome() Outcome {
	if r.HttpStatus == http.StatusOK && r.Malformed {
		return OutcomeUnknownProviderError
	}
	return Classify(r.HttpStatus, r.Retcode)
}

func providerError(code string, res ProviderResponse) error {
	if res.Malformed {
		return fmt.Errorf("%w: code %s: response carried no retcode", ErrUnknownProviderError, code)
	}
	return fmt.Errorf("%w: code %s: retcode %d: %s", ErrUnknownProviderError, code, res.Retcode, res.Message)
}
