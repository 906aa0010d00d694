package remote

import (
	"strings"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// DecodeDecimal reads a JSON number (quoted or bare) into a decimal.
// Monetary values travel as numbers; decoding through decimal avoids the
// float round trip.
func DecodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(strings.Trim(string(n), `"`))
}

// ErrorMessage extracts a human-readable message from an error payload
// shaped {"message": "..."} or {"error": "..."}. Fallback is returned when
// the body is empty or carries no recognizable message.
func ErrorMessage(body []byte, fallback string) string {
	if len(body) == 0 {
		return fallback
	}
	d := jx.DecodeBytes(body)
	msg := ""
	_ = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "message", "error", "reason":
			v, err := d.Str()
			if err == nil && msg == "" {
				msg = v
			}
			return err
		default:
			return d.Skip()
		}
	})
	if msg == "" {
		return fallback
	}
	return msg
}
