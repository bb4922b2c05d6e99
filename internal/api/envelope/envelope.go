// Package envelope coerces every outbound payload into the single wire shape
// external clients depend on:
//
//	{success, message, execution_time, data, errors}
//
// Backend services' native response shapes are an implementation detail
// hidden behind this package.
package envelope

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tidwall/gjson"
)

const (
	// DefaultSuccessMessage is used when a handler supplies no message.
	DefaultSuccessMessage = "Request processed successfully."
	// GenericErrorMessage never leaks internals to the client.
	GenericErrorMessage = "Something went wrong. Please try again later."
)

var nullData = json.RawMessage("null")

// Response is the uniform wire envelope. Invariant: Success=false implies
// Data is null.
type Response struct {
	Success       bool            `json:"success"`
	Message       string          `json:"message"`
	ExecutionTime string          `json:"execution_time"`
	Data          json.RawMessage `json:"data"`
	Errors        []any           `json:"errors"`
}

// Success builds a success envelope around raw JSON data, applying the
// sensitive-field filter first. A nil payload yields data=null.
func Success(data []byte, message string, elapsed time.Duration) (*Response, error) {
	if message == "" {
		message = DefaultSuccessMessage
	}

	filtered := nullData
	if len(data) > 0 {
		out, err := FilterJSON(data, DenySet(SensitiveKeys))
		if err != nil {
			return nil, err
		}
		filtered = out
	}

	return &Response{
		Success:       true,
		Message:       message,
		ExecutionTime: FormatElapsed(elapsed),
		Data:          filtered,
		Errors:        []any{},
	}, nil
}

// Failure builds an error envelope. Data is always null on this path.
func Failure(message string, errs []any, elapsed time.Duration) *Response {
	if message == "" {
		message = GenericErrorMessage
	}
	if errs == nil {
		errs = []any{}
	}
	return &Response{
		Success:       false,
		Message:       message,
		ExecutionTime: FormatElapsed(elapsed),
		Data:          nullData,
		Errors:        errs,
	}
}

// IsNormalized reports whether raw already carries the envelope shape.
// Used to enforce the exactly-once normalization invariant: wrapping an
// already-normalized body is a no-op.
func IsNormalized(raw []byte) bool {
	if !gjson.ValidBytes(raw) {
		return false
	}
	success := gjson.GetBytes(raw, "success")
	if !success.IsBool() {
		return false
	}
	return gjson.GetBytes(raw, "message").Type == gjson.String &&
		gjson.GetBytes(raw, "execution_time").Exists() &&
		gjson.GetBytes(raw, "data").Exists() &&
		gjson.GetBytes(raw, "errors").IsArray()
}

// NormalizeBody coerces a backend response body into the envelope. Non-JSON
// bodies and already-normalized envelopes pass through untouched. Statuses
// >= 400 take the error shape, lifting message/errors out of the backend's
// structured payload when present.
func NormalizeBody(raw []byte, status int, elapsed time.Duration) ([]byte, error) {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return raw, nil
	}
	if IsNormalized(raw) {
		return raw, nil
	}

	if status >= http.StatusBadRequest {
		msg := gjson.GetBytes(raw, "message").String()
		var errs []any
		if list := gjson.GetBytes(raw, "errors"); list.IsArray() {
			for _, e := range list.Array() {
				errs = append(errs, e.Value())
			}
		}
		return json.Marshal(Failure(msg, errs, elapsed))
	}

	resp, err := Success(raw, "", elapsed)
	if err != nil {
		return nil, err
	}
	return json.Marshal(resp)
}

// FormatElapsed renders elapsed wall-clock time as milliseconds with two
// decimals, e.g. "12.34ms".
func FormatElapsed(elapsed time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(elapsed.Microseconds())/1000)
}

type startKey struct{}

// WithStart stamps the request start time into ctx. The timing middleware
// calls this once per request.
func WithStart(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, startKey{}, t)
}

// Elapsed returns the wall-clock time since the request started, or zero
// when no start was recorded.
func Elapsed(ctx context.Context) time.Duration {
	if t, ok := ctx.Value(startKey{}).(time.Time); ok {
		return time.Since(t)
	}
	return 0
}

// JSON writes a success envelope for a handler-produced value.
func JSON(c echo.Context, status int, data any, message string) error {
	var raw []byte
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return err
		}
		raw = b
	}
	resp, err := Success(raw, message, Elapsed(c.Request().Context()))
	if err != nil {
		return err
	}
	return c.JSON(status, resp)
}
