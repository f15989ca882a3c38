package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/xmenbro/AutoRepairCenter/pkg/errors"
)

// StatusError is returned for 5xx responses the caller could not interpret.
type StatusError struct {
	Service string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Status, e.Body)
}

// errorBody accepts the three error shapes the cart server may return:
// {"status":"error","message":...} from POST /cart,
// {"success":false,"message":...} from POST /cart/save, and the
// {"error":{"code":...,"message":...}} envelope written by httputil.
type errorBody struct {
	Status  string `json:"status"`
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (b errorBody) parsed() (code, message string, ok bool) {
	switch {
	case b.Error != nil:
		return b.Error.Code, b.Error.Message, true
	case b.Status == "error", b.Success != nil && !*b.Success:
		return "", b.Message, b.Message != ""
	default:
		return "", "", false
	}
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an AppError. The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	var body errorBody
	if json.Unmarshal(bodyBytes, &body) == nil {
		if code, message, ok := body.parsed(); ok {
			return mapDownstreamError(resp.StatusCode, code, message, serviceName)
		}
	}

	if resp.StatusCode >= 500 {
		return &StatusError{Service: serviceName, Status: resp.StatusCode, Body: string(bodyBytes)}
	}
	return fmt.Errorf("%s returned status %d: %s", serviceName, resp.StatusCode, string(bodyBytes))
}

func mapDownstreamError(status int, code, message, serviceName string) error {
	qualifiedMsg := fmt.Sprintf("%s: %s", serviceName, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(serviceName, message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualifiedMsg)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualifiedMsg)
	case status == http.StatusServiceUnavailable:
		return apperrors.Unavailable(qualifiedMsg, nil)
	case status >= 500:
		return &StatusError{Service: serviceName, Status: status, Body: message}
	default:
		if code == "" {
			code = http.StatusText(status)
		}
		return &apperrors.AppError{
			Code:    code,
			Message: qualifiedMsg,
			Status:  status,
		}
	}
}
