package ndo

import (
	"errors"
	"fmt"

	"github.com/imroc/req/v3"
)

var (
	ErrNoHost           = errors.New("ndo: host missing")
	ErrTemplateNotFound = errors.New("ndo: template not found")
	ErrObjectNotFound   = errors.New("ndo: object not found")
	ErrWrongType        = errors.New("ndo: wrong template type")
)

// APIError is the error body the orchestrator returns on failed requests.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %s - %s", e.Code, e.Message)
}

// handleAPIError folds the transport error and the API error state of a
// response into one error.
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s: %w", operation, requestErr)
	}
	if resp.IsErrorState() {
		if apiErr, ok := resp.ErrorResult().(*APIError); ok {
			return fmt.Errorf("%s: %w", operation, apiErr)
		}
		return fmt.Errorf("api error: %s: %s", operation, resp.Status)
	}
	return nil
}
