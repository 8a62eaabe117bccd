package variables

import (
	"errors"
	"net/http"

	"github.com/flowgrid/flowgrid-go/client"
)

var (
	ErrNotFound     = errors.New("variable not found")
	ErrDuplicateKey = errors.New("variable key already exists")
	ErrInvalidData  = errors.New("invalid variable data")
	ErrRateLimited  = errors.New("rate limited")
	ErrServer       = errors.New("server error")
)

// translateError attaches a sentinel to a client error so callers can
// branch with errors.Is while keeping the full cause in the chain.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	apiErr, ok := client.AsAPIError(err)
	if !ok {
		return err
	}
	switch {
	case apiErr.Status == http.StatusNotFound:
		return errors.Join(ErrNotFound, err)
	case apiErr.Status == http.StatusConflict:
		return errors.Join(ErrDuplicateKey, err)
	case apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnprocessableEntity:
		return errors.Join(ErrInvalidData, err)
	case apiErr.Status == http.StatusTooManyRequests:
		return errors.Join(ErrRateLimited, err)
	case apiErr.Status >= http.StatusInternalServerError:
		return errors.Join(ErrServer, err)
	default:
		return err
	}
}
