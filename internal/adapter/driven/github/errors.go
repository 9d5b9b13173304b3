package github

import (
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v82/github"

	"github.com/nitpickbot/nitpick/internal/domain/model"
)

// classify wraps a go-github error with the matching remote error kind.
// Auth and not-found failures will not heal on their own and are permanent;
// everything else, including rate limits, network errors, and 5xx responses,
// is worth retrying on a later cycle.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%s: %w: %w", op, model.ErrTransientRemote, err)
	}

	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusGone:
			return fmt.Errorf("%s: %w: %w", op, model.ErrPermanentRemote, err)
		}
	}

	return fmt.Errorf("%s: %w: %w", op, model.ErrTransientRemote, err)
}
