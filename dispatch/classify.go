package dispatch

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kbukum/deepseek/errors"
	"github.com/kbukum/deepseek/httpclient"
	"github.com/kbukum/deepseek/models"
)

// maxErrorBody bounds the raw body kept on errors.
const maxErrorBody = 512

var errNoResponse = stderrors.New("transport returned neither a response nor an error")

// classifyTransport maps a failure where no response was received.
func classifyTransport(err error) *errors.AppError {
	switch {
	case httpclient.IsCanceled(err), stderrors.Is(err, context.Canceled):
		return errors.Canceled(err)
	case httpclient.IsTimeout(err), stderrors.Is(err, context.DeadlineExceeded):
		return errors.Timeout(err)
	}
	var he *httpclient.Error
	if stderrors.As(err, &he) && he.Code == httpclient.ErrCodeInvalidRequest {
		return errors.InvalidParameter("", "request could not be built").WithCause(err)
	}
	return errors.Transport(err)
}

// classifyStatus maps a non-2xx response. 429 is a rate limit; every other
// status is an API error, retryable for 5xx.
func classifyStatus(resp *httpclient.Response, now time.Time) *errors.AppError {
	detail, decoded := models.DecodeAPIError(resp.Body)

	var e *errors.AppError
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		e = errors.RateLimitExceeded(detail.Message, parseRetryAfter(resp.Header("Retry-After"), now))
		e.ErrorType = detail.Type
	case decoded:
		e = errors.API(resp.StatusCode, detail.Message, detail.Type)
	default:
		e = errors.API(resp.StatusCode, truncateBody(resp.Body), "")
	}

	if decoded {
		if detail.Code != "" {
			e.WithDetail(errors.DetailAPICode, string(detail.Code))
		}
		if detail.Param != "" {
			e.WithDetail(errors.DetailParam, detail.Param)
		}
	} else if body := truncateBody(resp.Body); body != "" {
		e.WithDetail(errors.DetailBody, body)
	}
	return e
}

// normalize turns errors produced outside an attempt, such as the context
// ending during a backoff wait, into AppErrors.
func normalize(err error) error {
	if errors.IsAppError(err) {
		return err
	}
	switch {
	case stderrors.Is(err, context.Canceled):
		return errors.Canceled(err)
	case stderrors.Is(err, context.DeadlineExceeded):
		e := errors.Timeout(err)
		e.Retryable = false
		return e
	}
	return errors.Transport(err)
}

func codeOf(err error) string {
	if appErr, ok := errors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return "UNKNOWN"
}

// parseRetryAfter reads a Retry-After value given in seconds or as an
// HTTP date. Unparsable or past values yield 0.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	t, err := http.ParseTime(v)
	if err != nil {
		return 0
	}
	if d := t.Sub(now); d > 0 {
		return d
	}
	return 0
}

// truncateBody returns at most maxErrorBody bytes of body without
// splitting a UTF-8 sequence.
func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= maxErrorBody {
		return s
	}
	s = s[:maxErrorBody]
	for i := 0; i < utf8.UTFMax && !utf8.ValidString(s); i++ {
		s = s[:len(s)-1]
	}
	return s
}
