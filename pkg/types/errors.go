package types

import (
	"errors"
	"fmt"
	"regexp"
)

// NoTransactionsFound is the message the explorer returns for an empty listing.
const NoTransactionsFound = "No transactions found"

// NoRecordsFound is the message the logs endpoint returns for an empty block range.
const NoRecordsFound = "No records found"

var (
	// ErrLimitExhausted is returned when the block window cannot shrink any further.
	ErrLimitExhausted = errors.New("block limit exhausted")

	// ErrPositionRegression is returned when a block range is asked to move backwards.
	ErrPositionRegression = errors.New("block range position cannot move backwards")

	// ErrUnresolvableTruncation is returned when a saturated page holds a single block,
	// so dropping that block would never make progress.
	ErrUnresolvableTruncation = errors.New("page truncated within a single block")
)

var rateLimitRe = regexp.MustCompile(`(?i)(rate limit|max calls per sec|max rate limit)`)

// ClientError wraps transport and decoding failures.
type ClientError struct {
	Err error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("explorer client: %v", e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// ContentTypeError is returned when the explorer answers with a non JSON body.
type ContentTypeError struct {
	Status  int
	Content string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("[%d] %q", e.Status, e.Content)
}

// APIError is returned when the response envelope carries a status other than "1".
type APIError struct {
	Message string
	Result  any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %v", e.Message, e.Result)
}

// ResultString returns the result when the explorer sent a string, "" otherwise.
func (e *APIError) ResultString() string {
	s, _ := e.Result.(string)
	return s
}

// ProxyError is a JSON-RPC 2.0 error object returned by the proxy module.
type ProxyError struct {
	Code    int64
	Message string
}

func (e *ProxyError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// IsNoTransactionsFound reports whether err is an APIError whose message is exactly
// "No transactions found".
func IsNoTransactionsFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Message == NoTransactionsFound
}

// IsRateLimitError reports whether err is an APIError caused by the per key rate limit.
func IsRateLimitError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	if rateLimitRe.MatchString(apiErr.Message) {
		return true
	}

	return rateLimitRe.MatchString(apiErr.ResultString())
}
