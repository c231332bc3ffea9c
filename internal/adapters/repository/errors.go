package repository

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/aws/smithy-go"
)

// Sentinel kinds for fetch errors. Callers match with errors.Is; every
// kind wraps the underlying cause.
var (
	// ErrConnectivity covers unreachable endpoints, transport failures
	// and exceeded fetch timeouts.
	ErrConnectivity = errors.New("store unreachable")

	// ErrAuth covers rejected or missing credentials.
	ErrAuth = errors.New("credentials rejected")

	// ErrSchema covers records missing required fields or carrying
	// malformed attribute types.
	ErrSchema = errors.New("malformed record")
)

// authErrorCodes are the DynamoDB/STS error codes treated as credential
// rejections rather than transport failures.
var authErrorCodes = map[string]struct{}{
	"UnrecognizedClientException":         {},
	"InvalidSignatureException":           {},
	"IncompleteSignatureException":        {},
	"MissingAuthenticationTokenException": {},
	"AccessDeniedException":               {},
	"ExpiredTokenException":               {},
}

// classify maps an SDK error onto the package taxonomy.
func classify(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if _, ok := authErrorCodes[apiErr.ErrorCode()]; ok {
			return fmt.Errorf("%w: %v", ErrAuth, err)
		}
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: fetch timed out: %v", ErrConnectivity, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	return fmt.Errorf("%w: %v", ErrConnectivity, err)
}
