//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"os/user"

	"github.com/oshokin/particle-injector/internal/domain/pulse"
)

// DetectOperator gathers host and user information for the run journal.
func DetectOperator() (*pulse.Operator, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &pulse.Operator{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}
