package project

import (
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
)

// Identity is the repository binding a push or prune runs against.
type Identity struct {
	// Provided is the --repo override, if any.
	Provided string
	// Recorded is the repository captured in project.toml at init.
	Recorded string
	// Detected is the repository of the current checkout's origin.
	Detected string
}

// Resolve picks the repository to act on. Any two of provided, detected and
// recorded that are both present must agree. With none present it fails with
// ErrMissingIdentity.
func (id Identity) Resolve(verb string) (string, error) {
	if id.Provided != "" {
		if id.Detected != "" && id.Detected != id.Provided {
			return "", fmt.Errorf("%w: refusing to %s: provided repo %q does not match detected repo %q",
				kerrors.ErrIdentityMismatch, verb, id.Provided, id.Detected)
		}
		if id.Recorded != "" && id.Recorded != id.Provided {
			return "", fmt.Errorf("%w: refusing to %s: provided repo %q does not match bound repo %q",
				kerrors.ErrIdentityMismatch, verb, id.Provided, id.Recorded)
		}
		return id.Provided, nil
	}

	if id.Detected != "" {
		if id.Recorded != "" && id.Recorded != id.Detected {
			return "", fmt.Errorf("%w: refusing to %s: detected repo %q does not match bound repo %q",
				kerrors.ErrIdentityMismatch, verb, id.Detected, id.Recorded)
		}
		return id.Detected, nil
	}

	if id.Recorded != "" {
		return id.Recorded, nil
	}

	return "", fmt.Errorf("%w: cannot %s without a repository; pass --repo owner/name",
		kerrors.ErrMissingIdentity, verb)
}

// ValidRepo reports whether s has the "owner/name" shape.
func ValidRepo(s string) bool {
	owner, name, ok := strings.Cut(s, "/")
	return ok && owner != "" && name != "" && !strings.ContainsAny(name, "/ ") && !strings.Contains(owner, " ")
}
