package syncer

import (
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/utils"
)

// expandKeys resolves requested keys and patterns against available.
// Literal keys missing from available are ErrUnknownKey unless
// allowMissingLiteral is set. A pattern that matches nothing is
// always ErrUnknownKey. The result is sorted and deduplicated.
func expandKeys(requested, available []string, allowMissingLiteral bool) ([]string, error) {
	have := make(map[string]bool, len(available))
	for _, k := range available {
		have[k] = true
	}

	selected := make(map[string]bool)
	var unknown []string

	for _, req := range requested {
		if utils.IsGlobPattern(req) {
			if !doublestar.ValidatePattern(req) {
				return nil, fmt.Errorf("%w: invalid key pattern %q", kerrors.ErrValidation, req)
			}
			matched := false
			for _, k := range available {
				if ok, _ := doublestar.Match(req, k); ok {
					selected[k] = true
					matched = true
				}
			}
			if !matched {
				unknown = append(unknown, req)
			}
			continue
		}

		switch {
		case have[req]:
			selected[req] = true
		case !allowMissingLiteral:
			unknown = append(unknown, req)
		case !utils.IsValidKeyName(req):
			return nil, fmt.Errorf("%w: invalid key name %q", kerrors.ErrValidation, req)
		default:
			selected[req] = true
		}
	}

	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrUnknownKey, unknown)
	}

	keys := make([]string, 0, len(selected))
	for k := range selected {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
