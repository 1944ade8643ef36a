package security

import "github.com/anonto42/nano-forum/backend/internal/models"

// Decision is the outcome of an authorization check.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

// Authorize decides whether principal may proceed. An empty allowed set
// only requires an authenticated principal.
func Authorize(principal *models.User, allowed ...models.Role) Decision {
	if principal == nil {
		return DenyUnauthenticated
	}
	if len(allowed) == 0 {
		return Allow
	}
	for _, role := range allowed {
		if principal.Role == role {
			return Allow
		}
	}
	return DenyForbidden
}
