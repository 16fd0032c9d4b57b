package donation

import (
	"net/http"

	"github.com/foodshare/foodshare/pkg/enums/role"
)

// Headers set by the authentication gateway in front of this service.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

// PrincipalFromRequest resolves the caller from gateway headers. The second
// return value is false when the request carries no valid identity.
func PrincipalFromRequest(r *http.Request) (Principal, bool) {
	rawID := r.Header.Get(HeaderActorID)
	rawRole := r.Header.Get(HeaderActorRole)
	if rawID == "" || rawRole == "" {
		return Principal{}, false
	}

	id, err := ParseID(rawID)
	if err != nil {
		return Principal{}, false
	}
	if role.ByName(rawRole) == nil {
		return Principal{}, false
	}

	return Principal{ActorID: id, Role: rawRole}, true
}
