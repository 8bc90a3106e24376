package api

import (
	"net/http"
	"strconv"

	"github.com/mholtet/embla/internal/cookie"
	"github.com/mholtet/embla/internal/domain"
	"github.com/mholtet/embla/internal/profile"
	"github.com/mholtet/embla/internal/session"
)

// ShopperIDHeader identifies the signed-in shopper. The upstream gateway
// authenticates and sets it; an absent header means an anonymous shopper.
const ShopperIDHeader = "X-Shopper-ID"

// sessionMaxAge matches the in-memory session lifetime expectations: long
// enough to survive a browsing session, irrelevant after a restart.
const sessionMaxAge = 30 * 24 * 60 * 60

// shopperSession is the request plumbing shared by the cart and checkout
// handlers: cookie-keyed session resolution and shopper profile lookup.
type shopperSession struct {
	sessions *session.Manager
	cookies  *cookie.Config
	profiles profile.Store
}

// session resolves the shopping session from the request cookie, creating
// one (and setting the cookie) when none exists.
func (p *shopperSession) session(w http.ResponseWriter, r *http.Request) *session.Session {
	id := cookie.Get(r, cookie.SessionCookieName)
	s := p.sessions.GetOrCreate(id)
	if s.ID != id {
		p.cookies.SetSession(w, cookie.SessionCookieName, s.ID, sessionMaxAge)
	}
	return s
}

// shopper resolves the shopper profile named by the request header. An
// absent header or an unknown id yields the anonymous zero shopper;
// anonymous shoppers price like non-members with no points.
func (p *shopperSession) shopper(r *http.Request) (domain.Shopper, error) {
	id := r.Header.Get(ShopperIDHeader)
	if id == "" {
		return domain.Shopper{}, nil
	}

	shopper, err := p.profiles.Shopper(r.Context(), id)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return domain.Shopper{}, nil
		}
		return domain.Shopper{}, err
	}
	return shopper, nil
}

// lineIndex parses the {index} path value of line-scoped cart routes.
func lineIndex(r *http.Request) (int, error) {
	idx, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || idx < 0 {
		return 0, domain.Errorf(domain.EINVALID, "api.lineIndex", "Invalid line index")
	}
	return idx, nil
}
