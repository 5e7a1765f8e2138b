package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a ULID for users, products, orders and image objects. ULIDs sort
// by creation time, so ids double as a coarse creation order.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
