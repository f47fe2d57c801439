package auth

import "time"

// SetClock replaces the issuer's time source.
func (i *StoreTokenIssuer) SetClock(now func() time.Time) {
	i.now = now
}
