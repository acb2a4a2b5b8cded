// Package clock abstracts time for components that pace themselves, so
// cooldown behavior is testable without sleeping.
package clock

import "time"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}
