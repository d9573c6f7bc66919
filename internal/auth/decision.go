// Package auth is the pure authorization engine. It holds no state,
// performs no I/O and never logs; it maps a requested mutation plus the
// entities already loaded for it to Allow or Deny with a machine reason.
package auth

// Decision is the outcome of one rule evaluation. Allow carries nothing
// but permission to proceed; Deny carries the reason.
type Decision struct {
	Allowed bool
	Tag     string
	Message string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(tag, message string) Decision {
	return Decision{Tag: tag, Message: message}
}
