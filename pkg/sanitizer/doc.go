// Package sanitizer normalizes free-form input before validation and storage.
//
// Every function is idempotent. Input that cannot be normalized comes back
// empty so the validator can reject it.
package sanitizer
