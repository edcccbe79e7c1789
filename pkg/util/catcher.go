package util

import (
	"fmt"

	"github.com/pkg/errors"
)

// CatchErrs runs fn and turns a panic inside it into an error.
// The HCI layer panics on some device failures instead of returning.
func CatchErrs(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case error:
				err = errors.Wrap(v, "recovered")
			default:
				err = errors.New(fmt.Sprintf("recovered: %v", v))
			}
		}
	}()
	return fn()
}
