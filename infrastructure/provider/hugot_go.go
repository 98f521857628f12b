//go:build !ORT

package provider

import "github.com/knights-analytics/hugot"

// newHugotSession uses the pure Go backend, which needs no shared library
// and is the default build.
func newHugotSession() (*hugot.Session, error) {
	return hugot.NewGoSession()
}
