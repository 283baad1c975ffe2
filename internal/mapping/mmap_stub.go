//go:build !linux
// +build !linux

package mapping

import "errors"

func newMmap(numPages, pageSize int) (Region, error) {
	return nil, errors.New("mmap backend requires linux")
}
