//go:build !linux

package display

import "errors"

func NewLedPresenter(LedConfig) (*LedPresenter, error) {
	return nil, errors.New("GPIO LED is only supported on linux")
}
