package mode

import "errors"

// ErrUnknownFlag is returned when parsing an unrecognised mode name.
var ErrUnknownFlag = errors.New("mode: unknown flag")

// ErrReservedFlag is returned when Apply is asked to change Active.
var ErrReservedFlag = errors.New("mode: active is controlled by shutdown and restore")
