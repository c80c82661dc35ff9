package defn

import "errors"

var ErrShortFrame = errors.New("frame shorter than header")
