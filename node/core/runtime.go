package core

import "time"

// StartTimestamp is the time the node was started.
var StartTimestamp time.Time
