package table

import (
	"fmt"

	"github.com/viatext/vtnode/node/defn"
	"github.com/viatext/vtnode/std/utils"
)

// Factory defaults of a fresh node.
var (
	DefaultID        = "HckrMn"
	DefaultAlias     = ""
	DefaultFreqHz    = int64(915000000)
	DefaultSF        = int64(9)
	DefaultBwHz      = int64(125000)
	DefaultCR        = int64(5)
	DefaultTxPwrDbm  = int64(17)
	DefaultChan      = int64(0)
	DefaultMode      = int64(0)
	DefaultHops      = int64(1)
	DefaultBeaconSec = int64(0)
	DefaultBufSize   = int64(32)
	DefaultAckMode   = int64(0)
)

// DefaultFields is the node's field set. Diagnostics are read from probe.
func DefaultFields(probe Probe) []Field {
	num := func(fn func() int64) func() Value {
		return func() Value { return Num(fn()) }
	}

	return []Field{
		// identity / system
		{Tag: defn.TagID, Kind: KindString, Key: "id", Default: Text(DefaultID), Validate: ValidID},
		{Tag: defn.TagAlias, Kind: KindString, Key: "alias", Default: Text(DefaultAlias), Validate: MaxLen(MaxIDLen)},
		{Tag: defn.TagFwVersion, Kind: KindString, Read: func() Value { return Text(utils.Version) }},
		{Tag: defn.TagUptimeS, Kind: KindU32, Read: num(func() int64 { return int64(probe.UptimeS()) })},
		{Tag: defn.TagBootTime, Kind: KindU32, Read: num(func() int64 { return int64(probe.BootTime()) })},

		// radio
		{Tag: defn.TagFreqHz, Kind: KindU32, Key: "freq_hz", Default: Num(DefaultFreqHz), Validate: AnyValue},
		{Tag: defn.TagSF, Kind: KindU8, Key: "sf", Default: Num(DefaultSF), Validate: InRange(7, 12)},
		{Tag: defn.TagBwHz, Kind: KindU32, Key: "bw_hz", Default: Num(DefaultBwHz), Validate: AnyValue},
		{Tag: defn.TagCR, Kind: KindU8, Key: "cr", Default: Num(DefaultCR), Validate: InRange(5, 8)},
		{Tag: defn.TagTxPwrDbm, Kind: KindI8, Key: "tx_pwr", Default: Num(DefaultTxPwrDbm), Validate: AnyValue},
		{Tag: defn.TagChan, Kind: KindU8, Key: "chan", Default: Num(DefaultChan), Validate: AnyValue},

		// behavior / routing
		{Tag: defn.TagMode, Kind: KindU8, Key: "mode", Default: Num(DefaultMode), Validate: AnyValue},
		{Tag: defn.TagHops, Kind: KindU8, Key: "hops", Default: Num(DefaultHops), Validate: AnyValue},
		{Tag: defn.TagBeaconSec, Kind: KindU32, Key: "beacon_s", Default: Num(DefaultBeaconSec), Validate: AnyValue},
		{Tag: defn.TagBufSize, Kind: KindU16, Key: "buf_size", Default: Num(DefaultBufSize), Validate: AnyValue},
		{Tag: defn.TagAckMode, Kind: KindU8, Key: "ack_mode", Default: Num(DefaultAckMode), Validate: OneOf(0, 1)},

		// diagnostics
		{Tag: defn.TagRssiDbm, Kind: KindI16, Read: num(func() int64 { return int64(probe.RssiDbm()) })},
		{Tag: defn.TagSnrDb, Kind: KindI8, Read: num(func() int64 { return int64(probe.SnrDb()) })},
		{Tag: defn.TagVbatMv, Kind: KindU16, Read: num(func() int64 { return int64(probe.VbatMv()) })},
		{Tag: defn.TagTempC10, Kind: KindI16, Read: num(func() int64 { return int64(probe.TempC10()) })},
		{Tag: defn.TagFreeMem, Kind: KindU32, Read: num(func() int64 { return int64(probe.FreeMem()) })},
		{Tag: defn.TagFreeFlash, Kind: KindU32, Read: num(func() int64 { return int64(probe.FreeFlash()) })},
		{Tag: defn.TagLogCount, Kind: KindU16, Read: num(func() int64 { return int64(probe.LogCount()) })},
	}
}

// NewDefaultRegistry is shorthand for NewRegistry(DefaultFields(probe)).
func NewDefaultRegistry(probe Probe) *Registry {
	return NewRegistry(DefaultFields(probe))
}

// OverrideDefaults replaces factory values in fields. Each value must be
// accepted by its field's validator.
func OverrideDefaults(fields []Field, values map[defn.Tag]Value) error {
	for i := range fields {
		f := &fields[i]
		v, ok := values[f.Tag]
		if !ok {
			continue
		}
		if !f.Settable() {
			return fmt.Errorf("%s: %w", f.Tag, ErrReadOnly)
		}
		if err := f.Validate(v); err != nil {
			return fmt.Errorf("%s: %w", f.Tag, err)
		}
		f.Default = v
	}
	return nil
}
