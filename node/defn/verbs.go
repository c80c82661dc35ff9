package defn

import (
	"fmt"
	"strconv"
	"strings"
)

// Verb is the operation code in the first header byte.
type Verb uint8

const (
	VerbGetID    Verb = 0x01
	VerbSetID    Verb = 0x02
	VerbPing     Verb = 0x03
	VerbGetParam Verb = 0x10
	VerbSetParam Verb = 0x11
	VerbGetAll   Verb = 0x12
	VerbMsg      Verb = 0x20
	VerbRespOK   Verb = 0x90
	VerbRespErr  Verb = 0x91
)

var verbNames = map[Verb]string{
	VerbGetID:    "GET_ID",
	VerbSetID:    "SET_ID",
	VerbPing:     "PING",
	VerbGetParam: "GET_PARAM",
	VerbSetParam: "SET_PARAM",
	VerbGetAll:   "GET_ALL",
	VerbMsg:      "MSG",
	VerbRespOK:   "RESP_OK",
	VerbRespErr:  "RESP_ERR",
}

func (v Verb) String() string {
	if s, ok := verbNames[v]; ok {
		return s
	}
	return fmt.Sprintf("VERB(0x%02x)", uint8(v))
}

// Tag identifies one field inside the TLV region.
type Tag uint8

// Identity / system
const (
	TagID        Tag = 0x01
	TagAlias     Tag = 0x02
	TagFwVersion Tag = 0x03
	TagUptimeS   Tag = 0x04
	TagBootTime  Tag = 0x05
)

// Radio
const (
	TagFreqHz   Tag = 0x10
	TagSF       Tag = 0x11
	TagBwHz     Tag = 0x12
	TagCR       Tag = 0x13
	TagTxPwrDbm Tag = 0x14
	TagChan     Tag = 0x15
)

// Behavior / routing
const (
	TagMode      Tag = 0x20
	TagHops      Tag = 0x21
	TagBeaconSec Tag = 0x22
	TagBufSize   Tag = 0x23
	TagAckMode   Tag = 0x24
)

// Diagnostics (read-only)
const (
	TagRssiDbm   Tag = 0x30
	TagSnrDb     Tag = 0x31
	TagVbatMv    Tag = 0x32
	TagTempC10   Tag = 0x33
	TagFreeMem   Tag = 0x34
	TagFreeFlash Tag = 0x35
	TagLogCount  Tag = 0x36
)

var tagNames = map[Tag]string{
	TagID:        "ID",
	TagAlias:     "ALIAS",
	TagFwVersion: "FW_VERSION",
	TagUptimeS:   "UPTIME_S",
	TagBootTime:  "BOOT_TIME",
	TagFreqHz:    "FREQ_HZ",
	TagSF:        "SF",
	TagBwHz:      "BW_HZ",
	TagCR:        "CR",
	TagTxPwrDbm:  "TX_PWR_DBM",
	TagChan:      "CHAN",
	TagMode:      "MODE",
	TagHops:      "HOPS",
	TagBeaconSec: "BEACON_SEC",
	TagBufSize:   "BUF_SIZE",
	TagAckMode:   "ACK_MODE",
	TagRssiDbm:   "RSSI_DBM",
	TagSnrDb:     "SNR_DB",
	TagVbatMv:    "VBAT_MV",
	TagTempC10:   "TEMP_C10",
	TagFreeMem:   "FREE_MEM",
	TagFreeFlash: "FREE_FLASH",
	TagLogCount:  "LOG_COUNT",
}

func (t Tag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TAG(0x%02x)", uint8(t))
}

// ParseTag accepts a tag name in any case, or a number such as 0x11.
func ParseTag(s string) (Tag, bool) {
	for t, name := range tagNames {
		if strings.EqualFold(name, s) {
			return t, true
		}
	}
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, false
	}
	return Tag(n), true
}

// ParamTags are the tags SET_PARAM may change, in echo order.
var ParamTags = []Tag{
	TagAlias,
	TagFreqHz, TagSF, TagBwHz, TagCR, TagTxPwrDbm, TagChan,
	TagMode, TagHops, TagBeaconSec, TagBufSize, TagAckMode,
}

// AllTags is the fixed GET_ALL response order.
var AllTags = []Tag{
	TagID, TagAlias,
	TagFreqHz, TagSF, TagBwHz, TagCR, TagTxPwrDbm, TagChan,
	TagMode, TagHops, TagBeaconSec, TagBufSize, TagAckMode,
	TagRssiDbm, TagSnrDb, TagVbatMv, TagTempC10, TagFreeMem, TagFreeFlash, TagLogCount,
}
