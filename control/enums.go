package control

import "fmt"

// GroupOrder selects the delivery order of groups within a subscription.
type GroupOrder uint64

const (
	GroupOrderOriginal   GroupOrder = 0x00
	GroupOrderAscending  GroupOrder = 0x01
	GroupOrderDescending GroupOrder = 0x02
)

func parseGroupOrder(v uint64) (GroupOrder, error) {
	switch GroupOrder(v) {
	case GroupOrderOriginal, GroupOrderAscending, GroupOrderDescending:
		return GroupOrder(v), nil
	default:
		return 0, fmt.Errorf("group_order %d: %w", v, ErrInvalidType)
	}
}

// FilterType selects which portion of a track a Subscribe requests.
type FilterType uint64

const (
	FilterNextGroupStart FilterType = 0x01
	FilterLatestObject   FilterType = 0x02
	FilterAbsoluteStart  FilterType = 0x03
	FilterAbsoluteRange  FilterType = 0x04
)

func parseFilterType(v uint64) (FilterType, error) {
	switch FilterType(v) {
	case FilterNextGroupStart, FilterLatestObject, FilterAbsoluteStart, FilterAbsoluteRange:
		return FilterType(v), nil
	default:
		return 0, fmt.Errorf("filter_type %d: %w", v, ErrInvalidType)
	}
}

// SubscribeDoneStatus explains why a subscription ended.
type SubscribeDoneStatus uint64

const (
	SubscribeDoneInternalError      SubscribeDoneStatus = 0
	SubscribeDoneUnauthorized       SubscribeDoneStatus = 1
	SubscribeDoneTrackEnded         SubscribeDoneStatus = 2
	SubscribeDoneSubscriptionEnded  SubscribeDoneStatus = 3
	SubscribeDoneGoingAway          SubscribeDoneStatus = 4
	SubscribeDoneExpired            SubscribeDoneStatus = 5
	SubscribeDoneTooFarBehind       SubscribeDoneStatus = 6
)

func parseSubscribeDoneStatus(v uint64) (SubscribeDoneStatus, error) {
	if v > uint64(SubscribeDoneTooFarBehind) {
		return 0, fmt.Errorf("subscribe_done_status %d: %w", v, ErrInvalidType)
	}
	return SubscribeDoneStatus(v), nil
}

// TrackStatusCode reports the liveness of a track.
type TrackStatusCode uint64

const (
	TrackStatusInProgress       TrackStatusCode = 0
	TrackStatusDoesNotExist     TrackStatusCode = 1
	TrackStatusNotYetBegun      TrackStatusCode = 2
	TrackStatusFinished         TrackStatusCode = 3
	TrackStatusRelayUnavailable TrackStatusCode = 4
)

func parseTrackStatusCode(v uint64) (TrackStatusCode, error) {
	if v > uint64(TrackStatusRelayUnavailable) {
		return 0, fmt.Errorf("track_status_code %d: %w", v, ErrInvalidType)
	}
	return TrackStatusCode(v), nil
}

// FetchKind selects which of Fetch's mutually-exclusive variants is present.
type FetchKind uint64

const (
	FetchKindStandAlone FetchKind = 0x01
	FetchKindRelative   FetchKind = 0x02
	FetchKindAbsolute   FetchKind = 0x03
)

func parseFetchKind(v uint64) (FetchKind, error) {
	switch FetchKind(v) {
	case FetchKindStandAlone, FetchKindRelative, FetchKindAbsolute:
		return FetchKind(v), nil
	default:
		return 0, fmt.Errorf("fetch_kind %d: %w", v, ErrInvalidType)
	}
}

// boolToByte encodes a bool as a u8 in {0,1}.
func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// parseBool decodes a u8 as a bool, rejecting any value other than {0,1}
// as a ProtocolViolation per spec.md §4.3.
func parseBool(v byte) (bool, error) {
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("bool value %d: %w", v, ErrProtocolViolation)
	}
}
