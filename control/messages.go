package control

import "github.com/moqtail/moqt-go/moqtype"

// ClientSetup is the first message sent by a MoQT client on the control
// stream, offering the versions it supports.
type ClientSetup struct {
	Versions []uint64
	Params   []moqtype.KeyValuePair
}

// ServerSetup is the server's reply, selecting one offered version.
type ServerSetup struct {
	SelectedVersion uint64
	Params          []moqtype.KeyValuePair
}

// Subscribe requests delivery of a track, optionally starting mid-track
// via FilterType/Start/EndGroup.
type Subscribe struct {
	RequestId     uint64
	TrackAlias    uint64
	FullTrackName moqtype.FullTrackName
	Priority      uint8
	GroupOrder    GroupOrder
	Forward       bool
	FilterType    FilterType
	Start         moqtype.Location // AbsoluteStart, AbsoluteRange
	EndGroup      uint64           // AbsoluteRange only
	Params        []moqtype.KeyValuePair
}

// NewSubscribeAbsoluteRange builds a Subscribe with FilterAbsoluteRange,
// validating endGroup >= start.Group per spec.md's invariant.
func NewSubscribeAbsoluteRange(requestID, trackAlias uint64, name moqtype.FullTrackName, priority uint8, order GroupOrder, forward bool, start moqtype.Location, endGroup uint64, params []moqtype.KeyValuePair) (Subscribe, error) {
	if endGroup < start.Group {
		return Subscribe{}, ErrInvalidRange
	}
	return Subscribe{
		RequestId:     requestID,
		TrackAlias:    trackAlias,
		FullTrackName: name,
		Priority:      priority,
		GroupOrder:    order,
		Forward:       forward,
		FilterType:    FilterAbsoluteRange,
		Start:         start,
		EndGroup:      endGroup,
		Params:        params,
	}, nil
}

// SubscribeOk confirms a subscription and reports the current track state.
type SubscribeOk struct {
	RequestId       uint64
	Expires         uint64
	GroupOrder      GroupOrder // Original is not a legal value here
	ContentExists   bool
	LargestLocation moqtype.Location // only meaningful when ContentExists
	Params          []moqtype.KeyValuePair
}

// SubscribeError rejects a subscription.
type SubscribeError struct {
	RequestId    uint64
	ErrorCode    uint64
	ReasonPhrase moqtype.ReasonPhrase
	TrackAlias   uint64 // set on RetryTrackAlias (ErrorCode 0x06)
}

// RetryTrackAlias is the SubscribeError code instructing the subscriber to
// reissue Subscribe with a new track alias.
const RetryTrackAlias uint64 = 0x06

// SubscribeUpdate narrows or extends an existing subscription's range and
// priority without reissuing a new request id.
type SubscribeUpdate struct {
	RequestId uint64
	Start     moqtype.Location
	EndGroup  uint64
	Priority  uint8
	Forward   bool
	Params    []moqtype.KeyValuePair
}

// SubscribeDone reports that a subscription has ended, publisher-initiated.
type SubscribeDone struct {
	RequestId    uint64
	StatusCode   SubscribeDoneStatus
	StreamCount  uint64
	ReasonPhrase moqtype.ReasonPhrase
}

// Unsubscribe cancels a subscription, subscriber-initiated.
type Unsubscribe struct {
	RequestId uint64
}

// FetchStandAlone requests a bounded range of objects from a named track.
type FetchStandAlone struct {
	FullTrackName moqtype.FullTrackName
	Start         moqtype.Location
	End           moqtype.Location
}

// FetchRelative requests a range relative to another (joining) request.
type FetchRelative struct {
	JoiningRequestId uint64
	JoiningStart     uint64
}

// FetchAbsolute requests an absolute-numbered range anchored to another
// (joining) request.
type FetchAbsolute struct {
	JoiningRequestId uint64
	JoiningStart     uint64
}

// Fetch is a bounded historical request for objects in a range. Exactly
// one of StandAlone/Relative/Absolute is populated, selected by Kind.
type Fetch struct {
	RequestId  uint64
	Priority   uint8
	GroupOrder GroupOrder
	Kind       FetchKind
	StandAlone FetchStandAlone
	Relative   FetchRelative
	Absolute   FetchAbsolute
	Params     []moqtype.KeyValuePair
}

// FetchOk confirms a Fetch and reports the bound of the delivered range.
type FetchOk struct {
	RequestId   uint64
	GroupOrder  GroupOrder // Original is not a legal value here
	EndOfTrack  bool
	EndLocation moqtype.Location
	Params      []moqtype.KeyValuePair
}

// FetchError rejects a Fetch.
type FetchError struct {
	RequestId    uint64
	ErrorCode    uint64
	ReasonPhrase moqtype.ReasonPhrase
}

// FetchCancel cancels an in-progress Fetch.
type FetchCancel struct {
	RequestId uint64
}

// PublishNamespace declares a publisher's namespace (historically "Announce").
type PublishNamespace struct {
	RequestId uint64
	Namespace moqtype.Tuple
	Params    []moqtype.KeyValuePair
}

// PublishNamespaceOk acknowledges a PublishNamespace.
type PublishNamespaceOk struct {
	RequestId uint64
}

// PublishNamespaceError rejects a PublishNamespace.
type PublishNamespaceError struct {
	RequestId    uint64
	ErrorCode    uint64
	ReasonPhrase moqtype.ReasonPhrase
}

// PublishNamespaceDone withdraws a previously published namespace,
// publisher-initiated.
type PublishNamespaceDone struct {
	RequestId uint64
}

// PublishNamespaceCancel withdraws a namespace announcement, subscriber-
// or relay-initiated.
type PublishNamespaceCancel struct {
	RequestId    uint64
	ErrorCode    uint64
	ReasonPhrase moqtype.ReasonPhrase
}

// SubscribeNamespace requests notification of PublishNamespace activity
// under a namespace prefix.
type SubscribeNamespace struct {
	RequestId       uint64
	NamespacePrefix moqtype.Tuple
	Params          []moqtype.KeyValuePair
}

// SubscribeNamespaceOk confirms a SubscribeNamespace.
type SubscribeNamespaceOk struct {
	RequestId uint64
}

// SubscribeNamespaceError rejects a SubscribeNamespace.
type SubscribeNamespaceError struct {
	RequestId    uint64
	ErrorCode    uint64
	ReasonPhrase moqtype.ReasonPhrase
}

// UnsubscribeNamespace cancels a SubscribeNamespace.
type UnsubscribeNamespace struct {
	RequestId       uint64
	NamespacePrefix moqtype.Tuple
}

// TrackStatusRequest queries the current status of a named track.
type TrackStatusRequest struct {
	RequestId     uint64
	FullTrackName moqtype.FullTrackName
	Params        []moqtype.KeyValuePair
}

// TrackStatus is the authoritative draft-11 status response: StatusCode
// plus the largest known Location. Per spec.md §9, this
// {statusCode,largestLocation,params} shape is authoritative; the
// Subscribe-filter-shaped variant seen in some source trees is not
// implemented. LargestLocation must be (0,0) when StatusCode is
// DoesNotExist or NotYetBegun.
type TrackStatus struct {
	RequestId       uint64
	StatusCode      TrackStatusCode
	LargestLocation moqtype.Location
	Params          []moqtype.KeyValuePair
}

// NewTrackStatus validates the DoesNotExist/NotYetBegun ⇒ (0,0) invariant.
func NewTrackStatus(requestID uint64, status TrackStatusCode, largest moqtype.Location, params []moqtype.KeyValuePair) (TrackStatus, error) {
	if (status == TrackStatusDoesNotExist || status == TrackStatusNotYetBegun) && largest != (moqtype.Location{}) {
		return TrackStatus{}, ErrProtocolViolation
	}
	return TrackStatus{RequestId: requestID, StatusCode: status, LargestLocation: largest, Params: params}, nil
}

// TrackStatusOk acknowledges a TrackStatusRequest independent of the
// TrackStatus payload (used when a relay defers the actual status).
type TrackStatusOk struct {
	RequestId uint64
}

// TrackStatusError rejects a TrackStatusRequest.
type TrackStatusError struct {
	RequestId    uint64
	ErrorCode    uint64
	ReasonPhrase moqtype.ReasonPhrase
}

// GoAway signals a graceful session shutdown. An empty NewSessionUri means
// "no redirect".
type GoAway struct {
	NewSessionUri string
}

// MaxGoAwayURILen is the maximum length of GoAway's NewSessionUri field.
const MaxGoAwayURILen = 8192

// MaxRequestId raises the peer's request-id credit ceiling.
type MaxRequestId struct {
	RequestId uint64
}

// RequestsBlocked signals that the sender has exhausted its request-id
// credit up to Maximum and is stalled awaiting MaxRequestId.
type RequestsBlocked struct {
	Maximum uint64
}

// ReservedSetup represents one of the draft-11 reserved setup-message type
// codes (0x01, 0x40, 0x41). It is recognized on decode but never
// constructed by this module's encoder.
type ReservedSetup struct {
	Code MsgType
}
