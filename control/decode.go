package control

import (
	"github.com/moqtail/moqt-go/moqtype"
	"github.com/moqtail/moqt-go/wire"
)

func parseClientSetup(r wire.Reader) (ClientSetup, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return ClientSetup{}, err
	}
	versions := make([]uint64, n)
	for i := range versions {
		v, err := r.ReadVarInt()
		if err != nil {
			return ClientSetup{}, err
		}
		versions[i] = v
	}
	params, err := moqtype.ReadParams(r)
	if err != nil {
		return ClientSetup{}, err
	}
	return ClientSetup{Versions: versions, Params: params}, nil
}

func parseServerSetup(r wire.Reader) (ServerSetup, error) {
	v, err := r.ReadVarInt()
	if err != nil {
		return ServerSetup{}, err
	}
	params, err := moqtype.ReadParams(r)
	if err != nil {
		return ServerSetup{}, err
	}
	return ServerSetup{SelectedVersion: v, Params: params}, nil
}

func parseSubscribe(r wire.Reader) (Subscribe, error) {
	var m Subscribe
	var err error
	if m.RequestId, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.TrackAlias, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.FullTrackName, err = moqtype.ParseFullTrackName(r); err != nil {
		return m, err
	}
	priority, err := r.ReadUint8()
	if err != nil {
		return m, err
	}
	m.Priority = priority
	groupOrder, err := r.ReadUint8()
	if err != nil {
		return m, err
	}
	if m.GroupOrder, err = parseGroupOrder(uint64(groupOrder)); err != nil {
		return m, err
	}
	forward, err := r.ReadUint8()
	if err != nil {
		return m, err
	}
	if m.Forward, err = parseBool(forward); err != nil {
		return m, err
	}
	ft, err := r.ReadVarInt()
	if err != nil {
		return m, err
	}
	if m.FilterType, err = parseFilterType(ft); err != nil {
		return m, err
	}
	switch m.FilterType {
	case FilterAbsoluteStart:
		if m.Start, err = moqtype.ParseLocation(r); err != nil {
			return m, err
		}
	case FilterAbsoluteRange:
		if m.Start, err = moqtype.ParseLocation(r); err != nil {
			return m, err
		}
		if m.EndGroup, err = r.ReadVarInt(); err != nil {
			return m, err
		}
		if m.EndGroup < m.Start.Group {
			return m, ErrInvalidRange
		}
	}
	if m.Params, err = moqtype.ReadParams(r); err != nil {
		return m, err
	}
	return m, nil
}

func parseSubscribeOk(r wire.Reader) (SubscribeOk, error) {
	var m SubscribeOk
	var err error
	if m.RequestId, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.Expires, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	order, err := r.ReadUint8()
	if err != nil {
		return m, err
	}
	if m.GroupOrder, err = parseGroupOrder(uint64(order)); err != nil {
		return m, err
	}
	if m.GroupOrder == GroupOrderOriginal {
		return m, ErrProtocolViolation
	}
	exists, err := r.ReadUint8()
	if err != nil {
		return m, err
	}
	if m.ContentExists, err = parseBool(exists); err != nil {
		return m, err
	}
	if m.ContentExists {
		if m.LargestLocation, err = moqtype.ParseLocation(r); err != nil {
			return m, err
		}
	}
	if m.Params, err = moqtype.ReadParams(r); err != nil {
		return m, err
	}
	return m, nil
}

func parseSubscribeError(r wire.Reader) (SubscribeError, error) {
	var m SubscribeError
	var err error
	if m.RequestId, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.ErrorCode, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.ReasonPhrase, err = moqtype.ParseReasonPhrase(r, 0); err != nil {
		return m, err
	}
	if m.TrackAlias, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	return m, nil
}

func parseSubscribeUpdate(r wire.Reader) (SubscribeUpdate, error) {
	var m SubscribeUpdate
	var err error
	if m.RequestId, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.Start, err = moqtype.ParseLocation(r); err != nil {
		return m, err
	}
	if m.EndGroup, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	priority, err := r.ReadUint8()
	if err != nil {
		return m, err
	}
	m.Priority = priority
	forward, err := r.ReadUint8()
	if err != nil {
		return m, err
	}
	if m.Forward, err = parseBool(forward); err != nil {
		return m, err
	}
	if m.Params, err = moqtype.ReadParams(r); err != nil {
		return m, err
	}
	return m, nil
}

func parseSubscribeDone(r wire.Reader) (SubscribeDone, error) {
	var m SubscribeDone
	var err error
	if m.RequestId, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	status, err := r.ReadVarInt()
	if err != nil {
		return m, err
	}
	if m.StatusCode, err = parseSubscribeDoneStatus(status); err != nil {
		return m, err
	}
	if m.StreamCount, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.ReasonPhrase, err = moqtype.ParseReasonPhrase(r, 0); err != nil {
		return m, err
	}
	return m, nil
}

func parseUnsubscribe(r wire.Reader) (Unsubscribe, error) {
	reqID, err := r.ReadVarInt()
	if err != nil {
		return Unsubscribe{}, err
	}
	return Unsubscribe{RequestId: reqID}, nil
}

func parseFetch(r wire.Reader) (Fetch, error) {
	var m Fetch
	var err error
	if m.RequestId, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	priority, err := r.ReadUint8()
	if err != nil {
		return m, err
	}
	m.Priority = priority
	order, err := r.ReadUint8()
	if err != nil {
		return m, err
	}
	if m.GroupOrder, err = parseGroupOrder(uint64(order)); err != nil {
		return m, err
	}
	kind, err := r.ReadVarInt()
	if err != nil {
		return m, err
	}
	if m.Kind, err = parseFetchKind(kind); err != nil {
		return m, err
	}
	switch m.Kind {
	case FetchKindStandAlone:
		if m.StandAlone.FullTrackName, err = moqtype.ParseFullTrackName(r); err != nil {
			return m, err
		}
		if m.StandAlone.Start, err = moqtype.ParseLocation(r); err != nil {
			return m, err
		}
		if m.StandAlone.End, err = moqtype.ParseLocation(r); err != nil {
			return m, err
		}
	case FetchKindRelative:
		if m.Relative.JoiningRequestId, err = r.ReadVarInt(); err != nil {
			return m, err
		}
		if m.Relative.JoiningStart, err = r.ReadVarInt(); err != nil {
			return m, err
		}
	case FetchKindAbsolute:
		if m.Absolute.JoiningRequestId, err = r.ReadVarInt(); err != nil {
			return m, err
		}
		if m.Absolute.JoiningStart, err = r.ReadVarInt(); err != nil {
			return m, err
		}
	}
	if m.Params, err = moqtype.ReadParams(r); err != nil {
		return m, err
	}
	return m, nil
}

func parseFetchOk(r wire.Reader) (FetchOk, error) {
	var m FetchOk
	var err error
	if m.RequestId, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	order, err := r.ReadUint8()
	if err != nil {
		return m, err
	}
	if m.GroupOrder, err = parseGroupOrder(uint64(order)); err != nil {
		return m, err
	}
	if m.GroupOrder == GroupOrderOriginal {
		return m, ErrProtocolViolation
	}
	eot, err := r.ReadUint8()
	if err != nil {
		return m, err
	}
	if m.EndOfTrack, err = parseBool(eot); err != nil {
		return m, err
	}
	if m.EndLocation, err = moqtype.ParseLocation(r); err != nil {
		return m, err
	}
	if m.Params, err = moqtype.ReadParams(r); err != nil {
		return m, err
	}
	return m, nil
}

func parseFetchError(r wire.Reader) (FetchError, error) {
	var m FetchError
	var err error
	if m.RequestId, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.ErrorCode, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.ReasonPhrase, err = moqtype.ParseReasonPhrase(r, 0); err != nil {
		return m, err
	}
	return m, nil
}

func parseFetchCancel(r wire.Reader) (FetchCancel, error) {
	reqID, err := r.ReadVarInt()
	if err != nil {
		return FetchCancel{}, err
	}
	return FetchCancel{RequestId: reqID}, nil
}

func parsePublishNamespace(r wire.Reader) (PublishNamespace, error) {
	var m PublishNamespace
	var err error
	if m.RequestId, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.Namespace, err = moqtype.ParseTuple(r); err != nil {
		return m, err
	}
	if m.Params, err = moqtype.ReadParams(r); err != nil {
		return m, err
	}
	return m, nil
}

func parsePublishNamespaceOk(r wire.Reader) (PublishNamespaceOk, error) {
	reqID, err := r.ReadVarInt()
	if err != nil {
		return PublishNamespaceOk{}, err
	}
	return PublishNamespaceOk{RequestId: reqID}, nil
}

func parsePublishNamespaceError(r wire.Reader) (PublishNamespaceError, error) {
	var m PublishNamespaceError
	var err error
	if m.RequestId, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.ErrorCode, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.ReasonPhrase, err = moqtype.ParseReasonPhrase(r, 0); err != nil {
		return m, err
	}
	return m, nil
}

func parsePublishNamespaceDone(r wire.Reader) (PublishNamespaceDone, error) {
	reqID, err := r.ReadVarInt()
	if err != nil {
		return PublishNamespaceDone{}, err
	}
	return PublishNamespaceDone{RequestId: reqID}, nil
}

func parsePublishNamespaceCancel(r wire.Reader) (PublishNamespaceCancel, error) {
	var m PublishNamespaceCancel
	var err error
	if m.RequestId, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.ErrorCode, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.ReasonPhrase, err = moqtype.ParseReasonPhrase(r, 0); err != nil {
		return m, err
	}
	return m, nil
}

func parseSubscribeNamespace(r wire.Reader) (SubscribeNamespace, error) {
	var m SubscribeNamespace
	var err error
	if m.RequestId, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.NamespacePrefix, err = moqtype.ParseTuple(r); err != nil {
		return m, err
	}
	if m.Params, err = moqtype.ReadParams(r); err != nil {
		return m, err
	}
	return m, nil
}

func parseSubscribeNamespaceOk(r wire.Reader) (SubscribeNamespaceOk, error) {
	reqID, err := r.ReadVarInt()
	if err != nil {
		return SubscribeNamespaceOk{}, err
	}
	return SubscribeNamespaceOk{RequestId: reqID}, nil
}

func parseSubscribeNamespaceError(r wire.Reader) (SubscribeNamespaceError, error) {
	var m SubscribeNamespaceError
	var err error
	if m.RequestId, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.ErrorCode, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.ReasonPhrase, err = moqtype.ParseReasonPhrase(r, 0); err != nil {
		return m, err
	}
	return m, nil
}

func parseUnsubscribeNamespace(r wire.Reader) (UnsubscribeNamespace, error) {
	var m UnsubscribeNamespace
	var err error
	if m.RequestId, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.NamespacePrefix, err = moqtype.ParseTuple(r); err != nil {
		return m, err
	}
	return m, nil
}

func parseTrackStatusRequest(r wire.Reader) (TrackStatusRequest, error) {
	var m TrackStatusRequest
	var err error
	if m.RequestId, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.FullTrackName, err = moqtype.ParseFullTrackName(r); err != nil {
		return m, err
	}
	if m.Params, err = moqtype.ReadParams(r); err != nil {
		return m, err
	}
	return m, nil
}

func parseTrackStatus(r wire.Reader) (TrackStatus, error) {
	var m TrackStatus
	var err error
	if m.RequestId, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	status, err := r.ReadVarInt()
	if err != nil {
		return m, err
	}
	if m.StatusCode, err = parseTrackStatusCode(status); err != nil {
		return m, err
	}
	if m.LargestLocation, err = moqtype.ParseLocation(r); err != nil {
		return m, err
	}
	if (m.StatusCode == TrackStatusDoesNotExist || m.StatusCode == TrackStatusNotYetBegun) &&
		m.LargestLocation != (moqtype.Location{}) {
		return m, ErrProtocolViolation
	}
	if m.Params, err = moqtype.ReadParams(r); err != nil {
		return m, err
	}
	return m, nil
}

func parseTrackStatusOk(r wire.Reader) (TrackStatusOk, error) {
	reqID, err := r.ReadVarInt()
	if err != nil {
		return TrackStatusOk{}, err
	}
	return TrackStatusOk{RequestId: reqID}, nil
}

func parseTrackStatusError(r wire.Reader) (TrackStatusError, error) {
	var m TrackStatusError
	var err error
	if m.RequestId, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.ErrorCode, err = r.ReadVarInt(); err != nil {
		return m, err
	}
	if m.ReasonPhrase, err = moqtype.ParseReasonPhrase(r, 0); err != nil {
		return m, err
	}
	return m, nil
}

func parseGoAway(r wire.Reader) (GoAway, error) {
	b, err := r.ReadVarIntBytes(MaxGoAwayURILen)
	if err != nil {
		return GoAway{}, err
	}
	return GoAway{NewSessionUri: string(b)}, nil
}

func parseMaxRequestId(r wire.Reader) (MaxRequestId, error) {
	v, err := r.ReadVarInt()
	if err != nil {
		return MaxRequestId{}, err
	}
	return MaxRequestId{RequestId: v}, nil
}

func parseRequestsBlocked(r wire.Reader) (RequestsBlocked, error) {
	v, err := r.ReadVarInt()
	if err != nil {
		return RequestsBlocked{}, err
	}
	return RequestsBlocked{Maximum: v}, nil
}
