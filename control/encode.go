package control

import (
	"github.com/moqtail/moqt-go/moqtype"
	"github.com/moqtail/moqt-go/wire"
)

func serializeClientSetup(w wire.Writer, m ClientSetup) error {
	if err := w.WriteVarInt(uint64(len(m.Versions))); err != nil {
		return err
	}
	for _, v := range m.Versions {
		if err := w.WriteVarInt(v); err != nil {
			return err
		}
	}
	return moqtype.WriteParams(w, m.Params)
}

func serializeServerSetup(w wire.Writer, m ServerSetup) error {
	if err := w.WriteVarInt(m.SelectedVersion); err != nil {
		return err
	}
	return moqtype.WriteParams(w, m.Params)
}

func serializeSubscribe(w wire.Writer, m Subscribe) error {
	if err := w.WriteVarInt(m.RequestId); err != nil {
		return err
	}
	if err := w.WriteVarInt(m.TrackAlias); err != nil {
		return err
	}
	if err := m.FullTrackName.Serialize(w); err != nil {
		return err
	}
	w.WriteUint8(m.Priority)
	w.WriteUint8(byte(m.GroupOrder))
	w.WriteUint8(boolToByte(m.Forward))
	if err := w.WriteVarInt(uint64(m.FilterType)); err != nil {
		return err
	}
	switch m.FilterType {
	case FilterAbsoluteStart:
		if err := m.Start.Serialize(w); err != nil {
			return err
		}
	case FilterAbsoluteRange:
		if err := m.Start.Serialize(w); err != nil {
			return err
		}
		if err := w.WriteVarInt(m.EndGroup); err != nil {
			return err
		}
	}
	return moqtype.WriteParams(w, m.Params)
}

func serializeSubscribeOk(w wire.Writer, m SubscribeOk) error {
	if err := w.WriteVarInt(m.RequestId); err != nil {
		return err
	}
	if err := w.WriteVarInt(m.Expires); err != nil {
		return err
	}
	w.WriteUint8(byte(m.GroupOrder))
	w.WriteUint8(boolToByte(m.ContentExists))
	if m.ContentExists {
		if err := m.LargestLocation.Serialize(w); err != nil {
			return err
		}
	}
	return moqtype.WriteParams(w, m.Params)
}

func serializeSubscribeError(w wire.Writer, m SubscribeError) error {
	if err := w.WriteVarInt(m.RequestId); err != nil {
		return err
	}
	if err := w.WriteVarInt(m.ErrorCode); err != nil {
		return err
	}
	if err := m.ReasonPhrase.Serialize(w); err != nil {
		return err
	}
	return w.WriteVarInt(m.TrackAlias)
}

func serializeSubscribeUpdate(w wire.Writer, m SubscribeUpdate) error {
	if err := w.WriteVarInt(m.RequestId); err != nil {
		return err
	}
	if err := m.Start.Serialize(w); err != nil {
		return err
	}
	if err := w.WriteVarInt(m.EndGroup); err != nil {
		return err
	}
	w.WriteUint8(m.Priority)
	w.WriteUint8(boolToByte(m.Forward))
	return moqtype.WriteParams(w, m.Params)
}

func serializeSubscribeDone(w wire.Writer, m SubscribeDone) error {
	if err := w.WriteVarInt(m.RequestId); err != nil {
		return err
	}
	if err := w.WriteVarInt(uint64(m.StatusCode)); err != nil {
		return err
	}
	if err := w.WriteVarInt(m.StreamCount); err != nil {
		return err
	}
	return m.ReasonPhrase.Serialize(w)
}

func serializeUnsubscribe(w wire.Writer, m Unsubscribe) error {
	return w.WriteVarInt(m.RequestId)
}

func serializeFetch(w wire.Writer, m Fetch) error {
	if err := w.WriteVarInt(m.RequestId); err != nil {
		return err
	}
	w.WriteUint8(m.Priority)
	w.WriteUint8(byte(m.GroupOrder))
	if err := w.WriteVarInt(uint64(m.Kind)); err != nil {
		return err
	}
	switch m.Kind {
	case FetchKindStandAlone:
		if err := m.StandAlone.FullTrackName.Serialize(w); err != nil {
			return err
		}
		if err := m.StandAlone.Start.Serialize(w); err != nil {
			return err
		}
		if err := m.StandAlone.End.Serialize(w); err != nil {
			return err
		}
	case FetchKindRelative:
		if err := w.WriteVarInt(m.Relative.JoiningRequestId); err != nil {
			return err
		}
		if err := w.WriteVarInt(m.Relative.JoiningStart); err != nil {
			return err
		}
	case FetchKindAbsolute:
		if err := w.WriteVarInt(m.Absolute.JoiningRequestId); err != nil {
			return err
		}
		if err := w.WriteVarInt(m.Absolute.JoiningStart); err != nil {
			return err
		}
	}
	return moqtype.WriteParams(w, m.Params)
}

func serializeFetchOk(w wire.Writer, m FetchOk) error {
	if err := w.WriteVarInt(m.RequestId); err != nil {
		return err
	}
	w.WriteUint8(byte(m.GroupOrder))
	w.WriteUint8(boolToByte(m.EndOfTrack))
	if err := m.EndLocation.Serialize(w); err != nil {
		return err
	}
	return moqtype.WriteParams(w, m.Params)
}

func serializeFetchError(w wire.Writer, m FetchError) error {
	if err := w.WriteVarInt(m.RequestId); err != nil {
		return err
	}
	if err := w.WriteVarInt(m.ErrorCode); err != nil {
		return err
	}
	return m.ReasonPhrase.Serialize(w)
}

func serializeFetchCancel(w wire.Writer, m FetchCancel) error {
	return w.WriteVarInt(m.RequestId)
}

func serializePublishNamespace(w wire.Writer, m PublishNamespace) error {
	if err := w.WriteVarInt(m.RequestId); err != nil {
		return err
	}
	if err := m.Namespace.Serialize(w); err != nil {
		return err
	}
	return moqtype.WriteParams(w, m.Params)
}

func serializePublishNamespaceOk(w wire.Writer, m PublishNamespaceOk) error {
	return w.WriteVarInt(m.RequestId)
}

func serializePublishNamespaceError(w wire.Writer, m PublishNamespaceError) error {
	if err := w.WriteVarInt(m.RequestId); err != nil {
		return err
	}
	if err := w.WriteVarInt(m.ErrorCode); err != nil {
		return err
	}
	return m.ReasonPhrase.Serialize(w)
}

func serializePublishNamespaceDone(w wire.Writer, m PublishNamespaceDone) error {
	return w.WriteVarInt(m.RequestId)
}

func serializePublishNamespaceCancel(w wire.Writer, m PublishNamespaceCancel) error {
	if err := w.WriteVarInt(m.RequestId); err != nil {
		return err
	}
	if err := w.WriteVarInt(m.ErrorCode); err != nil {
		return err
	}
	return m.ReasonPhrase.Serialize(w)
}

func serializeSubscribeNamespace(w wire.Writer, m SubscribeNamespace) error {
	if err := w.WriteVarInt(m.RequestId); err != nil {
		return err
	}
	if err := m.NamespacePrefix.Serialize(w); err != nil {
		return err
	}
	return moqtype.WriteParams(w, m.Params)
}

func serializeSubscribeNamespaceOk(w wire.Writer, m SubscribeNamespaceOk) error {
	return w.WriteVarInt(m.RequestId)
}

func serializeSubscribeNamespaceError(w wire.Writer, m SubscribeNamespaceError) error {
	if err := w.WriteVarInt(m.RequestId); err != nil {
		return err
	}
	if err := w.WriteVarInt(m.ErrorCode); err != nil {
		return err
	}
	return m.ReasonPhrase.Serialize(w)
}

func serializeUnsubscribeNamespace(w wire.Writer, m UnsubscribeNamespace) error {
	if err := w.WriteVarInt(m.RequestId); err != nil {
		return err
	}
	return m.NamespacePrefix.Serialize(w)
}

func serializeTrackStatusRequest(w wire.Writer, m TrackStatusRequest) error {
	if err := w.WriteVarInt(m.RequestId); err != nil {
		return err
	}
	if err := m.FullTrackName.Serialize(w); err != nil {
		return err
	}
	return moqtype.WriteParams(w, m.Params)
}

func serializeTrackStatus(w wire.Writer, m TrackStatus) error {
	if err := w.WriteVarInt(m.RequestId); err != nil {
		return err
	}
	if err := w.WriteVarInt(uint64(m.StatusCode)); err != nil {
		return err
	}
	if err := m.LargestLocation.Serialize(w); err != nil {
		return err
	}
	return moqtype.WriteParams(w, m.Params)
}

func serializeTrackStatusOk(w wire.Writer, m TrackStatusOk) error {
	return w.WriteVarInt(m.RequestId)
}

func serializeTrackStatusError(w wire.Writer, m TrackStatusError) error {
	if err := w.WriteVarInt(m.RequestId); err != nil {
		return err
	}
	if err := w.WriteVarInt(m.ErrorCode); err != nil {
		return err
	}
	return m.ReasonPhrase.Serialize(w)
}

func serializeGoAway(w wire.Writer, m GoAway) error {
	return w.WriteVarIntBytes([]byte(m.NewSessionUri))
}

func serializeMaxRequestId(w wire.Writer, m MaxRequestId) error {
	return w.WriteVarInt(m.RequestId)
}

func serializeRequestsBlocked(w wire.Writer, m RequestsBlocked) error {
	return w.WriteVarInt(m.Maximum)
}
