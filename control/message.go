package control

import (
	"fmt"

	"github.com/moqtail/moqt-go/wire"
)

// MaxPayloadLen is the largest control-message payload this module will
// write or accept: a control stream frame is type:varint, length:u16,
// payload, so length can never exceed a u16.
const MaxPayloadLen = 65535

// Encode dispatches msg to its wire representation, returning the message
// type it was encoded as and the serialized payload (not yet framed with
// a length prefix).
func Encode(msg any) (MsgType, []byte, error) {
	w := wire.NewBuffer()
	var t MsgType
	var err error

	switch m := msg.(type) {
	case ClientSetup:
		t, err = MsgClientSetup, serializeClientSetup(w, m)
	case ServerSetup:
		t, err = MsgServerSetup, serializeServerSetup(w, m)
	case Subscribe:
		t, err = MsgSubscribe, serializeSubscribe(w, m)
	case SubscribeOk:
		t, err = MsgSubscribeOk, serializeSubscribeOk(w, m)
	case SubscribeError:
		t, err = MsgSubscribeError, serializeSubscribeError(w, m)
	case SubscribeUpdate:
		t, err = MsgSubscribeUpdate, serializeSubscribeUpdate(w, m)
	case SubscribeDone:
		t, err = MsgSubscribeDone, serializeSubscribeDone(w, m)
	case Unsubscribe:
		t, err = MsgUnsubscribe, serializeUnsubscribe(w, m)
	case Fetch:
		t, err = MsgFetch, serializeFetch(w, m)
	case FetchOk:
		t, err = MsgFetchOk, serializeFetchOk(w, m)
	case FetchError:
		t, err = MsgFetchError, serializeFetchError(w, m)
	case FetchCancel:
		t, err = MsgFetchCancel, serializeFetchCancel(w, m)
	case PublishNamespace:
		t, err = MsgPublishNamespace, serializePublishNamespace(w, m)
	case PublishNamespaceOk:
		t, err = MsgPublishNamespaceOk, serializePublishNamespaceOk(w, m)
	case PublishNamespaceError:
		t, err = MsgPublishNamespaceError, serializePublishNamespaceError(w, m)
	case PublishNamespaceDone:
		t, err = MsgPublishNamespaceDone, serializePublishNamespaceDone(w, m)
	case PublishNamespaceCancel:
		t, err = MsgPublishNamespaceCancel, serializePublishNamespaceCancel(w, m)
	case SubscribeNamespace:
		t, err = MsgSubscribeNamespace, serializeSubscribeNamespace(w, m)
	case SubscribeNamespaceOk:
		t, err = MsgSubscribeNamespaceOk, serializeSubscribeNamespaceOk(w, m)
	case SubscribeNamespaceError:
		t, err = MsgSubscribeNamespaceError, serializeSubscribeNamespaceError(w, m)
	case UnsubscribeNamespace:
		t, err = MsgUnsubscribeNamespace, serializeUnsubscribeNamespace(w, m)
	case TrackStatusRequest:
		t, err = MsgTrackStatusRequest, serializeTrackStatusRequest(w, m)
	case TrackStatus:
		t, err = MsgTrackStatus, serializeTrackStatus(w, m)
	case TrackStatusOk:
		t, err = MsgTrackStatusOk, serializeTrackStatusOk(w, m)
	case TrackStatusError:
		t, err = MsgTrackStatusError, serializeTrackStatusError(w, m)
	case GoAway:
		t, err = MsgGoAway, serializeGoAway(w, m)
	case MaxRequestId:
		t, err = MsgMaxRequestId, serializeMaxRequestId(w, m)
	case RequestsBlocked:
		t, err = MsgRequestsBlocked, serializeRequestsBlocked(w, m)
	default:
		return 0, nil, fmt.Errorf("control: %T: %w", msg, ErrInvalidType)
	}
	if err != nil {
		return 0, nil, err
	}
	if w.Len() > MaxPayloadLen {
		return 0, nil, &ParseError{MsgType: uint64(t), Field: "payload", Err: ErrLengthExceedsMax}
	}
	return t, w.Bytes(), nil
}

// Decode dispatches a payload of the given MsgType to its typed message
// value. Reserved setup codes decode to ReservedSetup rather than an
// error, matching spec.md's Open Question resolution: they are
// recognized on the wire but never constructed by Encode.
func Decode(msgType MsgType, payload []byte) (any, error) {
	if reservedSetupTypes[msgType] {
		return ReservedSetup{Code: msgType}, nil
	}

	r := wire.NewBufferFrom(payload)
	var (
		msg any
		err error
	)
	switch msgType {
	case MsgClientSetup:
		msg, err = parseClientSetup(r)
	case MsgServerSetup:
		msg, err = parseServerSetup(r)
	case MsgSubscribe:
		msg, err = parseSubscribe(r)
	case MsgSubscribeOk:
		msg, err = parseSubscribeOk(r)
	case MsgSubscribeError:
		msg, err = parseSubscribeError(r)
	case MsgSubscribeUpdate:
		msg, err = parseSubscribeUpdate(r)
	case MsgSubscribeDone:
		msg, err = parseSubscribeDone(r)
	case MsgUnsubscribe:
		msg, err = parseUnsubscribe(r)
	case MsgFetch:
		msg, err = parseFetch(r)
	case MsgFetchOk:
		msg, err = parseFetchOk(r)
	case MsgFetchError:
		msg, err = parseFetchError(r)
	case MsgFetchCancel:
		msg, err = parseFetchCancel(r)
	case MsgPublishNamespace:
		msg, err = parsePublishNamespace(r)
	case MsgPublishNamespaceOk:
		msg, err = parsePublishNamespaceOk(r)
	case MsgPublishNamespaceError:
		msg, err = parsePublishNamespaceError(r)
	case MsgPublishNamespaceDone:
		msg, err = parsePublishNamespaceDone(r)
	case MsgPublishNamespaceCancel:
		msg, err = parsePublishNamespaceCancel(r)
	case MsgSubscribeNamespace:
		msg, err = parseSubscribeNamespace(r)
	case MsgSubscribeNamespaceOk:
		msg, err = parseSubscribeNamespaceOk(r)
	case MsgSubscribeNamespaceError:
		msg, err = parseSubscribeNamespaceError(r)
	case MsgUnsubscribeNamespace:
		msg, err = parseUnsubscribeNamespace(r)
	case MsgTrackStatusRequest:
		msg, err = parseTrackStatusRequest(r)
	case MsgTrackStatus:
		msg, err = parseTrackStatus(r)
	case MsgTrackStatusOk:
		msg, err = parseTrackStatusOk(r)
	case MsgTrackStatusError:
		msg, err = parseTrackStatusError(r)
	case MsgGoAway:
		msg, err = parseGoAway(r)
	case MsgMaxRequestId:
		msg, err = parseMaxRequestId(r)
	case MsgRequestsBlocked:
		msg, err = parseRequestsBlocked(r)
	default:
		return nil, fmt.Errorf("control: type 0x%x: %w", uint64(msgType), ErrInvalidType)
	}
	if err != nil {
		return nil, &ParseError{MsgType: uint64(msgType), Field: "body", Err: err}
	}
	return msg, nil
}

// ReadControlMsg reads one framed control message (type:varint,
// length:u16, payload) from r and decodes it. It returns
// ErrNotEnoughBytes-wrapping errors (unwrapped from r's Reader methods)
// when the frame is incomplete, so callers pumping from a streaming
// source can tell "need more bytes" apart from a malformed frame.
func ReadControlMsg(r wire.Reader) (MsgType, any, error) {
	mark := r.Checkpoint()
	rawType, err := r.ReadVarInt()
	if err != nil {
		r.Restore(mark)
		return 0, nil, err
	}
	msgType := MsgType(rawType)
	length, err := r.ReadUint16()
	if err != nil {
		r.Restore(mark)
		return 0, nil, err
	}
	payload, err := r.ReadBytes(int(length))
	if err != nil {
		r.Restore(mark)
		return 0, nil, err
	}
	msg, err := Decode(msgType, payload)
	if err != nil {
		return msgType, nil, err
	}
	return msgType, msg, nil
}

// WriteControlMsg frames and writes msg to w: type:varint, length:u16,
// payload.
func WriteControlMsg(w wire.Writer, msg any) error {
	msgType, payload, err := Encode(msg)
	if err != nil {
		return err
	}
	if len(payload) > MaxPayloadLen {
		return &ParseError{MsgType: uint64(msgType), Field: "payload", Err: ErrLengthExceedsMax}
	}
	if err := w.WriteVarInt(uint64(msgType)); err != nil {
		return err
	}
	w.WriteUint16(uint16(len(payload)))
	w.WriteBytes(payload)
	return nil
}
