package object

import "github.com/moqtail/moqt-go/moqtype"

// LOC header extension type ids, per the draft's "Location" extension
// registry. CaptureTimestamp/VideoFrameMarking/AudioLevel are even (varint
// value); VideoConfig is odd (length-prefixed blob).
const (
	ExtCaptureTimestamp  uint64 = 2
	ExtVideoFrameMarking uint64 = 4
	ExtAudioLevel        uint64 = 6
	ExtVideoConfig       uint64 = 13
)

// NewCaptureTimestampExt builds the CaptureTimestamp extension: a varint
// epoch-ms capture time for the object's payload.
func NewCaptureTimestampExt(ms uint64) (moqtype.KeyValuePair, error) {
	return moqtype.NewVarIntKV(ExtCaptureTimestamp, ms)
}

// CaptureTimestamp searches ext for the CaptureTimestamp extension.
func CaptureTimestamp(ext []moqtype.KeyValuePair) (uint64, bool) {
	return findVarIntExt(ext, ExtCaptureTimestamp)
}

// NewVideoFrameMarkingExt builds the VideoFrameMarking extension: a
// bitfield varint (independent/discardable/base-layer-sync flags packed
// by the caller, per the codec's own convention).
func NewVideoFrameMarkingExt(bits uint64) (moqtype.KeyValuePair, error) {
	return moqtype.NewVarIntKV(ExtVideoFrameMarking, bits)
}

// VideoFrameMarking searches ext for the VideoFrameMarking extension.
func VideoFrameMarking(ext []moqtype.KeyValuePair) (uint64, bool) {
	return findVarIntExt(ext, ExtVideoFrameMarking)
}

// NewAudioLevelExt builds the AudioLevel extension: an absolute value in
// dBov, packed as a varint (0 = loudest, 127 = silence, matching the
// RTP audio level header extension's convention this type mirrors).
func NewAudioLevelExt(dbov uint64) (moqtype.KeyValuePair, error) {
	return moqtype.NewVarIntKV(ExtAudioLevel, dbov)
}

// AudioLevel searches ext for the AudioLevel extension.
func AudioLevel(ext []moqtype.KeyValuePair) (uint64, bool) {
	return findVarIntExt(ext, ExtAudioLevel)
}

// NewVideoConfigExt builds the VideoConfig extension: an opaque
// codec-specific configuration blob (e.g. an AVCDecoderConfigurationRecord).
func NewVideoConfigExt(config []byte) (moqtype.KeyValuePair, error) {
	return moqtype.NewBytesKV(ExtVideoConfig, config)
}

// VideoConfig searches ext for the VideoConfig extension.
func VideoConfig(ext []moqtype.KeyValuePair) ([]byte, bool) {
	for _, kv := range ext {
		if kv.Type == ExtVideoConfig && !kv.IsVarInt() {
			return kv.BytesValue(), true
		}
	}
	return nil, false
}

func findVarIntExt(ext []moqtype.KeyValuePair, typ uint64) (uint64, bool) {
	for _, kv := range ext {
		if kv.Type == typ && kv.IsVarInt() {
			return kv.VarIntValue(), true
		}
	}
	return 0, false
}
