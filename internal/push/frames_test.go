package push

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dmarsh/market-mirror/internal/model"
)

func TestDecodeFrame_Heartbeat(t *testing.T) {
	f, err := DecodeFrame([]byte(`[1010]`))
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	if _, ok := f.(HeartbeatFrame); !ok {
		t.Errorf("frame = %T, want HeartbeatFrame", f)
	}
}

func TestDecodeFrame_SubscribeAck(t *testing.T) {
	f, err := DecodeFrame([]byte(`[1002, 1]`))
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	ack, ok := f.(AckFrame)
	if !ok {
		t.Fatalf("frame = %T, want AckFrame", f)
	}
	if ack.Channel != ChannelTicker || !ack.Subscribed {
		t.Errorf("ack = %+v, want subscribed on channel 1002", ack)
	}
}

func TestDecodeFrame_UnsubscribeAck_StringChannel(t *testing.T) {
	// Unsubscribe acks sometimes encode the channel id as text.
	f, err := DecodeFrame([]byte(`["1002", 0]`))
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	ack, ok := f.(AckFrame)
	if !ok {
		t.Fatalf("frame = %T, want AckFrame", f)
	}
	if ack.Channel != ChannelTicker {
		t.Errorf("Channel = %d, want coerced 1002", ack.Channel)
	}
	if ack.Subscribed {
		t.Error("Subscribed = true, want false")
	}
}

func TestDecodeFrame_Ticker(t *testing.T) {
	data := []byte(`[1002, 5, [1, "0.07", "0.069", "0.071", "0", "0", "0", 0, "0.072", "0.04"]]`)

	f, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	tf, ok := f.(TickerFrame)
	if !ok {
		t.Fatalf("frame = %T, want TickerFrame", f)
	}

	if tf.Seq != 5 {
		t.Errorf("Seq = %d, want 5", tf.Seq)
	}
	want := []model.TickerUpdate{
		{ID: 1, Last: "0.07", Frozen: false},
	}
	if diff := cmp.Diff(want, tf.Updates); diff != "" {
		t.Errorf("updates mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeFrame_Ticker_MixedIDAndFrozenEncodings(t *testing.T) {
	data := []byte(`[1002, 6,
		["2", "10", "10.1", "9.9", "0", "0", "0", "1", "11", "9"],
		[3, "0.5", "0.51", "0.49", "0", "0", "0", 1, "0.6", "0.4"]
	]`)

	f, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	tf := f.(TickerFrame)

	want := []model.TickerUpdate{
		{ID: 2, Last: "10", Frozen: true},
		{ID: 3, Last: "0.5", Frozen: true},
	}
	if diff := cmp.Diff(want, tf.Updates); diff != "" {
		t.Errorf("updates mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeFrame_Volume(t *testing.T) {
	f, err := DecodeFrame([]byte(`[1003, 12, ["2024-01-01", 1234, {"BTC": "100.5"}]]`))
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	vf, ok := f.(VolumeFrame)
	if !ok {
		t.Fatalf("frame = %T, want VolumeFrame", f)
	}
	if vf.Seq != 12 {
		t.Errorf("Seq = %d, want 12", vf.Seq)
	}
	if len(vf.Payload) == 0 {
		t.Error("empty payload")
	}
}

func TestDecodeFrame_Account(t *testing.T) {
	f, err := DecodeFrame([]byte(`[1000, null, [["b", 123, "exchange", "0.5"]]]`))
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	if _, ok := f.(AccountFrame); !ok {
		t.Errorf("frame = %T, want AccountFrame", f)
	}
}

func TestDecodeFrame_Book(t *testing.T) {
	f, err := DecodeFrame([]byte(`[189, 10, ["o", 1, "0.052", "1.5"]]`))
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	bf, ok := f.(BookFrame)
	if !ok {
		t.Fatalf("frame = %T, want BookFrame", f)
	}
	if bf.Channel != 189 || bf.Seq != 10 {
		t.Errorf("frame = %+v, want channel 189 seq 10", bf)
	}
}

func TestDecodeFrame_UnknownShape(t *testing.T) {
	f, err := DecodeFrame([]byte(`[77, 2]`))
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	uf, ok := f.(UnknownFrame)
	if !ok {
		t.Fatalf("frame = %T, want UnknownFrame", f)
	}
	if uf.Channel != 77 {
		t.Errorf("Channel = %d, want 77", uf.Channel)
	}
}

func TestDecodeFrame_Malformed(t *testing.T) {
	cases := []string{
		`{"not": "an array"}`,
		`[]`,
		`[{"bad": "channel"}, 1]`,
		`[1002, 5, {"not": "positional"}]`,
		`[1002, 5, [1, 42]]`, // last price not a string, entry too short
	}

	for _, raw := range cases {
		if _, err := DecodeFrame([]byte(raw)); err == nil {
			t.Errorf("DecodeFrame(%s) = nil error, want failure", raw)
		}
	}
}
