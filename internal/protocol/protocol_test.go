package protocol

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/danmuck/spsproto/internal/protocol/schema"
	"github.com/danmuck/spsproto/internal/testutil/testlog"
)

// Byte vectors emitted by the firmware transcoder tests for
// ts=1436079600, cell_id=4, logger_id=7.
const (
	goldenPower    = "0a0a0804100718f0abe3ac05121211713d0ad7a390424019e17a14ae47296740"
	goldenTeros12  = "0a0a0804100718f0abe3ac051a1d110ad7a3703d99a0401985eb51b81e85db3f21cdcccccccccc3840287b"
	goldenPhytos31 = "0a0a0804100718f0abe3ac0522120914ae47e17a44964011cdcccccccca89e40"
	goldenBME280   = "0a0a0804100718f0abe3ac052a0b08a9810610e31118d0d402"
	goldenMeta     = "0a0a0804100718f0abe3ac05"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex fixture: %v", err)
	}
	return b
}

func TestEncodeMatchesFirmwareBytes(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name string
		got  []byte
		want string
	}{
		{"power", EncodePowerMeasurement(1436079600, 4, 7, 37.13, 185.29), goldenPower},
		{"teros12", EncodeTeros12Measurement(1436079600, 4, 7, 2124.62, 0.43, 24.8, 123), goldenTeros12},
		{"phytos31", EncodePhytos31Measurement(1436079600, 4, 7, 1425.12, 1962.2), goldenPhytos31},
		{"bme280", EncodeBME280Measurement(1436079600, 4, 7, 98473, 2275, 43600), goldenBME280},
	}
	for _, tc := range cases {
		if got := hex.EncodeToString(tc.got); got != tc.want {
			t.Fatalf("%s: got %s want %s", tc.name, got, tc.want)
		}
	}
}

func TestDecodePowerScenario(t *testing.T) {
	testlog.Start(t)
	got, err := DecodeMeasurementMap(EncodePowerMeasurement(1436079600, 4, 7, 37.13, 185.29))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["type"] != "power" {
		t.Fatalf("unexpected type: %v", got["type"])
	}
	if got["ts"] != uint32(1436079600) || got["cellId"] != uint32(4) || got["loggerId"] != uint32(7) {
		t.Fatalf("unexpected metadata: %v", got)
	}
	if v := got["voltage"].(float64); math.Abs(v-37.13) > 1e-9 {
		t.Fatalf("unexpected voltage: %v", v)
	}
	if v := got["current"].(float64); math.Abs(v-185.29) > 1e-9 {
		t.Fatalf("unexpected current: %v", v)
	}
	if len(got) != 6 {
		t.Fatalf("unexpected keys: %v", got)
	}
}

func TestRoundTripAllVariants(t *testing.T) {
	testlog.Start(t)
	meta := Metadata{CellID: 20, LoggerID: 4, Timestamp: 1436079600}
	payloads := []Payload{
		PowerMeasurement{Voltage: 122.38, Current: 514.81},
		Teros12Measurement{VwcRaw: 2124.62, VwcAdj: 0.43, Temp: 24.8, Ec: 123},
		Teros21Measurement{MatricPot: -1013.5, Temp: 21.25},
		Phytos31Measurement{Voltage: 1425.12, LeafWetness: 1962.2},
		BME280Measurement{Pressure: 98473, Temperature: -1250, Humidity: 43600},
	}
	for _, p := range payloads {
		data, err := EncodeMeasurement(Measurement{Meta: meta, Payload: p})
		if err != nil {
			t.Fatalf("%s: encode: %v", p.Type(), err)
		}
		got, err := DecodeMeasurement(data)
		if err != nil {
			t.Fatalf("%s: decode: %v", p.Type(), err)
		}
		if got.Meta != meta {
			t.Fatalf("%s: metadata mismatch: %+v", p.Type(), got.Meta)
		}
		if got.Payload != p {
			t.Fatalf("%s: payload mismatch: got %+v want %+v", p.Type(), got.Payload, p)
		}
	}
}

func TestRoundTripZeroValuedPayloadKeepsVariant(t *testing.T) {
	data, err := EncodeMeasurement(Measurement{Payload: Teros21Measurement{}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(data, []byte{0x0a, 0x00, 0x32, 0x00}) {
		t.Fatalf("unexpected bytes: %x", data)
	}
	got, err := DecodeMeasurement(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Payload.Type() != TypeTeros21 {
		t.Fatalf("unexpected variant: %s", got.Payload.Type())
	}
}

func TestAnnotatedReportsFieldTypes(t *testing.T) {
	m, err := DecodeMeasurement(mustHex(t, goldenTeros12))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	a := m.Annotated()
	if a.Type != TypeTeros12 || a.CellID != 4 || a.LoggerID != 7 {
		t.Fatalf("unexpected header: %+v", a)
	}
	for _, name := range []string{"vwcRaw", "vwcAdj", "temp"} {
		if a.DataType[name] != KindFloat {
			t.Fatalf("%s: expected float, got %q", name, a.DataType[name])
		}
	}
	if a.DataType["ec"] != KindInt || a.Data["ec"] != uint32(123) {
		t.Fatalf("unexpected ec: %v %v", a.Data["ec"], a.DataType["ec"])
	}
	nested := a.Map()
	if nested["type"] != "teros12" {
		t.Fatalf("unexpected nested type: %v", nested["type"])
	}
	if dt := nested["data_type"].(map[string]any); dt["ec"] != "int" {
		t.Fatalf("unexpected nested data_type: %v", dt)
	}
}

func TestBME280TemperatureIsSignedInt(t *testing.T) {
	m, err := DecodeMeasurement(EncodeBME280Measurement(1, 2, 3, 98473, -2275, 43600))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	a := m.Annotated()
	if a.Data["temperature"] != int32(-2275) || a.DataType["temperature"] != KindInt {
		t.Fatalf("unexpected temperature: %v", a.Data["temperature"])
	}
	bme := m.Payload.(BME280Measurement)
	if bme.PressureHPa() != 9847.3 || bme.TemperatureC() != -22.75 || bme.HumidityPercent() != 43.6 {
		t.Fatalf("unexpected SI values: %v %v %v", bme.PressureHPa(), bme.TemperatureC(), bme.HumidityPercent())
	}
}

func TestBME280TemperatureFromTruncatingEncoder(t *testing.T) {
	testlog.Start(t)
	data := []byte{
		0x0a, 0x02, 0x08, 0x04, // meta cell_id=4
		0x2a, 0x06, 0x10, 0xff, 0xff, 0xff, 0xff, 0x0f, // bme280 temperature, 5-byte -1
	}
	m, err := DecodeMeasurement(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	bme, ok := m.Payload.(BME280Measurement)
	if !ok || bme.Temperature != -1 || m.Meta.CellID != 4 {
		t.Fatalf("unexpected measurement: %#v", m)
	}
}

func TestOneofMembersHavePayloads(t *testing.T) {
	testlog.Start(t)
	members := schema.Oneof(schema.MsgMeasurement, "measurement")
	if len(members) != len(payloads) {
		t.Fatalf("schema declares %d members, %d payloads registered", len(members), len(payloads))
	}
	for _, spec := range members {
		zero, ok := payloads[spec.Sub]
		if !ok {
			t.Fatalf("no payload for %s", spec.Name)
		}
		if zero.tag() != spec.Num || string(zero.Type()) != spec.Name {
			t.Fatalf("payload %T disagrees with schema member %+v", zero, spec)
		}
	}
}

func TestDecodeMissingMetadata(t *testing.T) {
	payloadOnly := mustHex(t, goldenPower)[len(goldenMeta)/2:]
	_, err := DecodeMeasurement(payloadOnly)
	if !errors.Is(err, ErrMissingMetadata) {
		t.Fatalf("expected ErrMissingMetadata, got %v", err)
	}
	if errors.Is(err, ErrMalformed) || !IsSemantic(err) {
		t.Fatalf("missing metadata must not be reported as malformed: %v", err)
	}
}

func TestDecodeMissingPayload(t *testing.T) {
	_, err := DecodeMeasurement(mustHex(t, goldenMeta))
	if !errors.Is(err, ErrMissingPayload) {
		t.Fatalf("expected ErrMissingPayload, got %v", err)
	}
	if errors.Is(err, ErrAmbiguousPayload) || errors.Is(err, ErrMalformed) {
		t.Fatalf("unexpected classification: %v", err)
	}
}

func TestDecodeEmptyIsMissingMetadata(t *testing.T) {
	if _, err := DecodeMeasurement(nil); !errors.Is(err, ErrMissingMetadata) {
		t.Fatalf("expected ErrMissingMetadata, got %v", err)
	}
}

func TestDecodeMultipleVariantsRejected(t *testing.T) {
	data := mustHex(t, goldenPower)
	data = append(data, 0x32, 0x00) // empty teros21
	msg, err := ParseMeasurement(data)
	if err != nil {
		t.Fatalf("structural parse: %v", err)
	}
	if len(msg.Payloads) != 2 {
		t.Fatalf("expected both variants tracked, got %d", len(msg.Payloads))
	}
	_, err = Project(msg)
	if !errors.Is(err, ErrAmbiguousPayload) || !errors.Is(err, ErrMissingPayload) {
		t.Fatalf("expected ErrAmbiguousPayload, got %v", err)
	}
}

func TestDecodeMergesRepeatedVariant(t *testing.T) {
	data := mustHex(t, goldenMeta)
	data = append(data, 0x12, 0x09, 0x11)
	data = append(data, mustHex(t, "713d0ad7a3904240")...) // voltage only
	data = append(data, 0x12, 0x09, 0x19)
	data = append(data, mustHex(t, "e17a14ae47296740")...) // current only
	m, err := DecodeMeasurement(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	p := m.Payload.(PowerMeasurement)
	if p.Voltage != 37.13 || p.Current != 185.29 {
		t.Fatalf("occurrences not merged: %+v", p)
	}
}

func TestDecodeTruncatedPrefixes(t *testing.T) {
	testlog.Start(t)
	full := mustHex(t, goldenPower)
	boundary := len(goldenMeta) / 2
	for n := 1; n < len(full); n++ {
		_, err := DecodeMeasurement(full[:n])
		if n == boundary {
			if !errors.Is(err, ErrMissingPayload) {
				t.Fatalf("prefix %d: expected ErrMissingPayload, got %v", n, err)
			}
			continue
		}
		if !errors.Is(err, ErrMalformed) {
			t.Fatalf("prefix %d: expected ErrMalformed, got %v", n, err)
		}
		var de *DecodeError
		if !errors.As(err, &de) || de.Path == "" {
			t.Fatalf("prefix %d: expected DecodeError with path, got %v", n, err)
		}
	}
}

func TestDecodeWireTypeMismatchIsMalformed(t *testing.T) {
	// meta written as a varint
	_, err := DecodeMeasurement([]byte{0x08, 0x01})
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	// power.voltage written as a varint
	data := append(mustHex(t, goldenMeta), 0x12, 0x02, 0x10, 0x01)
	_, err = DecodeMeasurement(data)
	var de *DecodeError
	if !errors.As(err, &de) || de.Path != "Measurement.power" {
		t.Fatalf("expected DecodeError for Measurement.power, got %v", err)
	}
}

func TestDecodeMetadataOverflowIsMalformed(t *testing.T) {
	// meta.ts = 2^32
	data := []byte{0x0a, 0x06, 0x18, 0x80, 0x80, 0x80, 0x80, 0x10, 0x12, 0x00}
	if _, err := DecodeMeasurement(data); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	data := append(mustHex(t, goldenPower), 0x78, 0x05) // field 15 varint
	m, err := DecodeMeasurement(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Payload.Type() != TypePower {
		t.Fatalf("unexpected variant: %s", m.Payload.Type())
	}
}

func TestZeroMetadataIsStillPresent(t *testing.T) {
	data := EncodePowerMeasurement(0, 0, 0, 1, 1)
	if data[0] != 0x0a || data[1] != 0x00 {
		t.Fatalf("expected empty meta submessage, got %x", data)
	}
	m, err := DecodeMeasurement(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Meta != (Metadata{}) {
		t.Fatalf("unexpected metadata: %+v", m.Meta)
	}
}

func TestEncodeMeasurementRejectsNilPayload(t *testing.T) {
	_, err := EncodeMeasurement(Measurement{Meta: Metadata{CellID: 1}})
	if !errors.Is(err, ErrMissingPayload) {
		t.Fatalf("expected ErrMissingPayload, got %v", err)
	}
}

func TestResponseClosedSet(t *testing.T) {
	ok, err := DecodeResponse(EncodeResponse(true))
	if err != nil || ok.Resp != ResponseSuccess || !ok.Success() {
		t.Fatalf("success: %+v err=%v", ok, err)
	}
	fail, err := DecodeResponse(EncodeResponse(false))
	if err != nil || fail.Resp != ResponseError {
		t.Fatalf("error: %+v err=%v", fail, err)
	}
	if len(EncodeResponse(true)) != 0 {
		t.Fatalf("SUCCESS must encode to zero bytes")
	}
	if !bytes.Equal(EncodeResponse(false), []byte{0x08, 0x01}) {
		t.Fatalf("unexpected ERROR bytes: %x", EncodeResponse(false))
	}
}

func TestDecodeResponseRejectsUnknownValue(t *testing.T) {
	_, err := DecodeResponse([]byte{0x08, 0x02})
	if !errors.Is(err, ErrMalformed) || !errors.Is(err, ErrUnknownEnum) {
		t.Fatalf("expected malformed unknown enum, got %v", err)
	}
	if _, err := DecodeResponse([]byte{0x08}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for truncated response, got %v", err)
	}
}

func TestParseResponseType(t *testing.T) {
	if rt, err := ParseResponseType(" Success "); err != nil || rt != ResponseSuccess {
		t.Fatalf("unexpected: %v %v", rt, err)
	}
	_, err := ParseResponseType("MAYBE")
	var uv *UnsupportedVariantError
	if !errors.As(err, &uv) || uv.Key != "MAYBE" || !errors.Is(err, ErrUnsupportedVariant) {
		t.Fatalf("expected UnsupportedVariantError, got %v", err)
	}
}

func TestConcurrentDecode(t *testing.T) {
	data := mustHex(t, goldenTeros12)
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := DecodeMeasurement(data)
			if err == nil && m.Payload.Type() != TypeTeros12 {
				err = errors.New("wrong variant")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent decode: %v", err)
		}
	}
}
