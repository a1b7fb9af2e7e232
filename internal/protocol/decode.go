package protocol

import (
	"github.com/danmuck/spsproto/internal/protocol/schema"
	"google.golang.org/protobuf/encoding/protowire"
)

// MeasurementMessage is the structural parse of a Measurement before its
// invariants are checked. Meta is nil when the field was never written.
// Payloads holds one entry per distinct oneof member written, in first-seen
// order; repeated occurrences of one member are merged.
type MeasurementMessage struct {
	Meta     *Metadata
	Payloads []Payload
}

// ParseMeasurement parses data against the Measurement schema without
// enforcing the metadata/payload invariants.
func ParseMeasurement(data []byte) (*MeasurementMessage, error) {
	fields, err := schema.Parse(schema.MsgMeasurement, data)
	if err != nil {
		return nil, malformed("Measurement", err)
	}

	msg := &MeasurementMessage{}
	seen := make(map[protowire.Number]int, 1)
	for _, f := range fields {
		if f.Num == schema.MeasurementMeta {
			meta, err := parseMetadata(msg.Meta, f.Value)
			if err != nil {
				return nil, err
			}
			msg.Meta = &meta
			continue
		}
		spec, ok := schema.Lookup(schema.MsgMeasurement, f.Num)
		if !ok || spec.Oneof != "measurement" {
			continue
		}
		zero, ok := payloads[spec.Sub]
		if !ok {
			continue
		}
		path := "Measurement." + string(zero.Type())
		sub, err := schema.Parse(spec.Sub, f.Value)
		if err != nil {
			return nil, malformed(path, err)
		}
		base := zero
		idx, merged := seen[f.Num]
		if merged {
			base = msg.Payloads[idx]
		}
		p, err := base.merge(sub)
		if err != nil {
			return nil, malformed(path, err)
		}
		if merged {
			msg.Payloads[idx] = p
			continue
		}
		seen[f.Num] = len(msg.Payloads)
		msg.Payloads = append(msg.Payloads, p)
	}
	return msg, nil
}

func parseMetadata(prev *Metadata, body []byte) (Metadata, error) {
	var meta Metadata
	if prev != nil {
		meta = *prev
	}
	fields, err := schema.Parse(schema.MsgMeasurementMetadata, body)
	if err != nil {
		return Metadata{}, malformed("Measurement.meta", err)
	}
	for _, f := range fields {
		switch f.Num {
		case schema.MetaCellID:
			meta.CellID, err = f.Uint32()
		case schema.MetaLoggerID:
			meta.LoggerID, err = f.Uint32()
		case schema.MetaTs:
			meta.Timestamp, err = f.Uint32()
		}
		if err != nil {
			return Metadata{}, malformed("Measurement.meta", err)
		}
	}
	return meta, nil
}

// Project enforces the Measurement invariants: metadata present and exactly
// one payload variant set.
func Project(msg *MeasurementMessage) (Measurement, error) {
	if msg == nil || msg.Meta == nil {
		return Measurement{}, ErrMissingMetadata
	}
	switch len(msg.Payloads) {
	case 0:
		return Measurement{}, ErrMissingPayload
	case 1:
		return Measurement{Meta: *msg.Meta, Payload: msg.Payloads[0]}, nil
	default:
		return Measurement{}, ErrAmbiguousPayload
	}
}

// DecodeMeasurement parses and projects data in one step.
func DecodeMeasurement(data []byte) (Measurement, error) {
	msg, err := ParseMeasurement(data)
	if err != nil {
		return Measurement{}, err
	}
	return Project(msg)
}

// DecodeMeasurementMap decodes data into the flat consumer mapping.
func DecodeMeasurementMap(data []byte) (map[string]any, error) {
	m, err := DecodeMeasurement(data)
	if err != nil {
		return nil, err
	}
	return m.Flatten(), nil
}

// DecodeResponse parses a Response. Empty input is SUCCESS, the enum default.
func DecodeResponse(data []byte) (Response, error) {
	fields, err := schema.Parse(schema.MsgResponse, data)
	if err != nil {
		return Response{}, malformed("Response", err)
	}
	var resp Response
	for _, f := range fields {
		if f.Num != schema.ResponseResp {
			continue
		}
		v, err := f.Int32()
		if err != nil {
			return Response{}, malformed("Response", err)
		}
		rt := ResponseType(v)
		if rt != ResponseSuccess && rt != ResponseError {
			return Response{}, malformed("Response", &EnumError{Enum: "ResponseType", Value: v})
		}
		resp.Resp = rt
	}
	return resp, nil
}
