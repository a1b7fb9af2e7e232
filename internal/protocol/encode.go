package protocol

import (
	"github.com/danmuck/spsproto/internal/protocol/schema"
	"github.com/danmuck/spsproto/internal/protocol/wire"
)

// Largest Measurement (teros12) is 43 bytes.
const measurementBufSize = 48

// EncodePowerMeasurement serializes a Measurement carrying a PowerMeasurement.
func EncodePowerMeasurement(ts, cellID, loggerID uint32, voltage, current float64) []byte {
	return encodeMeasurement(Metadata{CellID: cellID, LoggerID: loggerID, Timestamp: ts},
		PowerMeasurement{Voltage: voltage, Current: current})
}

// EncodeTeros12Measurement serializes a Measurement carrying a Teros12Measurement.
func EncodeTeros12Measurement(ts, cellID, loggerID uint32, vwcRaw, vwcAdj, temp float64, ec uint32) []byte {
	return encodeMeasurement(Metadata{CellID: cellID, LoggerID: loggerID, Timestamp: ts},
		Teros12Measurement{VwcRaw: vwcRaw, VwcAdj: vwcAdj, Temp: temp, Ec: ec})
}

// EncodeTeros21Measurement serializes a Measurement carrying a Teros21Measurement.
func EncodeTeros21Measurement(ts, cellID, loggerID uint32, matricPot, temp float64) []byte {
	return encodeMeasurement(Metadata{CellID: cellID, LoggerID: loggerID, Timestamp: ts},
		Teros21Measurement{MatricPot: matricPot, Temp: temp})
}

// EncodePhytos31Measurement serializes a Measurement carrying a Phytos31Measurement.
func EncodePhytos31Measurement(ts, cellID, loggerID uint32, voltage, leafWetness float64) []byte {
	return encodeMeasurement(Metadata{CellID: cellID, LoggerID: loggerID, Timestamp: ts},
		Phytos31Measurement{Voltage: voltage, LeafWetness: leafWetness})
}

// EncodeBME280Measurement serializes a Measurement carrying raw BME280 counts.
func EncodeBME280Measurement(ts, cellID, loggerID, pressure uint32, temperature int32, humidity uint32) []byte {
	return encodeMeasurement(Metadata{CellID: cellID, LoggerID: loggerID, Timestamp: ts},
		BME280Measurement{Pressure: pressure, Temperature: temperature, Humidity: humidity})
}

// EncodeMeasurement serializes m. A nil payload is rejected rather than
// written as a bare metadata message.
func EncodeMeasurement(m Measurement) ([]byte, error) {
	if m.Payload == nil {
		return nil, ErrMissingPayload
	}
	return encodeMeasurement(m.Meta, m.Payload), nil
}

func encodeMeasurement(meta Metadata, p Payload) []byte {
	b := wire.NewBuilder(measurementBufSize)
	b.Message(schema.MeasurementMeta, encodeMetadata(meta))

	body := wire.NewBuilder(measurementBufSize)
	p.encode(body)
	b.Message(p.tag(), body.Bytes())
	return b.Bytes()
}

func encodeMetadata(meta Metadata) []byte {
	b := wire.NewBuilder(18)
	b.Uint32(schema.MetaCellID, meta.CellID)
	b.Uint32(schema.MetaLoggerID, meta.LoggerID)
	b.Uint32(schema.MetaTs, meta.Timestamp)
	return b.Bytes()
}

// EncodeResponse serializes SUCCESS when success is true, ERROR otherwise.
// SUCCESS is the enum default and encodes to zero bytes.
func EncodeResponse(success bool) []byte {
	resp := ResponseError
	if success {
		resp = ResponseSuccess
	}
	b := wire.NewBuilder(2)
	b.Int32(schema.ResponseResp, int32(resp))
	return b.Bytes()
}
