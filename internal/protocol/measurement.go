package protocol

import (
	"github.com/danmuck/spsproto/internal/protocol/schema"
	"github.com/danmuck/spsproto/internal/protocol/wire"
	"google.golang.org/protobuf/encoding/protowire"
)

// PowerMeasurement carries cell voltage and current.
type PowerMeasurement struct {
	Voltage float64
	Current float64
}

func (PowerMeasurement) Type() MeasurementType { return TypePower }
func (PowerMeasurement) tag() protowire.Number { return schema.MeasurementPower }

func (p PowerMeasurement) Values() []FieldValue {
	return []FieldValue{
		floatValue("voltage", p.Voltage),
		floatValue("current", p.Current),
	}
}

func (p PowerMeasurement) encode(b *wire.Builder) {
	b.Double(schema.PowerVoltage, p.Voltage)
	b.Double(schema.PowerCurrent, p.Current)
}

func (p PowerMeasurement) merge(fields []wire.Field) (Payload, error) {
	var err error
	for _, f := range fields {
		switch f.Num {
		case schema.PowerVoltage:
			p.Voltage, err = f.Double()
		case schema.PowerCurrent:
			p.Current, err = f.Double()
		}
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Teros12Measurement carries soil moisture, temperature and conductivity.
type Teros12Measurement struct {
	VwcRaw float64
	VwcAdj float64
	Temp   float64
	Ec     uint32
}

func (Teros12Measurement) Type() MeasurementType { return TypeTeros12 }
func (Teros12Measurement) tag() protowire.Number { return schema.MeasurementTeros12 }

func (m Teros12Measurement) Values() []FieldValue {
	return []FieldValue{
		floatValue("vwcRaw", m.VwcRaw),
		floatValue("vwcAdj", m.VwcAdj),
		floatValue("temp", m.Temp),
		uintValue("ec", m.Ec),
	}
}

func (m Teros12Measurement) encode(b *wire.Builder) {
	b.Double(schema.Teros12VwcRaw, m.VwcRaw)
	b.Double(schema.Teros12VwcAdj, m.VwcAdj)
	b.Double(schema.Teros12Temp, m.Temp)
	b.Uint32(schema.Teros12Ec, m.Ec)
}

func (m Teros12Measurement) merge(fields []wire.Field) (Payload, error) {
	var err error
	for _, f := range fields {
		switch f.Num {
		case schema.Teros12VwcRaw:
			m.VwcRaw, err = f.Double()
		case schema.Teros12VwcAdj:
			m.VwcAdj, err = f.Double()
		case schema.Teros12Temp:
			m.Temp, err = f.Double()
		case schema.Teros12Ec:
			m.Ec, err = f.Uint32()
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Teros21Measurement carries matric potential and temperature.
type Teros21Measurement struct {
	MatricPot float64
	Temp      float64
}

func (Teros21Measurement) Type() MeasurementType { return TypeTeros21 }
func (Teros21Measurement) tag() protowire.Number { return schema.MeasurementTeros21 }

func (m Teros21Measurement) Values() []FieldValue {
	return []FieldValue{
		floatValue("matricPot", m.MatricPot),
		floatValue("temp", m.Temp),
	}
}

func (m Teros21Measurement) encode(b *wire.Builder) {
	b.Double(schema.Teros21MatricPot, m.MatricPot)
	b.Double(schema.Teros21Temp, m.Temp)
}

func (m Teros21Measurement) merge(fields []wire.Field) (Payload, error) {
	var err error
	for _, f := range fields {
		switch f.Num {
		case schema.Teros21MatricPot:
			m.MatricPot, err = f.Double()
		case schema.Teros21Temp:
			m.Temp, err = f.Double()
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Phytos31Measurement carries the leaf wetness sensor voltage.
type Phytos31Measurement struct {
	Voltage     float64
	LeafWetness float64
}

func (Phytos31Measurement) Type() MeasurementType { return TypePhytos31 }
func (Phytos31Measurement) tag() protowire.Number { return schema.MeasurementPhytos31 }

func (m Phytos31Measurement) Values() []FieldValue {
	return []FieldValue{
		floatValue("voltage", m.Voltage),
		floatValue("leafWetness", m.LeafWetness),
	}
}

func (m Phytos31Measurement) encode(b *wire.Builder) {
	b.Double(schema.Phytos31Voltage, m.Voltage)
	b.Double(schema.Phytos31LeafWetness, m.LeafWetness)
}

func (m Phytos31Measurement) merge(fields []wire.Field) (Payload, error) {
	var err error
	for _, f := range fields {
		switch f.Num {
		case schema.Phytos31Voltage:
			m.Voltage, err = f.Double()
		case schema.Phytos31LeafWetness:
			m.LeafWetness, err = f.Double()
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// BME280Measurement holds raw sensor counts. Use the SI helpers to scale.
type BME280Measurement struct {
	Pressure    uint32
	Temperature int32
	Humidity    uint32
}

func (BME280Measurement) Type() MeasurementType { return TypeBME280 }
func (BME280Measurement) tag() protowire.Number { return schema.MeasurementBME280 }

func (m BME280Measurement) Values() []FieldValue {
	return []FieldValue{
		uintValue("pressure", m.Pressure),
		intValue("temperature", m.Temperature),
		uintValue("humidity", m.Humidity),
	}
}

func (m BME280Measurement) encode(b *wire.Builder) {
	b.Uint32(schema.BME280Pressure, m.Pressure)
	b.Int32(schema.BME280Temperature, m.Temperature)
	b.Uint32(schema.BME280Humidity, m.Humidity)
}

func (m BME280Measurement) merge(fields []wire.Field) (Payload, error) {
	var err error
	for _, f := range fields {
		switch f.Num {
		case schema.BME280Pressure:
			m.Pressure, err = f.Uint32()
		case schema.BME280Temperature:
			m.Temperature, err = f.Int32()
		case schema.BME280Humidity:
			m.Humidity, err = f.Uint32()
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// PressureHPa returns pressure in hPa (raw / 10).
func (m BME280Measurement) PressureHPa() float64 { return float64(m.Pressure) / 10 }

// TemperatureC returns temperature in degrees Celsius (raw / 100).
func (m BME280Measurement) TemperatureC() float64 { return float64(m.Temperature) / 100 }

// HumidityPercent returns relative humidity in percent (raw / 1000).
func (m BME280Measurement) HumidityPercent() float64 { return float64(m.Humidity) / 1000 }

// payloads holds the zero value of each Measurement oneof member, keyed by
// the submessage the schema declares for it.
var payloads = map[schema.Message]Payload{
	schema.MsgPowerMeasurement:    PowerMeasurement{},
	schema.MsgTeros12Measurement:  Teros12Measurement{},
	schema.MsgPhytos31Measurement: Phytos31Measurement{},
	schema.MsgBME280Measurement:   BME280Measurement{},
	schema.MsgTeros21Measurement:  Teros21Measurement{},
}
