package protocol

// Flatten merges metadata and payload fields into one mapping keyed by JSON
// field name, plus "type" naming the payload variant.
func (m Measurement) Flatten() map[string]any {
	out := map[string]any{
		"ts":       m.Meta.Timestamp,
		"cellId":   m.Meta.CellID,
		"loggerId": m.Meta.LoggerID,
	}
	if m.Payload == nil {
		return out
	}
	out["type"] = string(m.Payload.Type())
	for _, v := range m.Payload.Values() {
		out[v.Name] = v.Value
	}
	return out
}

// Annotated is the projection that keeps payload values apart from metadata
// and tags every payload field with its runtime type.
type Annotated struct {
	Type     MeasurementType      `json:"type"`
	Ts       uint32               `json:"ts"`
	CellID   uint32               `json:"cellId"`
	LoggerID uint32               `json:"loggerId"`
	Data     map[string]any       `json:"data"`
	DataType map[string]ValueKind `json:"data_type"`
}

func (m Measurement) Annotated() Annotated {
	a := Annotated{
		Ts:       m.Meta.Timestamp,
		CellID:   m.Meta.CellID,
		LoggerID: m.Meta.LoggerID,
		Data:     make(map[string]any),
		DataType: make(map[string]ValueKind),
	}
	if m.Payload == nil {
		return a
	}
	a.Type = m.Payload.Type()
	for _, v := range m.Payload.Values() {
		a.Data[v.Name] = v.Value
		a.DataType[v.Name] = v.Kind
	}
	return a
}

// Map renders a as the untyped nested mapping used by generic consumers.
func (a Annotated) Map() map[string]any {
	dataType := make(map[string]any, len(a.DataType))
	for k, v := range a.DataType {
		dataType[k] = string(v)
	}
	return map[string]any{
		"type":      string(a.Type),
		"ts":        a.Ts,
		"cellId":    a.CellID,
		"loggerId":  a.LoggerID,
		"data":      a.Data,
		"data_type": dataType,
	}
}
