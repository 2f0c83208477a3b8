package option

// Payload is a loosely typed key/value option payload, as handed over by a
// host. A nil Payload is a valid, empty payload.
type Payload map[string]interface{}

// FromAny interprets an arbitrary host value as a payload. Anything other
// than a map with string keys counts as an absent payload.
func FromAny(x interface{}) Payload {
	switch p := x.(type) {
	case Payload:
		return p
	case map[string]interface{}:
		return Payload(p)
	case map[string]bool:
		q := make(Payload, len(p))
		for k, v := range p {
			q[k] = v
		}
		return q
	}
	if x != nil {
		tracer().Debugf("option payload of type %T treated as absent", x)
	}
	return nil
}

// Lookup returns the value stored for key as an optional reference.
// Missing keys and explicit nulls are None.
func (p Payload) Lookup(key string) RefT {
	if p == nil {
		return Nothing()
	}
	v, ok := p[key]
	if !ok || v == nil {
		return Nothing()
	}
	return Something(v)
}

// Bool resolves key to a boolean. If key is missing or its value is not
// a boolean, dflt is returned. Bool never fails.
func (p Payload) Bool(key string, dflt bool) bool {
	v, err := p.Lookup(key).Match(Maybe{
		None:  dflt,
		Some:  AsBool,
		Error: dflt,
	})
	if b, ok := v.(bool); ok && err == nil {
		return b
	}
	return dflt
}

// Strings resolves key to a list of strings. Non-string list elements are
// skipped. A missing key or a non-list value yields nil.
func (p Payload) Strings(key string) []string {
	v, err := p.Lookup(key).Match(Maybe{
		None:  nil,
		Some:  AsStrings,
		Error: nil,
	})
	if s, ok := v.([]string); ok && err == nil {
		return s
	}
	return nil
}
