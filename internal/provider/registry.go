package provider

// Provider describes one third-party embed origin: its user-facing display
// name, the internal key the URL builders dispatch on, and the media types it
// can address. The table is immutable and process-wide.
type Provider struct {
	Name     string             `json:"name"`
	Key      string             `json:"key"`
	Supports map[MediaType]bool `json:"supports"`
}

// registry lists every known embed provider in presentation order. Order
// matters: the selector falls back to the first capable entry when neither
// the remembered nor the configured default provider supports a media type.
var registry = []Provider{
	{Name: "NovaReel", Key: "spenEmbed", Supports: map[MediaType]bool{TypeMovie: true, TypeTV: true, TypeAnime: true}},
	{Name: "FluxLine", Key: "vidplus", Supports: map[MediaType]bool{TypeMovie: true, TypeTV: true, TypeAnime: true}},
	{Name: "PulseView", Key: "vidfast", Supports: map[MediaType]bool{TypeMovie: true, TypeTV: true, TypeAnime: false}},
	{Name: "King", Key: "vidking", Supports: map[MediaType]bool{TypeMovie: true, TypeTV: true, TypeAnime: false}},
	{Name: "Ez", Key: "videasy", Supports: map[MediaType]bool{TypeMovie: true, TypeTV: true, TypeAnime: true}},
	{Name: "Seenima", Key: "vidora", Supports: map[MediaType]bool{TypeMovie: true, TypeTV: true, TypeAnime: false}},
	{Name: "Saturn", Key: "VidSrc", Supports: map[MediaType]bool{TypeMovie: true, TypeTV: true, TypeAnime: true}},
	{Name: "Mars", Key: "vidlink", Supports: map[MediaType]bool{TypeMovie: true, TypeTV: true, TypeAnime: true}},
}

// Registry returns a copy of the provider table in registry order.
func Registry() []Provider {
	out := make([]Provider, len(registry))
	copy(out, registry)
	return out
}

// ByName looks up a provider by display name.
func ByName(name string) (Provider, bool) {
	for _, p := range registry {
		if p.Name == name {
			return p, true
		}
	}
	return Provider{}, false
}

// ByKey looks up a provider by internal key.
func ByKey(key string) (Provider, bool) {
	for _, p := range registry {
		if p.Key == key {
			return p, true
		}
	}
	return Provider{}, false
}

// Supports reports whether the provider with the given key can address the
// given media type. Unknown keys support nothing.
func Supports(key string, t MediaType) bool {
	p, ok := ByKey(key)
	return ok && p.Supports[t]
}

// Capable returns the providers that support the given media type, in
// registry order.
func Capable(t MediaType) []Provider {
	var out []Provider
	for _, p := range registry {
		if p.Supports[t] {
			out = append(out, p)
		}
	}
	return out
}
