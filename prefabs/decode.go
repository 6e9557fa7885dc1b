package prefabs

import "gopkg.in/yaml.v3"

// Decode converts a loosely typed YAML value (an action or condition
// argument) into T by round-tripping it through YAML.
func Decode[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}
