package memstore

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"artisanx/internal/domain/repository"
)

type document struct {
	id     string
	data   map[string]interface{}
	exists bool
}

func (d *document) ID() string   { return d.id }
func (d *document) Exists() bool { return d.exists }

func (d *document) DataTo(v interface{}) error {
	if !d.exists {
		return fmt.Errorf("memstore: document %s does not exist", d.id)
	}
	b, err := json.Marshal(d.data)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// normalize turns any write payload into the generic map form the store
// keeps, resolving server timestamps to now.
func normalize(data interface{}, now time.Time) (map[string]interface{}, error) {
	b, err := json.Marshal(resolveSentinels(data, now))
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("memstore: document data must be an object: %w", err)
	}
	return out, nil
}

func normalizeValue(v interface{}, now time.Time) (interface{}, error) {
	b, err := json.Marshal(resolveSentinels(v, now))
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func resolveSentinels(v interface{}, now time.Time) interface{} {
	if repository.IsServerTimestamp(v) {
		return now
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return v
	}
	out := make(map[string]interface{}, len(m))
	for k, val := range m {
		out[k] = resolveSentinels(val, now)
	}
	return out
}

func lookup(data map[string]interface{}, path string) (interface{}, bool) {
	var cur interface{} = data
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func assign(data map[string]interface{}, path string, value interface{}) {
	parts := strings.Split(path, ".")
	m := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			m[part] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

func copyData(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		if nested, ok := v.(map[string]interface{}); ok {
			out[k] = copyData(nested)
			continue
		}
		out[k] = v
	}
	return out
}

func merge(dst, src map[string]interface{}) {
	for k, v := range src {
		if nested, ok := v.(map[string]interface{}); ok {
			if existing, ok := dst[k].(map[string]interface{}); ok {
				merge(existing, nested)
				continue
			}
		}
		dst[k] = v
	}
}

func matches(data map[string]interface{}, filters []repository.Filter, now time.Time) bool {
	for _, f := range filters {
		want, err := normalizeValue(f.Value, now)
		if err != nil {
			return false
		}
		got, ok := lookup(data, f.Field)
		if !ok {
			return false
		}
		switch f.Op {
		case repository.OpEqual:
			if !reflect.DeepEqual(got, want) {
				return false
			}
		case repository.OpArrayContains:
			items, ok := got.([]interface{})
			if !ok {
				return false
			}
			found := false
			for _, item := range items {
				if reflect.DeepEqual(item, want) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compareValues orders numbers numerically, timestamps chronologically and
// everything else as strings.
func compareValues(a, b interface{}) int {
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case string:
		if bv, ok := b.(string); ok {
			ta, errA := time.Parse(time.RFC3339Nano, av)
			tb, errB := time.Parse(time.RFC3339Nano, bv)
			if errA == nil && errB == nil {
				return ta.Compare(tb)
			}
			return strings.Compare(av, bv)
		}
	}
	if a == nil && b != nil {
		return -1
	}
	if a != nil && b == nil {
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
