package entity

import "encoding/json"

// ID is a backend-assigned numeric identity. The backend occasionally emits
// null or non-numeric identities in embedded records; those decode to the
// zero ID instead of failing the enclosing document, so a single bad
// reference cannot blank a whole response.
type ID int64

// Valid reports whether the identity refers to a persisted record.
func (id ID) Valid() bool { return id > 0 }

// Int64 returns the raw numeric value.
func (id ID) Int64() int64 { return int64(id) }

func (id *ID) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		*id = 0
		return nil
	}
	v, err := n.Int64()
	if err != nil {
		*id = 0
		return nil
	}
	*id = ID(v)
	return nil
}
