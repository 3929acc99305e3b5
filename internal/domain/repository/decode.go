package repository

// Identifiable entities take their id from the document id.
type Identifiable interface {
	SetID(id string)
}

// DecodeAll converts documents into entities, skipping documents that fail
// to decode. The number of skipped documents is returned.
func DecodeAll[T any, PT interface {
	*T
	Identifiable
}](docs []Document) ([]T, int) {
	out := make([]T, 0, len(docs))
	skipped := 0
	for _, doc := range docs {
		var v T
		if err := doc.DataTo(&v); err != nil {
			skipped++
			continue
		}
		PT(&v).SetID(doc.ID())
		out = append(out, v)
	}
	return out, skipped
}

// DecodeOne converts a single existing document.
func DecodeOne[T any, PT interface {
	*T
	Identifiable
}](doc Document) (*T, error) {
	var v T
	if err := doc.DataTo(&v); err != nil {
		return nil, err
	}
	PT(&v).SetID(doc.ID())
	return &v, nil
}
