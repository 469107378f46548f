package main

import (
	"encoding/json"

	"github.com/go-sass/sass/serializer"
)

func marshalSourceMap(m *serializer.SourceMap) ([]byte, error) {
	return json.Marshal(m)
}
