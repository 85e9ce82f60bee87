package aidbox

import (
	"encoding/json"
	"fmt"
)

// Ответ поиска Aidbox (FHIR Bundle), ресурсы разбираются отдельно
type bundleResponse struct {
	ResourceType string        `json:"resourceType"`
	Total        int           `json:"total"`
	Entry        []bundleEntry `json:"entry"`
}

type bundleEntry struct {
	Resource json.RawMessage `json:"resource"`
}

func decodeEntries[T any](entries []bundleEntry) ([]T, error) {
	result := make([]T, 0, len(entries))
	for i, entry := range entries {
		var resource T
		if err := json.Unmarshal(entry.Resource, &resource); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		result = append(result, resource)
	}
	return result, nil
}
