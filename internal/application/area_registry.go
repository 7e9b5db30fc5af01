package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"wildfire-monitoring-system/internal/domain"
)

// AreaRegistry holds the immutable monitored-area configuration
type AreaRegistry struct {
	areas map[string]domain.MonitoredArea
	keys  []string
}

// NewAreaRegistry validates areas and indexes them by lowercase key
func NewAreaRegistry(areas []domain.MonitoredArea) (*AreaRegistry, error) {
	if len(areas) == 0 {
		return nil, errors.New("at least one monitored area is required")
	}

	r := &AreaRegistry{
		areas: make(map[string]domain.MonitoredArea, len(areas)),
	}

	for _, area := range areas {
		key := normalizeKey(area.Key)
		if key == "" {
			return nil, fmt.Errorf("area %q has an empty key", area.Name)
		}
		if _, exists := r.areas[key]; exists {
			return nil, fmt.Errorf("duplicate area key %q", key)
		}
		if area.RiskThreshold <= 0 || area.RiskThreshold >= 1 {
			return nil, fmt.Errorf("area %q: risk threshold must be in (0,1), got %v", key, area.RiskThreshold)
		}
		if err := area.Center.Validate(); err != nil {
			return nil, fmt.Errorf("area %q: %w", key, err)
		}
		if area.Name == "" {
			area.Name = key
		}

		area.Key = key
		r.areas[key] = area
		r.keys = append(r.keys, key)
	}

	sort.Strings(r.keys)

	return r, nil
}

// Area looks an area up by key, case-insensitively
func (r *AreaRegistry) Area(key string) (domain.MonitoredArea, error) {
	area, ok := r.areas[normalizeKey(key)]
	if !ok {
		return domain.MonitoredArea{}, fmt.Errorf("%w: %q", domain.ErrAreaNotFound, key)
	}
	return area, nil
}

// Areas returns all areas sorted by key
func (r *AreaRegistry) Areas() []domain.MonitoredArea {
	out := make([]domain.MonitoredArea, 0, len(r.keys))
	for _, key := range r.keys {
		out = append(out, r.areas[key])
	}
	return out
}

// Keys returns the sorted area keys
func (r *AreaRegistry) Keys() []string {
	return append([]string(nil), r.keys...)
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
