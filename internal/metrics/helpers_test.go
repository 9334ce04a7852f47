package metrics

import "github.com/prometheus/client_golang/prometheus"

// defaultFamilies returns the set of metric family names in the default
// registry.
func defaultFamilies() (map[string]bool, error) {
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(mfs))
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	return names, nil
}
