package validator

import (
	"strings"

	"agriedge/internal/model"
)

// DefaultInterests is used when no catalogue is configured.
var DefaultInterests = []string{"AquaEdge", "FertiEdge", "YieldEdge", "TrialEdge"}

// Catalogue is the set of interest tags offered by the form.
type Catalogue struct {
	labels []string
	index  map[string]string
}

func NewCatalogue(labels []string) Catalogue {
	if len(labels) == 0 {
		labels = DefaultInterests
	}
	c := Catalogue{index: make(map[string]string, len(labels))}
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" || strings.EqualFold(l, model.OtherInterest) {
			continue
		}
		if _, dup := c.index[strings.ToLower(l)]; dup {
			continue
		}
		c.labels = append(c.labels, l)
		c.index[strings.ToLower(l)] = l
	}
	return c
}

// Labels returns the configured tags, without the "other" sentinel.
func (c Catalogue) Labels() []string {
	return append([]string(nil), c.labels...)
}

// Canonical maps a submitted tag to its stored label. The match is case-insensitive.
func (c Catalogue) Canonical(tag string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(tag))
	if key == model.OtherInterest {
		return model.OtherInterest, true
	}
	label, ok := c.index[key]
	return label, ok
}
