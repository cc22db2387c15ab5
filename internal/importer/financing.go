package importer

import (
	"strings"

	"starsoftflow/internal/model"
)

// MatchFinancing 忽略大小写与首尾空白匹配融资方案
func MatchFinancing(name string, catalog []model.Financing) (model.Financing, bool) {
	key := normalizeFinancingName(name)
	if key == "" {
		return model.Financing{}, false
	}
	for _, f := range catalog {
		if normalizeFinancingName(f.Name) == key {
			return f, true
		}
	}
	return model.Financing{}, false
}

func normalizeFinancingName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
