package importer

import (
	"regexp"
	"strings"

	"starsoftflow/internal/model"
)

const (
	defaultWorkpackageCode = "A1"
	defaultWorkpackageName = "A1 - Geral"
)

var activityCodePattern = regexp.MustCompile(`^A\d+`)

// AssignMaterials 将材料挂到其引用的工作包上
// 顺序：完整名称精确匹配 -> 活动名称前缀编码匹配 -> 第一个工作包。
// 返回新的工作包列表以及走了兜底分支的材料。
func AssignMaterials(wps []model.WorkpackageDraft, materials []model.MaterialDraft) ([]model.WorkpackageDraft, []model.MaterialDraft) {
	out := make([]model.WorkpackageDraft, len(wps))
	for i, wp := range wps {
		out[i] = wp.Clone()
	}
	if len(materials) == 0 {
		return out, nil
	}
	if len(out) == 0 {
		out = append(out, model.WorkpackageDraft{Code: defaultWorkpackageCode, Name: defaultWorkpackageName})
	}

	byName := make(map[string]int, len(out))
	byCode := make(map[string]int, len(out))
	for i, wp := range out {
		if _, ok := byName[wp.Name]; !ok {
			byName[wp.Name] = i
		}
		if _, ok := byCode[wp.Code]; !ok && wp.Code != "" {
			byCode[wp.Code] = i
		}
		if code, _, found := strings.Cut(wp.Name, " - "); found {
			if _, ok := byCode[code]; !ok {
				byCode[code] = i
			}
		}
	}

	var fallbacks []model.MaterialDraft
	for _, m := range materials {
		idx, ok := byName[m.WorkpackageRef]
		if !ok {
			if code := activityCodePattern.FindString(m.WorkpackageRef); code != "" {
				idx, ok = byCode[code]
			}
		}
		if !ok {
			idx = 0
			fallbacks = append(fallbacks, m)
		}
		out[idx].Materials = append(out[idx].Materials, m)
	}

	return out, fallbacks
}
