package parser

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"starsoftflow/internal/model"
)

const (
	// excelEpochOffsetDays 1970-01-01 对应的 Excel 序列号（含 1900 闰年缺陷）
	excelEpochOffsetDays = 25569
	millisPerDay         = 86400000
)

// ExcelSerialToMonthYear 将 Excel 日期序列号转换为 (月, 年)，使用 UTC 日历
func ExcelSerialToMonthYear(serial float64) model.MonthYear {
	ms := int64(math.Round((serial - excelEpochOffsetDays) * millisPerDay))
	t := time.UnixMilli(ms).UTC()
	return model.MonthYear{Month: int(t.Month()), Year: t.Year()}
}

// MonthYearToExcelSerial 当月第一天的 Excel 序列号
func MonthYearToExcelSerial(m model.MonthYear) float64 {
	return float64(m.FirstDay().Unix()/86400) + excelEpochOffsetDays
}

var categoryLabels = map[string]model.Category{
	"Materiais":                  model.CategoryMaterials,
	"Serviços terceiros":         model.CategoryThirdPartyServices,
	"Outros serviços":            model.CategoryOtherServices,
	"Deslocações e estadias":     model.CategoryTravel,
	"Outros custos":              model.CategoryOtherCosts,
	"Custos estruturais":         model.CategoryStructural,
	"Instrumentos e equipamento": model.CategoryEquipment,
	"Subcontratos":               model.CategorySubcontracts,
}

// MapCategoryLabel 表格中的类别文本 -> 类别枚举，未识别时归为材料
func MapCategoryLabel(label string) model.Category {
	if c, ok := categoryLabels[label]; ok {
		return c
	}
	return model.CategoryMaterials
}

var monthAbbreviations = map[string]int{
	"jan": 1,
	"fev": 2, "feb": 2,
	"mar": 3,
	"abr": 4, "apr": 4,
	"mai": 5, "may": 5,
	"jun": 6,
	"jul": 7,
	"ago": 8, "aug": 8,
	"set": 9, "sep": 9,
	"out": 10, "oct": 10,
	"nov": 11,
	"dez": 12, "dec": 12,
}

// monthFromLabel 月份缩写（葡语/英语）-> 1..12
func monthFromLabel(label string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(label))
	if utf8.RuneCountInString(s) < 3 {
		return 0, false
	}
	runes := []rune(s)
	m, ok := monthAbbreviations[string(runes[:3])]
	return m, ok
}

// yearFromNumber 年份单元格既可能是纯年份，也可能是日期序列号
func yearFromNumber(f float64) (int, bool) {
	switch {
	case f >= 1900 && f <= 9999 && f == math.Trunc(f):
		return int(f), true
	case f > 9999:
		return ExcelSerialToMonthYear(f).Year, true
	default:
		return 0, false
	}
}

// roundPercentage 保留 4 位小数，消除 v*100 的浮点噪声
func roundPercentage(p float64) float64 {
	return math.Round(p*1e4) / 1e4
}
