package workbook

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CellKind 单元格值类型
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
)

// Cell 无类型单元格：字符串 | 数字 | 空
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// ParseCell 将原始文本转换为单元格
func ParseCell(raw string) Cell {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Cell{}
	}
	if !decimalText(text) {
		return Cell{Kind: CellString, Text: text}
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Cell{Kind: CellNumber, Text: text, Number: f}
	}
	return Cell{Kind: CellString, Text: text}
}

// decimalText 仅接受十进制写法；ParseFloat 还认十六进制与下划线分隔
func decimalText(text string) bool {
	if strings.ContainsRune(text, '_') {
		return false
	}
	digits := strings.TrimLeft(text, "+-")
	return !strings.HasPrefix(digits, "0x") && !strings.HasPrefix(digits, "0X")
}

// Num 数字单元格
func Num(v float64) Cell {
	return Cell{Kind: CellNumber, Text: strconv.FormatFloat(v, 'f', -1, 64), Number: v}
}

// Str 字符串单元格
func Str(s string) Cell {
	return ParseCell(s)
}

// IsEmpty 是否为空
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// Float 数字值
func (c Cell) Float() (float64, bool) {
	if c.Kind != CellNumber {
		return 0, false
	}
	return c.Number, true
}

// String 文本值（数字返回原始文本）
func (c Cell) String() string {
	return c.Text
}

// Grid 行 x 列网格，行长度可不一致
type Grid [][]Cell

// At 越界时返回空单元格
func (g Grid) At(row, col int) Cell {
	if row < 0 || row >= len(g) {
		return Cell{}
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return Cell{}
	}
	return r[col]
}

// Rows 行数
func (g Grid) Rows() int {
	return len(g)
}

// Columns 最长一行的列数
func (g Grid) Columns() int {
	n := 0
	for _, r := range g {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}

// NewGrid 由任意值构造网格：string / 数值 / nil
func NewGrid(rows [][]any) Grid {
	g := make(Grid, len(rows))
	for i, row := range rows {
		cells := make([]Cell, len(row))
		for j, v := range row {
			cells[j] = cellOf(v)
		}
		g[i] = cells
	}
	return g
}

func cellOf(v any) Cell {
	switch x := v.(type) {
	case nil:
		return Cell{}
	case Cell:
		return x
	case string:
		return Str(x)
	case float64:
		return Num(x)
	case float32:
		return Num(float64(x))
	case int:
		return Num(float64(x))
	case int64:
		return Num(float64(x))
	default:
		return Str(fmt.Sprint(x))
	}
}
