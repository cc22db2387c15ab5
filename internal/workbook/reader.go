package workbook

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/xuri/excelize/v2"
)

// UnreadableFileError 文件无法解析为电子表格容器
type UnreadableFileError struct {
	Name string
	Err  error
}

func (e *UnreadableFileError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("unreadable workbook: %v", e.Err)
	}
	return fmt.Sprintf("unreadable workbook %q: %v", e.Name, e.Err)
}

func (e *UnreadableFileError) Unwrap() error {
	return e.Err
}

// Workbook 工作表名 -> 单元格网格，只读
type Workbook map[string]Grid

// Sheet 获取工作表，缺失时返回空网格
func (w Workbook) Sheet(name string) (Grid, bool) {
	g, ok := w[name]
	return g, ok
}

// SheetNames 工作表名列表（无序）
func (w Workbook) SheetNames() []string {
	names := make([]string, 0, len(w))
	for name := range w {
		names = append(names, name)
	}
	return names
}

// SheetInfo 工作表尺寸
type SheetInfo struct {
	Name    string `json:"name"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

// Describe 各工作表尺寸，按名称排序
func (w Workbook) Describe() []SheetInfo {
	names := w.SheetNames()
	sort.Strings(names)
	out := make([]SheetInfo, 0, len(names))
	for _, name := range names {
		g := w[name]
		out = append(out, SheetInfo{Name: name, Rows: g.Rows(), Columns: g.Columns()})
	}
	return out
}

// Read 从二进制流加载工作簿（xlsx / xlsm）
func Read(r io.Reader, name string) (Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &UnreadableFileError{Name: name, Err: err}
	}
	if len(data) == 0 {
		return nil, &UnreadableFileError{Name: name, Err: errors.New("empty file")}
	}

	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &UnreadableFileError{Name: name, Err: err}
	}
	defer file.Close()

	return FromFile(file)
}

// Open 从路径加载工作簿
func Open(path string) (Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &UnreadableFileError{Name: path, Err: err}
	}
	defer f.Close()
	return Read(f, path)
}

// FromFile 将已打开的 excelize 文件转换为网格
// 使用原始单元格值，日期列保持为序列号
func FromFile(file *excelize.File) (Workbook, error) {
	wb := make(Workbook)
	for _, sheet := range file.GetSheetList() {
		rows, err := file.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, &UnreadableFileError{Name: sheet, Err: fmt.Errorf("read sheet: %w", err)}
		}
		grid := make(Grid, len(rows))
		for i, row := range rows {
			cells := make([]Cell, len(row))
			for j, raw := range row {
				cells[j] = ParseCell(raw)
			}
			grid[i] = cells
		}
		wb[sheet] = grid
	}
	return wb, nil
}
