package parser

import "starsoftflow/internal/workbook"

// ExtractProjectMetadata 从 HOME 表读取项目名称
func ExtractProjectMetadata(g workbook.Grid) PartialState {
	return PartialState{
		ProjectName: g.At(homeProjectName.row, homeProjectName.col).String(),
	}
}
