package parser

import "regexp"

// 模板工作表名称
const (
	SheetHome      = "HOME"
	SheetBudget    = "BUDGET"
	SheetResources = "RH_Budget_SUBM"
	SheetMaterials = "Outros_Budget"
)

type cellRef struct {
	row int
	col int
}

var (
	homeProjectName = cellRef{row: 3, col: 2}

	budgetFinancingName = cellRef{row: 4, col: 2}
	budgetFinancingRate = cellRef{row: 5, col: 2}
	budgetOverheadRate  = cellRef{row: 6, col: 2}
	budgetETIValue      = cellRef{row: 7, col: 2}
)

// RH_Budget_SUBM 布局
const (
	rhLabelRows     = 3
	rhYearRow       = 3
	rhMonthRow      = 4
	rhFirstDataRow  = 7
	rhCodeCol       = 1
	rhNameCol       = 2
	rhResourceCol   = 3
	rhSalaryCol     = 5
	rhFirstMonthCol = 6
	rhLastMonthCol  = 41

	etiLabelPrefix = "valor eti"
)

// Outros_Budget 布局
const (
	matFirstDataRow = 6
	matNameCol      = 0
	matActivityCol  = 1
	matYearCol      = 3
	matCategoryCol  = 4
	matPriceCol     = 5
	matQuantityCol  = 6
)

const (
	implicitWorkpackageCode   = "A1"
	implicitWorkpackagePrefix = "A1 - "

	// 占用率有效区间 (0, 2)
	maxOccupancyFraction = 2.0
)

var workpackageCodePattern = regexp.MustCompile(`^A\d+$`)
