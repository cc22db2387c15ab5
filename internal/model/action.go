package model

import (
	"fmt"
	"math"
	"time"
)

// ActionKind 项目草稿动作类型
type ActionKind string

const (
	ActionReset          ActionKind = "reset"
	ActionUpdateProject  ActionKind = "update-project"
	ActionAddWorkpackage ActionKind = "add-workpackage"
	ActionAddAllocation  ActionKind = "add-allocation"
	ActionAddMaterial    ActionKind = "add-material"
)

// Occupancy 定点小数占用率，单位为万分之一（5000 = 0.5000）
type Occupancy int64

const occupancyScale = 10000

// OccupancyFromPercentage 百分点转定点小数
func OccupancyFromPercentage(p float64) Occupancy {
	return Occupancy(math.Round(p * occupancyScale / 100))
}

// Float64 转浮点
func (o Occupancy) Float64() float64 {
	return float64(o) / occupancyScale
}

// String 固定 4 位小数
func (o Occupancy) String() string {
	sign := ""
	v := int64(o)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%04d", sign, v/occupancyScale, v%occupancyScale)
}

// MarshalText 以字符串形式序列化，避免浮点误差
func (o Occupancy) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// ProjectPatch update-project 动作内容
type ProjectPatch struct {
	Name          string     `json:"name"`
	Start         *time.Time `json:"start,omitempty"`
	End           *time.Time `json:"end,omitempty"`
	FinancingID   string     `json:"financingId,omitempty"`
	FinancingRate *float64   `json:"financingRate,omitempty"`
	OverheadRate  *float64   `json:"overheadRate,omitempty"`
	ETIValue      *float64   `json:"etiValue,omitempty"`
}

// WorkpackageAction add-workpackage 动作内容
type WorkpackageAction struct {
	Key   string     `json:"key"`
	Name  string     `json:"name"`
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// AllocationAction add-allocation 动作内容
type AllocationAction struct {
	WorkpackageKey string    `json:"workpackageKey"`
	ResourceID     string    `json:"resourceId"`
	Month          int       `json:"month"`
	Year           int       `json:"year"`
	Occupancy      Occupancy `json:"occupancy"`
}

// MaterialAction add-material 动作内容
type MaterialAction struct {
	WorkpackageKey string   `json:"workpackageKey"`
	Name           string   `json:"name"`
	UnitPrice      float64  `json:"unitPrice"`
	Quantity       float64  `json:"quantity"`
	Year           int      `json:"year"`
	Category       Category `json:"category"`
}

// Action 有序动作序列中的一项，只有与 Kind 对应的字段非空
type Action struct {
	Kind        ActionKind         `json:"kind"`
	Project     *ProjectPatch      `json:"project,omitempty"`
	Workpackage *WorkpackageAction `json:"workpackage,omitempty"`
	Allocation  *AllocationAction  `json:"allocation,omitempty"`
	Material    *MaterialAction    `json:"material,omitempty"`
}
