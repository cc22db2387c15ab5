package model

// User 用户目录中的已知身份
type User struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Salary      *float64 `json:"salary,omitempty"`
	Contracted  bool     `json:"contracted"`
}

// Financing 融资方案目录条目
type Financing struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	FinancingRate float64 `json:"financingRate"`
	OverheadRate  float64 `json:"overheadRate"`
	ETIValue      float64 `json:"etiValue"`
}
