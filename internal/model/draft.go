package model

// DraftWorkpackage 草稿中的工作包及其下属分配与材料
type DraftWorkpackage struct {
	WorkpackageAction
	Allocations []AllocationAction `json:"allocations"`
	Materials   []MaterialAction   `json:"materials"`
}

// ProjectDraft 项目草稿快照
type ProjectDraft struct {
	ID           string             `json:"id,omitempty"`
	Project      ProjectPatch       `json:"project"`
	Workpackages []DraftWorkpackage `json:"workpackages"`
}
