package model

// Category 材料费用类别
type Category string

const (
	CategoryMaterials          Category = "MATERIAIS"
	CategoryThirdPartyServices Category = "SERVICOS_TERCEIROS"
	CategoryOtherServices      Category = "OUTROS_SERVICOS"
	CategoryTravel             Category = "DESLOCACAO_ESTADIAS"
	CategoryOtherCosts         Category = "OUTROS_CUSTOS"
	CategoryStructural         Category = "CUSTOS_ESTRUTURA"
	CategoryEquipment          Category = "INSTRUMENTOS_E_EQUIPAMENTOS"
	CategorySubcontracts       Category = "SUBCONTRATOS"
)

// Categories 全部类别（固定顺序）
func Categories() []Category {
	return []Category{
		CategoryMaterials,
		CategoryThirdPartyServices,
		CategoryOtherServices,
		CategoryTravel,
		CategoryOtherCosts,
		CategoryStructural,
		CategoryEquipment,
		CategorySubcontracts,
	}
}

// Valid 是否属于封闭集合
func (c Category) Valid() bool {
	for _, v := range Categories() {
		if v == c {
			return true
		}
	}
	return false
}
