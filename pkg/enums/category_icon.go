package enums

import "fmt"

// CategoryIcon names the Material Design icon shown on a category tile.
type CategoryIcon string

const (
	CategoryIconDefault       CategoryIcon = "MdCategory"
	CategoryIconLocalBar      CategoryIcon = "MdLocalBar"
	CategoryIconLocalDrink    CategoryIcon = "MdLocalDrink"
	CategoryIconLocalCafe     CategoryIcon = "MdLocalCafe"
	CategoryIconWineBar       CategoryIcon = "MdWineBar"
	CategoryIconSportsBar     CategoryIcon = "MdSportsBar"
	CategoryIconLiquor        CategoryIcon = "MdLiquor"
	CategoryIconLocalPizza    CategoryIcon = "MdLocalPizza"
	CategoryIconFastfood      CategoryIcon = "MdFastfood"
	CategoryIconLunchDining   CategoryIcon = "MdLunchDining"
	CategoryIconRestaurant    CategoryIcon = "MdRestaurant"
	CategoryIconBakeryDining  CategoryIcon = "MdBakeryDining"
	CategoryIconCake          CategoryIcon = "MdCake"
	CategoryIconIcecream      CategoryIcon = "MdIcecream"
	CategoryIconKitchen       CategoryIcon = "MdKitchen"
	CategoryIconInventory     CategoryIcon = "MdInventory"
	CategoryIconShoppingCart  CategoryIcon = "MdShoppingCart"
	CategoryIconLocalOffer    CategoryIcon = "MdLocalOffer"
	CategoryIconRecycling     CategoryIcon = "MdRecycling"
	CategoryIconCelebration   CategoryIcon = "MdCelebration"
	CategoryIconAcUnit        CategoryIcon = "MdAcUnit"
	CategoryIconLocalFireDept CategoryIcon = "MdLocalFireDepartment"
)

var validCategoryIcons = []CategoryIcon{
	CategoryIconDefault,
	CategoryIconLocalBar,
	CategoryIconLocalDrink,
	CategoryIconLocalCafe,
	CategoryIconWineBar,
	CategoryIconSportsBar,
	CategoryIconLiquor,
	CategoryIconLocalPizza,
	CategoryIconFastfood,
	CategoryIconLunchDining,
	CategoryIconRestaurant,
	CategoryIconBakeryDining,
	CategoryIconCake,
	CategoryIconIcecream,
	CategoryIconKitchen,
	CategoryIconInventory,
	CategoryIconShoppingCart,
	CategoryIconLocalOffer,
	CategoryIconRecycling,
	CategoryIconCelebration,
	CategoryIconAcUnit,
	CategoryIconLocalFireDept,
}

// String implements fmt.Stringer.
func (c CategoryIcon) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CategoryIcon.
func (c CategoryIcon) IsValid() bool {
	for _, candidate := range validCategoryIcons {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCategoryIcon converts raw input into a CategoryIcon.
func ParseCategoryIcon(value string) (CategoryIcon, error) {
	for _, candidate := range validCategoryIcons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid category icon %q", value)
}

// ResolveCategoryIcon maps stored icon names to a known icon, falling back to
// CategoryIconDefault.
func ResolveCategoryIcon(value string) CategoryIcon {
	icon, err := ParseCategoryIcon(value)
	if err != nil {
		return CategoryIconDefault
	}
	return icon
}

// CategoryIcons lists every supported icon in display order.
func CategoryIcons() []CategoryIcon {
	out := make([]CategoryIcon, len(validCategoryIcons))
	copy(out, validCategoryIcons)
	return out
}
