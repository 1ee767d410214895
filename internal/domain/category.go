package domain

// SourceWebsite — магазин, на который ведёт партнёрская ссылка
type SourceWebsite string

const (
	SourceAmazon   SourceWebsite = "AMAZON"
	SourceFlipkart SourceWebsite = "FLIPKART"
)

var sourceWebsites = []SourceWebsite{SourceAmazon, SourceFlipkart}

func SourceWebsites() []SourceWebsite {
	return append([]SourceWebsite(nil), sourceWebsites...)
}

func (s SourceWebsite) IsValid() bool {
	for _, v := range sourceWebsites {
		if v == s {
			return true
		}
	}
	return false
}

// Category — категория товара. Пока допустимо одно значение.
type Category string

const CategoryElectronics Category = "ELECTRONICS"

func (c Category) IsValid() bool {
	return c == CategoryElectronics
}

// SubCategory — подкатегория товара. Пространство имён плоское:
// принадлежность подкатегории к категории не проверяется.
type SubCategory string

const (
	SubCategorySmartphones           SubCategory = "SMARTPHONES"
	SubCategoryLaptops               SubCategory = "LAPTOPS"
	SubCategoryHeadphonesEarbuds     SubCategory = "HEADPHONES_EARBUDS"
	SubCategorySmartwatches          SubCategory = "SMARTWATCHES"
	SubCategoryBluetoothSpeakers     SubCategory = "BLUETOOTH_SPEAKERS"
	SubCategoryLEDSmartTVs           SubCategory = "LED_SMART_TVS"
	SubCategoryPowerBanks            SubCategory = "POWER_BANKS"
	SubCategoryDSLRMirrorlessCameras SubCategory = "DSLR_MIRRORLESS_CAMERAS"
	SubCategoryMobileChargersCables  SubCategory = "MOBILE_CHARGERS_CABLES"
	SubCategoryHomeTheaterSoundbars  SubCategory = "HOME_THEATER_SOUNDBARS"
)

var subCategories = []SubCategory{
	SubCategorySmartphones,
	SubCategoryLaptops,
	SubCategoryHeadphonesEarbuds,
	SubCategorySmartwatches,
	SubCategoryBluetoothSpeakers,
	SubCategoryLEDSmartTVs,
	SubCategoryPowerBanks,
	SubCategoryDSLRMirrorlessCameras,
	SubCategoryMobileChargersCables,
	SubCategoryHomeTheaterSoundbars,
}

// SubCategories возвращает все допустимые подкатегории в порядке объявления.
func SubCategories() []SubCategory {
	return append([]SubCategory(nil), subCategories...)
}

func (s SubCategory) IsValid() bool {
	for _, v := range subCategories {
		if v == s {
			return true
		}
	}
	return false
}
