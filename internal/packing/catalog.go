package packing

// catalogEntry is a per-unit item template.
type catalogEntry struct {
	name     string
	weightG  int
	volumeML int
	reason   string
	category Category
	priority Priority
}

// scaling rules for base clothing
type quantityRule int

const (
	scaleDaily quantityRule = iota
	scaleShirts
	scaleStep
)

type clothingEntry struct {
	catalogEntry
	rule quantityRule
}

var baseClothing = []clothingEntry{
	{catalogEntry{"underwear", 30, 10, "essential daily item", CategoryClothing, PriorityEssential}, scaleDaily},
	{catalogEntry{"socks", 25, 15, "essential daily item", CategoryClothing, PriorityEssential}, scaleDaily},
	{catalogEntry{"t-shirt", 150, 200, "basic clothing", CategoryClothing, PriorityEssential}, scaleShirts},
	{catalogEntry{"pants/jeans", 400, 800, "basic clothing", CategoryClothing, PriorityEssential}, scaleStep},
	{catalogEntry{"sweater/hoodie", 300, 600, "layering piece", CategoryClothing, PriorityImportant}, scaleStep},
	{catalogEntry{"sleepwear", 100, 150, "comfort item", CategoryClothing, PriorityImportant}, scaleStep},
}

var baseEssentials = []catalogEntry{
	{"passport", 50, 20, "required travel document", CategoryDocuments, PriorityEssential},
	{"phone", 150, 100, "essential communication", CategoryElectronics, PriorityEssential},
	{"phone charger", 100, 80, "essential for phone", CategoryElectronics, PriorityEssential},
	{"toothbrush", 20, 30, "basic hygiene", CategoryToiletries, PriorityEssential},
	{"toothpaste", 100, 75, "basic hygiene", CategoryToiletries, PriorityEssential},
	{"medications", 50, 50, "health maintenance", CategoryHealth, PriorityEssential},
}

var activityItems = map[Activity][]catalogEntry{
	ActivityBusiness: {
		{"business suit", 800, 1500, "professional appearance", CategoryClothing, PriorityImportant},
		{"dress shoes", 600, 800, "professional footwear", CategoryClothing, PriorityImportant},
		{"laptop", 1500, 2000, "work requirements", CategoryElectronics, PriorityEssential},
		{"business cards", 20, 10, "networking", CategoryAccessories, PriorityImportant},
	},
	ActivityHiking: {
		{"hiking boots", 800, 1200, "foot protection and grip", CategoryClothing, PriorityEssential},
		{"hiking backpack", 1200, 2500, "gear transport", CategoryAccessories, PriorityEssential},
		{"water bottle", 200, 500, "hydration during hikes", CategoryAccessories, PriorityEssential},
		{"first aid kit", 300, 400, "emergency medical care", CategoryHealth, PriorityImportant},
	},
	ActivityBeach: {
		{"swimwear", 100, 150, "beach activities", CategoryClothing, PriorityEssential},
		{"beach towel", 400, 800, "drying and comfort", CategoryAccessories, PriorityImportant},
		{"flip flops", 200, 400, "beach footwear", CategoryClothing, PriorityImportant},
		{"beach bag", 200, 1000, "carrying beach items", CategoryAccessories, PriorityNiceToHave},
	},
	ActivityFormal: {
		{"formal dress/suit", 600, 1200, "formal events", CategoryClothing, PriorityEssential},
		{"dress shoes", 600, 800, "formal footwear", CategoryClothing, PriorityEssential},
		{"formal accessories", 100, 100, "completing formal look", CategoryAccessories, PriorityImportant},
	},
}

var nightItems = []catalogEntry{
	{"flashlight/headlamp", 100, 80, "visibility in dark", CategoryAccessories, PriorityImportant},
	{"evening wear", 200, 400, "appropriate night attire", CategoryClothing, PriorityNiceToHave},
}

var hotWeatherItems = []catalogEntry{
	{"sunglasses", 50, 100, "UV protection in hot weather", CategoryWeatherGear, PriorityImportant},
	{"sunscreen", 100, 75, "essential UV protection", CategoryWeatherGear, PriorityEssential},
	{"hat/cap", 80, 200, "sun protection", CategoryWeatherGear, PriorityImportant},
	{"shorts", 120, 150, "comfortable in heat", CategoryWeatherGear, PriorityImportant},
}

var coldWeatherItems = []catalogEntry{
	{"warm jacket", 600, 1200, "essential warmth in cold", CategoryWeatherGear, PriorityEssential},
	{"gloves", 50, 100, "hand protection from cold", CategoryWeatherGear, PriorityImportant},
	{"warm hat/beanie", 40, 80, "head warmth", CategoryWeatherGear, PriorityImportant},
	{"scarf", 100, 150, "neck warmth", CategoryWeatherGear, PriorityImportant},
}

var rainItems = []catalogEntry{
	{"rain jacket/poncho", 200, 300, "protection from rain", CategoryWeatherGear, PriorityImportant},
	{"umbrella", 300, 400, "rain protection", CategoryWeatherGear, PriorityImportant},
}

func (e catalogEntry) item(quantity int, reason, sourceRule string) Item {
	weight := e.weightG * quantity
	return Item{
		Name:              e.name,
		Category:          e.category,
		Quantity:          quantity,
		EstimatedWeightG:  weight,
		EstimatedVolumeML: e.volumeML * quantity,
		SafetyStatus:      SafetySafe,
		Priority:          e.priority,
		WeightClass:       WeightClassOf(weight),
		Reason:            reason,
		SourceRule:        sourceRule,
	}
}
