package catalog

// sampleAssets is the demo inventory served until a real asset system is
// integrated.
var sampleAssets = []Asset{
	{
		ID:              "CM001",
		Name:            "Coffee Machine - Store 001",
		Category:        CategoryCoffeeMachine,
		Model:           "BM-3000",
		Manufacturer:    "BrewMaster",
		Location:        "Break Room - Floor 1",
		Status:          StatusFaulty,
		LastMaintenance: "2026-02-10",
		SerialNumber:    "CM001-2023",
	},
	{
		ID:              "CM002",
		Name:            "Espresso Machine - Counter A",
		Category:        CategoryCoffeeMachine,
		Model:           "Magnifica S",
		Manufacturer:    "DeLonghi",
		Location:        "Store Front - Counter A",
		Status:          StatusFaulty,
		LastMaintenance: "2026-01-25",
		SerialNumber:    "DL-MAG-2024-001",
	},
	{
		ID:              "CM003",
		Name:            "Commercial Coffee Maker - Cafeteria",
		Category:        CategoryCoffeeMachine,
		Model:           "Airpot Brewer",
		Manufacturer:    "Bunn",
		Location:        "Cafeteria - Station 2",
		Status:          StatusMaintenance,
		LastMaintenance: "2025-12-15",
		SerialNumber:    "BN-APB-2023-078",
	},
	{
		ID:              "OV001",
		Name:            "Convection Oven - Bakery",
		Category:        CategoryOven,
		Model:           "CTX-400",
		Manufacturer:    "TurboChef",
		Location:        "Bakery Section",
		Status:          StatusOperational,
		LastMaintenance: "2026-03-02",
		SerialNumber:    "TC-CTX-2022-114",
	},
	{
		ID:              "RF001",
		Name:            "Walk-in Refrigerator - Stockroom",
		Category:        CategoryRefrigerator,
		Model:           "KWR-800",
		Manufacturer:    "Kolpak",
		Location:        "Stockroom - Rear",
		Status:          StatusOperational,
		LastMaintenance: "2026-01-08",
		SerialNumber:    "KP-KWR-2021-552",
	},
	{
		ID:              "FZ001",
		Name:            "Chest Freezer - Frozen Goods",
		Category:        CategoryFreezer,
		Model:           "FCB-550",
		Manufacturer:    "Frigidaire",
		Location:        "Aisle 7",
		Status:          StatusMaintenance,
		LastMaintenance: "2025-11-20",
		SerialNumber:    "FG-FCB-2020-031",
	},
	{
		ID:              "DW001",
		Name:            "Undercounter Dishwasher - Deli",
		Category:        CategoryDishwasher,
		Model:           "UC50",
		Manufacturer:    "Hobart",
		Location:        "Deli Kitchen",
		Status:          StatusOperational,
		LastMaintenance: "2026-02-27",
		SerialNumber:    "HB-UC50-2023-204",
	},
	{
		ID:              "MW001",
		Name:            "Commercial Microwave - Hot Food",
		Category:        CategoryMicrowave,
		Model:           "RCS10TS",
		Manufacturer:    "Amana",
		Location:        "Hot Food Counter",
		Status:          StatusOperational,
		LastMaintenance: "2026-03-15",
		SerialNumber:    "AM-RCS-2024-087",
	},
	{
		ID:              "POS001",
		Name:            "POS Terminal - Checkout 1",
		Category:        CategoryPOSTerminal,
		Model:           "Station Duo",
		Manufacturer:    "Clover",
		Location:        "Checkout Lane 1",
		Status:          StatusOperational,
		LastMaintenance: "2026-02-01",
		SerialNumber:    "CL-SD-2024-1201",
	},
	{
		ID:              "POS002",
		Name:            "POS Terminal - Checkout 2",
		Category:        CategoryPOSTerminal,
		Model:           "Station Duo",
		Manufacturer:    "Clover",
		Location:        "Checkout Lane 2",
		Status:          StatusOffline,
		LastMaintenance: "2025-10-30",
		SerialNumber:    "CL-SD-2024-1202",
	},
	{
		ID:              "DC001",
		Name:            "Display Cooler - Beverages",
		Category:        CategoryDisplayCooler,
		Model:           "GDM-49",
		Manufacturer:    "True",
		Location:        "Beverage Wall",
		Status:          StatusOperational,
		LastMaintenance: "2026-01-19",
		SerialNumber:    "TR-GDM-2022-419",
	},
	{
		ID:              "IM001",
		Name:            "Ice Machine - Food Service",
		Category:        CategoryIceMachine,
		Model:           "Indigo NXT",
		Manufacturer:    "Manitowoc",
		Location:        "Food Service Back Room",
		Status:          StatusFaulty,
		LastMaintenance: "2025-12-05",
		SerialNumber:    "MW-INX-2021-660",
	},
	{
		ID:              "HV001",
		Name:            "Rooftop HVAC Unit - Main Floor",
		Category:        CategoryHVAC,
		Model:           "Precedent 5T",
		Manufacturer:    "Trane",
		Location:        "Roof - Zone A",
		Status:          StatusOperational,
		LastMaintenance: "2026-04-01",
		SerialNumber:    "TN-PR5-2019-210",
	},
}
