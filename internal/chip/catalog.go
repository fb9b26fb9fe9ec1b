package chip

// registry is the static catalog: a plain package-level slice of struct
// literals, never mutated after init. Coverage here is a representative
// sample of common SPI NOR parts spanning seven JEDEC manufacturer IDs
// rather than the several-hundred-entry table a full flashrom-class
// catalog would carry — enough to exercise evil-twin disambiguation,
// multi-run erase profiles, and voltage enumeration without fabricating
// device data (see DESIGN.md).
var registry = []ChipDescriptor{
	{
		Vendor: "Winbond", Name: "W25Q80",
		Buses:         BusSPI,
		ManufactureID: 0xEF, ModelID: 0x4014,
		TotalSizeKiB: 1024, PageSize: 256,
		Features: FeatureWRSRviaWREN,
		Tested:   TestedStatus{Probe: StatusOK, Read: StatusOK, Erase: StatusOK, Write: StatusOK},
		Probe:    "spi_rdid",
		Erasers: []EraserProfile{
			{EraseFn: "spi_block_erase_20", Runs: []EraseRun{{BlockSize: 4 * 1024, BlockCount: 256}}},
			{EraseFn: "spi_block_erase_d8", Runs: []EraseRun{{BlockSize: 64 * 1024, BlockCount: 16}}},
			{EraseFn: "spi_chip_erase_c7", AllOnes: true, Runs: []EraseRun{{BlockSize: 1024 * 1024, BlockCount: 1}}},
		},
		PrintLock: "spi_prettyprint_status_register_wp_range",
		Unlock:    "spi_disable_blockprotect",
		Write:     "spi_byte_program",
		Read:      "spi_read",
		StatusRead: "spi_read_status_register",
		StatusWrite: "spi_write_status_register",
		WpTable:   "w25_wp_table",
		Voltage:   VoltageRange{MinMV: 2700, MaxMV: 3600},
	},
	{
		Vendor: "Winbond", Name: "W25Q16",
		Buses:         BusSPI,
		ManufactureID: 0xEF, ModelID: 0x4015,
		TotalSizeKiB: 2048, PageSize: 256,
		Features: FeatureWRSRviaWREN,
		Tested:   TestedStatus{Probe: StatusOK, Read: StatusOK, Erase: StatusOK, Write: StatusOK},
		Probe:    "spi_rdid",
		Erasers: []EraserProfile{
			{EraseFn: "spi_block_erase_20", Runs: []EraseRun{{BlockSize: 4 * 1024, BlockCount: 512}}},
			{EraseFn: "spi_block_erase_d8", Runs: []EraseRun{{BlockSize: 64 * 1024, BlockCount: 32}}},
			{EraseFn: "spi_chip_erase_c7", AllOnes: true, Runs: []EraseRun{{BlockSize: 2 * 1024 * 1024, BlockCount: 1}}},
		},
		PrintLock: "spi_prettyprint_status_register_wp_range",
		Unlock:    "spi_disable_blockprotect",
		Write:     "spi_byte_program",
		Read:      "spi_read",
		StatusRead: "spi_read_status_register",
		StatusWrite: "spi_write_status_register",
		WpTable:   "w25_wp_table",
		Voltage:   VoltageRange{MinMV: 2700, MaxMV: 3600},
	},
	{
		Vendor: "Winbond", Name: "W25Q32",
		Buses:         BusSPI,
		ManufactureID: 0xEF, ModelID: 0x4016,
		TotalSizeKiB: 4096, PageSize: 256,
		Features: FeatureWRSRviaWREN,
		Tested:   TestedStatus{Probe: StatusOK, Read: StatusOK, Erase: StatusOK, Write: StatusOK},
		Probe:    "spi_rdid",
		Erasers: []EraserProfile{
			{EraseFn: "spi_block_erase_20", Runs: []EraseRun{{BlockSize: 4 * 1024, BlockCount: 1024}}},
			{EraseFn: "spi_block_erase_52", Runs: []EraseRun{{BlockSize: 32 * 1024, BlockCount: 128}}},
			{EraseFn: "spi_block_erase_d8", Runs: []EraseRun{{BlockSize: 64 * 1024, BlockCount: 64}}},
			{EraseFn: "spi_chip_erase_c7", AllOnes: true, Runs: []EraseRun{{BlockSize: 4 * 1024 * 1024, BlockCount: 1}}},
		},
		PrintLock: "spi_prettyprint_status_register_wp_range",
		Unlock:    "spi_disable_blockprotect",
		Write:     "spi_byte_program",
		Read:      "spi_read",
		StatusRead: "spi_read_status_register",
		StatusWrite: "spi_write_status_register",
		WpTable:   "w25q_wp_table",
		Voltage:   VoltageRange{MinMV: 2700, MaxMV: 3600},
	},
	{
		Vendor: "Winbond", Name: "W25Q64",
		Buses:         BusSPI,
		ManufactureID: 0xEF, ModelID: 0x4017,
		TotalSizeKiB: 8192, PageSize: 256,
		Features: FeatureWRSRviaWREN,
		Tested:   TestedStatus{Probe: StatusOK, Read: StatusOK, Erase: StatusOK, Write: StatusOK},
		Probe:    "spi_rdid",
		Erasers: []EraserProfile{
			{EraseFn: "spi_block_erase_20", Runs: []EraseRun{{BlockSize: 4 * 1024, BlockCount: 2048}}},
			{EraseFn: "spi_block_erase_d8", Runs: []EraseRun{{BlockSize: 64 * 1024, BlockCount: 128}}},
			{EraseFn: "spi_chip_erase_c7", AllOnes: true, Runs: []EraseRun{{BlockSize: 8 * 1024 * 1024, BlockCount: 1}}},
		},
		PrintLock: "spi_prettyprint_status_register_wp_range",
		Unlock:    "spi_disable_blockprotect",
		Write:     "spi_byte_program",
		Read:      "spi_read",
		StatusRead: "spi_read_status_register",
		StatusWrite: "spi_write_status_register",
		WpTable:   "w25q_wp_table",
		Voltage:   VoltageRange{MinMV: 2700, MaxMV: 3600},
	},
	{
		// Evil twin of W25Q64 family: same (manufacturer, model) pair, shipped
		// under a "large" variant with a different status-register layout —
		// the canonical disambiguation scenario.
		Vendor: "Winbond", Name: "W25Q64FV (large-SR variant)",
		Buses:         BusSPI,
		ManufactureID: 0xEF, ModelID: 0x4017,
		TotalSizeKiB: 8192, PageSize: 256,
		Features: FeatureWRSRviaWREN | FeatureRegisterMap,
		Tested:   TestedStatus{Probe: StatusOKProbe, Read: StatusOK, Erase: StatusOK, Write: StatusOK},
		Probe:    "spi_rdid_disambiguate_large_sr",
		Erasers: []EraserProfile{
			{EraseFn: "spi_block_erase_20", Runs: []EraseRun{{BlockSize: 4 * 1024, BlockCount: 2048}}},
			{EraseFn: "spi_block_erase_d8", Runs: []EraseRun{{BlockSize: 64 * 1024, BlockCount: 128}}},
			{EraseFn: "spi_chip_erase_c7", AllOnes: true, Runs: []EraseRun{{BlockSize: 8 * 1024 * 1024, BlockCount: 1}}},
		},
		PrintLock: "spi_prettyprint_status_register_wp_range",
		Unlock:    "spi_disable_blockprotect",
		Write:     "spi_byte_program",
		Read:      "spi_read",
		StatusRead: "spi_read_status_register_large",
		StatusWrite: "spi_write_status_register_large",
		WpTable:   "w25q_large_wp_table",
		Voltage:   VoltageRange{MinMV: 2700, MaxMV: 3600},
	},
	{
		Vendor: "Winbond", Name: "W25Q128",
		Buses:         BusSPI,
		ManufactureID: 0xEF, ModelID: 0x4018,
		TotalSizeKiB: 16384, PageSize: 256,
		Features: FeatureWRSRviaWREN,
		Tested:   TestedStatus{Probe: StatusOK, Read: StatusOK, Erase: StatusOK, Write: StatusOK},
		Probe:    "spi_rdid",
		Erasers: []EraserProfile{
			{EraseFn: "spi_block_erase_20", Runs: []EraseRun{{BlockSize: 4 * 1024, BlockCount: 4096}}},
			{EraseFn: "spi_block_erase_d8", Runs: []EraseRun{{BlockSize: 64 * 1024, BlockCount: 256}}},
			{EraseFn: "spi_chip_erase_c7", AllOnes: true, Runs: []EraseRun{{BlockSize: 16 * 1024 * 1024, BlockCount: 1}}},
		},
		PrintLock: "spi_prettyprint_status_register_wp_range",
		Unlock:    "spi_disable_blockprotect",
		Write:     "spi_byte_program",
		Read:      "spi_read",
		StatusRead: "spi_read_status_register",
		StatusWrite: "spi_write_status_register",
		WpTable:   "w25q_wp_table",
		Voltage:   VoltageRange{MinMV: 2700, MaxMV: 3600},
	},
	{
		Vendor: "Winbond", Name: "W25Q256",
		Buses:         BusSPI,
		ManufactureID: 0xEF, ModelID: 0x4019,
		TotalSizeKiB: 32768, PageSize: 256,
		Features: FeatureWRSRviaWREN | Feature4BAEntryRequired,
		Tested:   TestedStatus{Probe: StatusOK, Read: StatusOK, Erase: StatusOK, Write: StatusOKPreReadEraseWrite},
		Probe:    "spi_rdid",
		Erasers: []EraserProfile{
			{EraseFn: "spi_block_erase_20", Runs: []EraseRun{{BlockSize: 4 * 1024, BlockCount: 8192}}},
			{EraseFn: "spi_block_erase_d8", Runs: []EraseRun{{BlockSize: 64 * 1024, BlockCount: 512}}},
			{EraseFn: "spi_chip_erase_c7", AllOnes: true, Runs: []EraseRun{{BlockSize: 32 * 1024 * 1024, BlockCount: 1}}},
		},
		PrintLock:     "spi_prettyprint_status_register_wp_range",
		Unlock:        "spi_disable_blockprotect",
		Write:         "spi_byte_program",
		Read:          "spi_read",
		StatusRead:    "spi_read_status_register",
		StatusWrite:   "spi_write_status_register",
		FourByteEnter: "spi_enter_4ba_b7",
		WpTable:       "w25q_large_wp_table",
		Voltage:       VoltageRange{MinMV: 2700, MaxMV: 3600},
	},
	{
		Vendor: "Macronix", Name: "MX25L8005",
		Buses:         BusSPI,
		ManufactureID: 0xC2, ModelID: 0x2014,
		TotalSizeKiB: 1024, PageSize: 256,
		Features: FeatureWRSRviaWREN,
		Tested:   TestedStatus{Probe: StatusOK, Read: StatusOK, Erase: StatusOK, Write: StatusOK},
		Probe:    "spi_rdid",
		Erasers: []EraserProfile{
			{EraseFn: "spi_block_erase_20", Runs: []EraseRun{{BlockSize: 4 * 1024, BlockCount: 256}}},
			{EraseFn: "spi_block_erase_d8", Runs: []EraseRun{{BlockSize: 64 * 1024, BlockCount: 16}}},
			{EraseFn: "spi_chip_erase_60", AllOnes: true, Runs: []EraseRun{{BlockSize: 1024 * 1024, BlockCount: 1}}},
		},
		PrintLock:   "spi_prettyprint_status_register_wp_range",
		Unlock:      "spi_disable_blockprotect",
		Write:       "spi_byte_program",
		Read:        "spi_read",
		StatusRead:  "spi_read_status_register",
		StatusWrite: "spi_write_status_register",
		WpTable:     "generic_wp_table",
		Voltage:     VoltageRange{MinMV: 2700, MaxMV: 3600},
	},
	{
		Vendor: "Macronix", Name: "MX25L3205",
		Buses:         BusSPI,
		ManufactureID: 0xC2, ModelID: 0x2016,
		TotalSizeKiB: 4096, PageSize: 256,
		Features: FeatureWRSRviaWREN,
		Tested:   TestedStatus{Probe: StatusOK, Read: StatusOK, Erase: StatusOK, Write: StatusOK},
		Probe:    "spi_rdid",
		Erasers: []EraserProfile{
			{EraseFn: "spi_block_erase_20", Runs: []EraseRun{{BlockSize: 4 * 1024, BlockCount: 1024}}},
			{EraseFn: "spi_block_erase_d8", Runs: []EraseRun{{BlockSize: 64 * 1024, BlockCount: 64}}},
			{EraseFn: "spi_chip_erase_60", AllOnes: true, Runs: []EraseRun{{BlockSize: 4 * 1024 * 1024, BlockCount: 1}}},
		},
		PrintLock:   "spi_prettyprint_status_register_wp_range",
		Unlock:      "spi_disable_blockprotect",
		Write:       "spi_byte_program",
		Read:        "spi_read",
		StatusRead:  "spi_read_status_register",
		StatusWrite: "spi_write_status_register",
		WpTable:     "generic_wp_table",
		Voltage:     VoltageRange{MinMV: 2700, MaxMV: 3600},
	},
	{
		Vendor: "Macronix", Name: "MX25L6405",
		Buses:         BusSPI,
		ManufactureID: 0xC2, ModelID: 0x2017,
		TotalSizeKiB: 8192, PageSize: 256,
		Features: FeatureWRSRviaWREN,
		Tested:   TestedStatus{Probe: StatusOK, Read: StatusOK, Erase: StatusOK, Write: StatusOK},
		Probe:    "spi_rdid",
		Erasers: []EraserProfile{
			{EraseFn: "spi_block_erase_20", Runs: []EraseRun{{BlockSize: 4 * 1024, BlockCount: 2048}}},
			{EraseFn: "spi_block_erase_d8", Runs: []EraseRun{{BlockSize: 64 * 1024, BlockCount: 128}}},
			{EraseFn: "spi_chip_erase_60", AllOnes: true, Runs: []EraseRun{{BlockSize: 8 * 1024 * 1024, BlockCount: 1}}},
		},
		PrintLock:   "spi_prettyprint_status_register_wp_range",
		Unlock:      "spi_disable_blockprotect",
		Write:       "spi_byte_program",
		Read:        "spi_read",
		StatusRead:  "spi_read_status_register",
		StatusWrite: "spi_write_status_register",
		WpTable:     "generic_wp_table",
		Voltage:     VoltageRange{MinMV: 2700, MaxMV: 3600},
	},
	{
		Vendor: "Micron", Name: "M25P40",
		Buses:         BusSPI,
		ManufactureID: 0x20, ModelID: 0x2013,
		TotalSizeKiB: 512, PageSize: 256,
		Features: FeatureWRSRviaWREN,
		Tested:   TestedStatus{Probe: StatusOK, Read: StatusOK, Erase: StatusOK, Write: StatusOK},
		Probe:    "spi_rdid",
		Erasers: []EraserProfile{
			{EraseFn: "spi_block_erase_d8", Runs: []EraseRun{{BlockSize: 64 * 1024, BlockCount: 8}}},
			{EraseFn: "spi_chip_erase_c7", AllOnes: true, Runs: []EraseRun{{BlockSize: 512 * 1024, BlockCount: 1}}},
		},
		PrintLock:   "spi_prettyprint_status_register_bp",
		Unlock:      "spi_disable_blockprotect_bp1_srwd",
		Write:       "spi_byte_program",
		Read:        "spi_read",
		StatusRead:  "spi_read_status_register",
		StatusWrite: "spi_write_status_register",
		WpTable:     "generic_wp_table",
		Voltage:     VoltageRange{MinMV: 2700, MaxMV: 3600},
	},
	{
		Vendor: "Micron", Name: "N25Q128",
		Buses:         BusSPI,
		ManufactureID: 0x20, ModelID: 0xBA18,
		TotalSizeKiB: 16384, PageSize: 256,
		Features: FeatureWRSRviaWREN | FeatureOTP,
		Tested:   TestedStatus{Probe: StatusOK, Read: StatusOK, Erase: StatusOK, Write: StatusOK},
		Probe:    "spi_rdid",
		Erasers: []EraserProfile{
			{EraseFn: "spi_block_erase_20", Runs: []EraseRun{{BlockSize: 4 * 1024, BlockCount: 4096}}},
			{EraseFn: "spi_block_erase_d8", Runs: []EraseRun{{BlockSize: 64 * 1024, BlockCount: 256}}},
			{EraseFn: "spi_chip_erase_c7", AllOnes: true, Runs: []EraseRun{{BlockSize: 16 * 1024 * 1024, BlockCount: 1}}},
		},
		PrintLock:   "spi_prettyprint_status_register_bp",
		Unlock:      "spi_disable_blockprotect_bp1_srwd",
		Write:       "spi_byte_program",
		Read:        "spi_read",
		StatusRead:  "spi_read_status_register",
		StatusWrite: "spi_write_status_register",
		WpTable:     "generic_wp_table",
		Voltage:     VoltageRange{MinMV: 2700, MaxMV: 3600},
	},
	{
		Vendor: "SST", Name: "SST25VF080B",
		Buses:         BusSPI,
		ManufactureID: 0xBF, ModelID: 0x258E,
		TotalSizeKiB: 1024, PageSize: 256,
		Features: FeatureWRSRviaEWSR,
		Tested:   TestedStatus{Probe: StatusOK, Read: StatusOK, Erase: StatusOK, Write: StatusOK},
		Probe:    "spi_rdid",
		Erasers: []EraserProfile{
			{EraseFn: "spi_block_erase_20", Runs: []EraseRun{{BlockSize: 4 * 1024, BlockCount: 256}}},
			{EraseFn: "spi_block_erase_d8", Runs: []EraseRun{{BlockSize: 64 * 1024, BlockCount: 16}}},
			{EraseFn: "spi_chip_erase_60", AllOnes: true, Runs: []EraseRun{{BlockSize: 1024 * 1024, BlockCount: 1}}},
		},
		PrintLock:   "spi_prettyprint_status_register_bp",
		Unlock:      "spi_disable_blockprotect_bp1_srwd",
		Write:       "spi_aai_write",
		Read:        "spi_read",
		StatusRead:  "spi_read_status_register",
		StatusWrite: "spi_write_status_register_ewsr",
		WpTable:     "generic_wp_table",
		Voltage:     VoltageRange{MinMV: 3000, MaxMV: 3600},
	},
	{
		Vendor: "Adesto", Name: "AT25DF041A",
		Buses:         BusSPI,
		ManufactureID: 0x1F, ModelID: 0x4401,
		TotalSizeKiB: 512, PageSize: 256,
		Features: FeatureWRSRviaWREN,
		Tested:   TestedStatus{Probe: StatusOK, Read: StatusOK, Erase: StatusOK, Write: StatusBad},
		Probe:    "spi_rdid",
		Erasers: []EraserProfile{
			{EraseFn: "spi_block_erase_20", Runs: []EraseRun{{BlockSize: 4 * 1024, BlockCount: 128}}},
			{EraseFn: "spi_chip_erase_c7", AllOnes: true, Runs: []EraseRun{{BlockSize: 512 * 1024, BlockCount: 1}}},
		},
		PrintLock:   "spi_prettyprint_status_register_bp",
		Unlock:      "spi_disable_blockprotect_bp1_srwd",
		Write:       "spi_byte_program",
		Read:        "spi_read",
		StatusRead:  "spi_read_status_register",
		StatusWrite: "spi_write_status_register",
		WpTable:     "generic_wp_table",
		Voltage:     VoltageRange{MinMV: 2700, MaxMV: 3600},
	},
	{
		Vendor: "GigaDevice", Name: "GD25Q32",
		Buses:         BusSPI,
		ManufactureID: 0xC8, ModelID: 0x4016,
		TotalSizeKiB: 4096, PageSize: 256,
		Features: FeatureWRSRviaWREN,
		Tested:   TestedStatus{Probe: StatusOK, Read: StatusOK, Erase: StatusOK, Write: StatusOK},
		Probe:    "spi_rdid",
		Erasers: []EraserProfile{
			{EraseFn: "spi_block_erase_20", Runs: []EraseRun{{BlockSize: 4 * 1024, BlockCount: 1024}}},
			{EraseFn: "spi_block_erase_d8", Runs: []EraseRun{{BlockSize: 64 * 1024, BlockCount: 64}}},
			{EraseFn: "spi_chip_erase_c7", AllOnes: true, Runs: []EraseRun{{BlockSize: 4 * 1024 * 1024, BlockCount: 1}}},
		},
		PrintLock:   "spi_prettyprint_status_register_wp_range",
		Unlock:      "spi_disable_blockprotect",
		Write:       "spi_byte_program",
		Read:        "spi_read",
		StatusRead:  "spi_read_status_register",
		StatusWrite: "spi_write_status_register",
		WpTable:     "w25q_wp_table",
		Voltage:     VoltageRange{MinMV: 2700, MaxMV: 3600},
	},
	{
		Vendor: "Eon", Name: "EN25Q32",
		Buses:         BusSPI,
		ManufactureID: 0x1C, ModelID: 0x3016,
		TotalSizeKiB: 4096, PageSize: 256,
		Features: FeatureWRSRviaWREN,
		Tested:   TestedStatus{Probe: StatusOKProbe, Read: StatusOK, Erase: StatusOK, Write: StatusOK},
		Probe:    "spi_rdid",
		Erasers: []EraserProfile{
			{EraseFn: "spi_block_erase_20", Runs: []EraseRun{{BlockSize: 4 * 1024, BlockCount: 1024}}},
			{EraseFn: "spi_block_erase_d8", Runs: []EraseRun{{BlockSize: 64 * 1024, BlockCount: 64}}},
			{EraseFn: "spi_chip_erase_60", AllOnes: true, Runs: []EraseRun{{BlockSize: 4 * 1024 * 1024, BlockCount: 1}}},
		},
		PrintLock:   "spi_prettyprint_status_register_bp",
		Unlock:      "spi_disable_blockprotect_bp1_srwd",
		Write:       "spi_byte_program",
		Read:        "spi_read",
		StatusRead:  "spi_read_status_register",
		StatusWrite: "spi_write_status_register",
		WpTable:     "generic_wp_table",
		Voltage:     VoltageRange{MinMV: 2700, MaxMV: 3600},
	},
}
