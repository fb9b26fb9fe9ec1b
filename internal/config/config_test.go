package config

import "testing"

func TestParseProgrammerSpec(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantName   string
		wantParams map[string]string
		wantErr    bool
	}{
		{"bare name", "internal", "internal", map[string]string{}, false},
		{"single param", "linux_spi:dev=/dev/spidev0.0", "linux_spi", map[string]string{"dev": "/dev/spidev0.0"}, false},
		{"multi param", "dediprog:voltage=3.5V,divisor=4", "dediprog", map[string]string{"voltage": "3.5V", "divisor": "4"}, false},
		{"bare flag param", "ft2232_spi:nodelvp", "ft2232_spi", map[string]string{"nodelvp": ""}, false},
		{"empty", "", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProgrammerSpec(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseProgrammerSpec(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
			if len(got.Params) != len(tt.wantParams) {
				t.Fatalf("Params = %v, want %v", got.Params, tt.wantParams)
			}
			for k, v := range tt.wantParams {
				if got.Params[k] != v {
					t.Errorf("Params[%q] = %q, want %q", k, got.Params[k], v)
				}
			}
		})
	}
}
