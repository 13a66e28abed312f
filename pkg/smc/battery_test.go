//go:build darwin

package smc

import "testing"

func TestAppleSMC_Battery(t *testing.T) {
	tests := []struct {
		name         string
		values       map[string][]byte
		wantCharge   int
		wantCharging bool
		wantErr      bool
	}{
		{
			name: "plugged in and charging",
			values: map[string][]byte{
				BatteryChargeKey:  {87},
				ACPowerKey:        {1},
				BatteryCurrentKey: {0xe8, 0x03}, // 1000 mA
			},
			wantCharge:   87,
			wantCharging: true,
		},
		{
			name: "plugged in but full",
			values: map[string][]byte{
				BatteryChargeKey:  {100},
				ACPowerKey:        {1},
				BatteryCurrentKey: {0x00, 0x00},
			},
			wantCharge:   100,
			wantCharging: false,
		},
		{
			name: "on battery",
			values: map[string][]byte{
				BatteryChargeKey:  {42},
				ACPowerKey:        {0},
				BatteryCurrentKey: {0x18, 0xfc}, // -1000 mA
			},
			wantCharge:   42,
			wantCharging: false,
		},
		{
			name: "malformed charge",
			values: map[string][]byte{
				BatteryChargeKey: {1, 2},
				ACPowerKey:       {0},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewMock(tt.values)
			if err := c.Open(); err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer c.Close()

			charge, err := c.GetBatteryCharge()
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetBatteryCharge() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if charge != tt.wantCharge {
				t.Errorf("GetBatteryCharge() = %d, want %d", charge, tt.wantCharge)
			}

			charging, err := c.IsCharging()
			if err != nil {
				t.Fatalf("IsCharging() error = %v", err)
			}
			if charging != tt.wantCharging {
				t.Errorf("IsCharging() = %t, want %t", charging, tt.wantCharging)
			}
		})
	}
}
