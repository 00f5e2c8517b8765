package sources

import "testing"

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"19,95", 19.95, true},
		{"19.95", 19.95, true},
		{"€ 1.234,56", 1234.56, true},
		{"$1,299.99", 1299.99, true},
		{"EUR 5", 5, true},
		{"  12,50 €  ", 12.50, true},
		{"1.299", 1.299, true}, // dot last, read as decimal
		{"ab 7,49", 7.49, true},
		{"", 0, false},
		{"gratis", 0, false},
		{"0,00", 0, false},
		{"-5.00", 5, true}, // sign stripped, digits remain
	}
	for _, tt := range tests {
		got, ok := ParsePrice(tt.in)
		if ok != tt.ok {
			t.Errorf("ParsePrice(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParsePrice(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
