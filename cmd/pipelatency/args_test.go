package main

import (
	"errors"
	"testing"
)

// TestParseFmax tests the single-argument command line contract.
func TestParseFmax(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		want     float64
		wantHelp bool
		wantErr  bool
	}{
		{name: "no arguments defaults", args: nil, want: 100},
		{name: "integer rate", args: []string{"250"}, want: 250},
		{name: "fractional rate", args: []string{"0.5"}, want: 0.5},
		{name: "scientific notation", args: []string{"1e2"}, want: 100},
		{name: "negative parses", args: []string{"-5"}, want: -5},
		{name: "short help", args: []string{"-h"}, wantHelp: true},
		{name: "long help", args: []string{"--help"}, wantHelp: true},
		{name: "extra arguments ignored", args: []string{"3", "junk"}, want: 3},
		{name: "non-numeric", args: []string{"fast"}, wantErr: true},
		{name: "empty string", args: []string{""}, wantErr: true},
		{name: "stray flag", args: []string{"--fmax=3"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFmax(tt.args)

			if tt.wantHelp {
				if !errors.Is(err, errHelp) {
					t.Fatalf("parseFmax(%q) error = %v, want errHelp", tt.args, err)
				}
				return
			}
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseFmax(%q) = %v, want error", tt.args, got)
				}
				if errors.Is(err, errHelp) {
					t.Fatalf("parseFmax(%q) reported help, want parse error", tt.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFmax(%q) failed: %v", tt.args, err)
			}
			if got != tt.want {
				t.Errorf("parseFmax(%q) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}
